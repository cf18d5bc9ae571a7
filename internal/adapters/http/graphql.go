package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

var errFieldsDisabled = errors.New("field storage is not configured")

// buildSchema creates the read-only GraphQL schema over sessions, saved
// fields and the reference data. Field names resolve against Go struct
// fields case-insensitively.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	latLngType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LatLng",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	mapViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapView",
		Fields: graphql.Fields{
			"center": &graphql.Field{Type: latLngType},
			"zoom":   &graphql.Field{Type: graphql.Int},
			"label":  &graphql.Field{Type: graphql.String},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"name":   &graphql.Field{Type: graphql.String},
			"center": &graphql.Field{Type: latLngType},
			"zoom":   &graphql.Field{Type: graphql.Int},
		},
	})

	bandType := graphql.NewObject(graphql.ObjectConfig{
		Name: "HealthBand",
		Fields: graphql.Fields{
			"category":    &graphql.Field{Type: graphql.String},
			"range":       &graphql.Field{Type: graphql.String},
			"color":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	resultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AnalysisResult",
		Fields: graphql.Fields{
			"value":       &graphql.Field{Type: graphql.Float},
			"valueText":   &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"color":       &graphql.Field{Type: graphql.String},
			"timestamp":   &graphql.Field{Type: graphql.String},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"points":          &graphql.Field{Type: graphql.Int},
			"summary":         &graphql.Field{Type: graphql.String},
			"coordinates":     &graphql.Field{Type: graphql.NewList(latLngType)},
			"areaHectares":    &graphql.Field{Type: graphql.Float},
			"area":            &graphql.Field{Type: graphql.String},
			"perimeterMeters": &graphql.Field{Type: graphql.Float},
		},
	})

	dateRangeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DateRange",
		Fields: graphql.Fields{
			"start": &graphql.Field{Type: graphql.String},
			"end":   &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"sessionId": &graphql.Field{Type: graphql.String},
			"view":      &graphql.Field{Type: mapViewType},
			"selection": &graphql.Field{Type: selectionType},
			"dates":     &graphql.Field{Type: dateRangeType},
			"loading":   &graphql.Field{Type: graphql.Boolean},
			"error":     &graphql.Field{Type: graphql.String},
			"result":    &graphql.Field{Type: resultType},
			"legend":    &graphql.Field{Type: graphql.NewList(bandType)},
		},
	})

	fieldType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Field",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: graphql.String},
			"boundary":        &graphql.Field{Type: graphql.NewList(latLngType)},
			"sizeAcres":       &graphql.Field{Type: graphql.Float},
			"soilType":        &graphql.Field{Type: graphql.String},
			"lastPlantedDate": &graphql.Field{Type: graphql.String},
			"createdAt":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"legend": &graphql.Field{
				Type:        graphql.NewList(bandType),
				Description: "NDVI reference scale",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return domain.Legend(), nil
				},
			},
			"regions": &graphql.Field{
				Type:        graphql.NewList(regionType),
				Description: "Farming regions the map can jump to",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return usecases.PopularRegions(), nil
				},
			},
			"classify": &graphql.Field{
				Type:        resultType,
				Description: "Health band for a vegetation index value",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := p.Args["value"].(float64)
					return usecases.PresentResult(domain.AnalysisResult{Value: v}), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Presentation of an open map session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return usecases.Present(sess.State()), nil
				},
			},
			"fields": &graphql.Field{
				Type:        graphql.NewList(fieldType),
				Description: "Saved fields, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Fields == nil {
						return nil, errFieldsDisabled
					}
					fields, _, err := deps.Fields.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return fields, err
				},
			},
			"field": &graphql.Field{
				Type:        fieldType,
				Description: "Get a saved field by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Fields == nil {
						return nil, errFieldsDisabled
					}
					return deps.Fields.GetByID(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
