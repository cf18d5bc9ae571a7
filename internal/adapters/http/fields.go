package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

// requireFields rejects field routes when no database is configured.
func requireFields(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Fields == nil {
			return errUnavailable(c, "field storage is not configured")
		}
		return c.Next()
	}
}

// fieldID validates the :id parameter.
func fieldID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// SaveFieldHandler stores a session's active selection as a named field.
func SaveFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.FieldInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		field, err := deps.Fields.SaveSelection(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/fields/" + field.ID)
		return c.Status(fiber.StatusCreated).JSON(field)
	}
}

// ListFieldsHandler returns a page of saved fields.
func ListFieldsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		fields, total, err := deps.Fields.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if fields == nil {
			fields = []domain.Field{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse[domain.Field]{Data: fields, Pagination: pg})
	}
}

// GetFieldHandler returns a saved field by ID.
func GetFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fieldID(c)
		if !ok {
			return errBadRequest(c, "field id must be a UUID")
		}
		field, err := deps.Fields.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(field)
	}
}

// FieldGeoJSONHandler exports a saved field as a GeoJSON Feature.
func FieldGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fieldID(c)
		if !ok {
			return errBadRequest(c, "field id must be a UUID")
		}
		field, err := deps.Fields.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		feature := field.Boundary.Feature(map[string]any{
			"id":         field.ID,
			"name":       field.Name,
			"location":   field.Location,
			"size_acres": field.SizeAcres,
		})
		data, err := feature.MarshalJSON()
		if err != nil {
			return errInternal(c, "encode geojson")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// DeleteFieldHandler removes a saved field.
func DeleteFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fieldID(c)
		if !ok {
			return errBadRequest(c, "field id must be a UUID")
		}
		if err := deps.Fields.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StartSurveyHandler schedules a background analysis of a saved field.
// An empty body surveys the last 30 days.
func StartSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fieldID(c)
		if !ok {
			return errBadRequest(c, "field id must be a UUID")
		}
		var dates domain.DateRange
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&dates); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		runID, err := deps.Fields.StartSurvey(c.UserContext(), id, dates)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"field_id": id,
			"run_id":   runID,
		})
	}
}

// LatestSurveyHandler returns the most recent survey recorded for a field.
func LatestSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fieldID(c)
		if !ok {
			return errBadRequest(c, "field id must be a UUID")
		}
		survey, err := deps.Fields.LatestSurvey(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"survey": survey,
			"result": usecases.PresentResult(survey.Result),
		})
	}
}
