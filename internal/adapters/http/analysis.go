package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kunaldubey10/Agrishield/internal/adapters/analysis"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const msgMissingParameters = "Missing required parameters"

// NDVIHandler serves the analysis endpoint contract:
//
//	POST {coordinates, startDate, endDate}
//	→ {success, data: {meanIndexValue, date}, error}
//
// With legacy set the data also carries meanNDVI, the field name older
// clients read.
func NDVIHandler(deps *Dependencies, legacy bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.AnalysisRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(analysis.Response{Error: "Invalid request body"})
		}
		if req.Coordinates.Empty() || req.StartDate == "" || req.EndDate == "" {
			return c.Status(fiber.StatusBadRequest).JSON(analysis.Response{Error: msgMissingParameters})
		}

		log := LoggerFromCtx(c.UserContext())
		log.Info("ndvi analysis requested",
			"points", len(req.Coordinates),
			"start", req.StartDate,
			"end", req.EndDate,
		)

		result, err := deps.Backend.Analyze(c.UserContext(), req)
		if err != nil {
			log.Error("ndvi analysis failed", "error", err)
			status, msg := fiber.StatusInternalServerError, "Unknown error occurred"
			var ae *domain.AnalysisError
			if errors.As(err, &ae) {
				status, msg = fiber.StatusBadGateway, ae.Error()
			}
			return c.Status(status).JSON(analysis.Response{Error: msg})
		}

		value := result.Value
		data := &analysis.ResponseData{
			MeanIndexValue: &value,
			Date:           result.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if legacy {
			data.MeanNDVI = &value
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(analysis.Response{Success: true, Data: data})
	}
}
