package http

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kunaldubey10/Agrishield/internal/adapters/inference"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

// ListRegionsHandler returns the farming regions the map can jump to.
func ListRegionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(usecases.PopularRegions())
	}
}

// LegendHandler returns the NDVI reference scale.
func LegendHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(domain.Legend())
	}
}

// ClassifyHandler maps ?value= to its health band.
func ClassifyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("value")
		if raw == "" {
			return errBadRequest(c, "value query parameter is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return errBadRequest(c, "value must be a number")
		}
		return c.JSON(usecases.PresentResult(domain.AnalysisResult{Value: v}))
	}
}

const (
	msgNoImage          = "No image provided"
	msgPredictionFailed = "Failed to get prediction from backend"
)

// DiagnoseHandler forwards an uploaded leaf image to the disease model and
// returns its prediction untouched.
func DiagnoseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Detector == nil {
			return errUnavailable(c, "disease detection is not configured")
		}
		fh, err := c.FormFile("image")
		if err != nil {
			return errBadRequest(c, msgNoImage)
		}
		f, err := fh.Open()
		if err != nil {
			return errBadRequest(c, msgNoImage)
		}
		defer f.Close()

		prediction, err := deps.Detector.Predict(c.UserContext(), fh.Filename, f)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("prediction failed", "file", fh.Filename, "error", err)
			if errors.Is(err, inference.ErrUpstream) {
				return errBadGateway(c, msgPredictionFailed)
			}
			return errInternal(c, msgPredictionFailed)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(prediction)
	}
}

// NewsHandler returns agricultural headlines for ?q=.
func NewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.News == nil {
			return errUnavailable(c, "news is not configured")
		}
		feed, err := deps.News.Latest(c.UserContext(), c.Query("q"))
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("news lookup failed", "query", c.Query("q"), "error", err)
			return errInternal(c, "failed to fetch news")
		}
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(feed)
	}
}
