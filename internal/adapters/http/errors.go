package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "validation_failed", msg)
}

// errBadGateway returns a 502 error.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "bad_gateway", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "service_unavailable", msg)
}

// errFromDomain maps a use case error onto the API error it stands for.
func errFromDomain(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return errUnprocessable(c, ve.Message)
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "not found")
	case errors.Is(err, domain.ErrAnalysisInFlight):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidShape),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrUnknownRegion):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrCanvasClosed):
		return errConflict(c, "session is closing")
	case errors.Is(err, domain.ErrSurveysDisabled):
		return errUnavailable(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}
