package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

// viewResponse reports a navigation outcome. Applied is false when the view
// did not move, e.g. a search without a match.
type viewResponse struct {
	View    domain.MapView `json:"view"`
	Applied bool           `json:"applied"`
}

// presentSession renders the current state of a session.
func presentSession(c *fiber.Ctx, sess *usecases.Session) error {
	c.Set("Cache-Control", "no-store")
	return c.JSON(usecases.Present(sess.State()))
}

// CreateSessionHandler opens a map session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Create(c.UserContext())
		if err != nil {
			return errUnavailable(c, err.Error())
		}
		c.Location("/v1/sessions/" + sess.ID)
		c.Status(fiber.StatusCreated)
		return presentSession(c, sess)
	}
}

// GetSessionHandler renders a session's presentation model.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return presentSession(c, sess)
	}
}

// CloseSessionHandler tears a session down.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Close(c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DrawEventHandler applies one draw gesture and returns the updated presentation.
//
//	POST /v1/sessions/:id/draw-events
//	{"type":"created","shape":{"kind":"rectangle","bounds":{...}}}
func DrawEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := domain.ParseDrawEvent(c.Body())
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		id := c.Params("id")
		if _, _, err := deps.Sessions.Draw(id, ev); err != nil {
			return errFromDomain(c, err)
		}
		sess, err := deps.Sessions.Get(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return presentSession(c, sess)
	}
}

// SetDatesHandler stores the analysis period. Either date may be empty.
func SetDatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var r domain.DateRange
		if err := c.BodyParser(&r); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		id := c.Params("id")
		if err := deps.Sessions.SetDates(id, r); err != nil {
			return errFromDomain(c, err)
		}
		sess, err := deps.Sessions.Get(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return presentSession(c, sess)
	}
}

// RegionViewHandler recenters a session on a named farming region.
func RegionViewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Region string `json:"region"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil || req.Region == "" {
			return errBadRequest(c, "region is required")
		}
		view, err := deps.Sessions.RecenterOnRegion(c.Params("id"), req.Region)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(viewResponse{View: view, Applied: true})
	}
}

// LocateViewHandler recenters a session on the device position. A missing
// position (permission denied or unavailable) leaves the view as it is.
func LocateViewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Position *domain.LatLng `json:"position"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if req.Position != nil && !req.Position.Valid() {
			return errBadRequest(c, "position is out of range")
		}
		view, applied, err := deps.Sessions.Locate(c.Params("id"), req.Position)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(viewResponse{View: view, Applied: applied})
	}
}

// SearchViewHandler recenters a session on the best geocoding match.
// Lookup failures and misses are reported as applied=false, not as errors.
func SearchViewHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Query string `json:"query"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		view, applied, err := deps.Sessions.Search(c.UserContext(), c.Params("id"), req.Query)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(viewResponse{View: view, Applied: applied})
	}
}

// SubmitAnalysisHandler runs the vegetation index analysis for a session.
// Backend failures are part of the returned presentation, not an HTTP error.
func SubmitAnalysisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if err := deps.Orchestrator.Submit(c.UserContext(), sess); err != nil {
			return errFromDomain(c, err)
		}
		return presentSession(c, sess)
	}
}
