package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var errDisconnected = errors.New("disconnected")

// Version is reported by the health endpoint; set at build time with -ldflags.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"uptime":   time.Since(startedAt).Round(time.Second).String(),
			"version":  Version,
			"sessions": deps.Sessions.Len(),
		})
	}
}

// ReadyHandler checks the configured backing services. Services that are not
// configured are reported but do not fail readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true
		check := func(name string, configured bool, probe func() error) {
			if !configured {
				checks[name] = "not configured"
				return
			}
			if err := probe(); err != nil {
				checks[name] = "error: " + err.Error()
				allOK = false
				return
			}
			checks[name] = "ok"
		}

		check("database", deps.DB != nil, func() error { return deps.DB.Ping(ctx) })
		check("cache", deps.Cache != nil, func() error { return deps.Cache.Ping(ctx) })
		check("nats", deps.NATS != nil, func() error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		})

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
