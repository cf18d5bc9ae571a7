package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics", path == "/ws":
			ttl = "no-cache"

		// Session state changes with every gesture.
		case strings.HasPrefix(path, "/v1/sessions"):
			ttl = "no-store"

		case path == "/v1/regions" || path == "/v1/ndvi/legend":
			ttl = "public, max-age=86400"

		case strings.HasPrefix(path, "/v1/ndvi/classify"):
			ttl = "public, max-age=3600"

		case strings.HasSuffix(path, "/surveys/latest"):
			ttl = "private, max-age=30"

		case strings.HasPrefix(path, "/v1/fields"):
			ttl = "private, max-age=60"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
