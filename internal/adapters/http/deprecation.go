package http

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // exact path, or a prefix ending in "/*"
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

func (d DeprecatedRoute) matches(path string) bool {
	if prefix, ok := strings.CutSuffix(d.Path, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == d.Path
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return DeprecationMiddlewareAt(deprecated, time.Now)
}

// DeprecationMiddlewareAt is DeprecationMiddleware with an explicit clock.
func DeprecationMiddlewareAt(deprecated []DeprecatedRoute, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, d := range deprecated {
			if !d.matches(c.Path()) {
				continue
			}
			// RFC 8594
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))
			if d.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
			}
			days := math.Max(0, math.Ceil(d.SunsetDate.Sub(now()).Hours()/24))
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
			break
		}
		return c.Next()
	}
}
