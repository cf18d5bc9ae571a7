package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
	"github.com/kunaldubey10/Agrishield/internal/pkg/telemetry"
)

const (
	requestTimeout  = 15 * time.Second
	analysisTimeout = 90 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(telemetry.Middleware())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			// draw gestures arrive in bursts while the user drags
			return c.Path() == "/ws"
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	sunset := deps.LegacySunset
	if sunset.IsZero() {
		sunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)
	}
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/api/ndvi", SunsetDate: sunset, Alternative: "/v1/analysis/ndvi"},
	}))

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")

	// Reference data
	v1.Get("/regions", ListRegionsHandler())
	v1.Get("/ndvi/legend", LegendHandler())
	v1.Get("/ndvi/classify", ClassifyHandler())

	// Map sessions
	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Get("/sessions/:id", GetSessionHandler(deps))
	v1.Delete("/sessions/:id", CloseSessionHandler(deps))
	v1.Post("/sessions/:id/draw-events", DrawEventHandler(deps))
	v1.Put("/sessions/:id/dates", SetDatesHandler(deps))
	v1.Post("/sessions/:id/view/region", RegionViewHandler(deps))
	v1.Post("/sessions/:id/view/locate", LocateViewHandler(deps))
	v1.Post("/sessions/:id/view/search", withTimeout(SearchViewHandler(deps)))
	v1.Post("/sessions/:id/analysis", timeout.NewWithContext(SubmitAnalysisHandler(deps), analysisTimeout))
	v1.Post("/sessions/:id/fields", requireFields(deps), withTimeout(SaveFieldHandler(deps)))

	// Saved fields
	fields := v1.Group("/fields", requireFields(deps))
	fields.Get("/", withTimeout(ListFieldsHandler(deps)))
	fields.Get("/:id", withTimeout(GetFieldHandler(deps)))
	fields.Get("/:id/geojson", withTimeout(FieldGeoJSONHandler(deps)))
	fields.Delete("/:id", withTimeout(DeleteFieldHandler(deps)))
	fields.Post("/:id/surveys", withTimeout(StartSurveyHandler(deps)))
	fields.Get("/:id/surveys/latest", withTimeout(LatestSurveyHandler(deps)))

	// Analysis endpoint contract
	v1.Post("/analysis/ndvi", timeout.NewWithContext(NDVIHandler(deps, false), analysisTimeout))
	app.Post("/api/ndvi", timeout.NewWithContext(NDVIHandler(deps, true), analysisTimeout))

	// Agricultural news
	v1.Get("/news", withTimeout(NewsHandler(deps)))

	// Disease detection
	v1.Post("/diagnoses", timeout.NewWithContext(DiagnoseHandler(deps), analysisTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Get("/ws", WebSocketUpgrade(deps), websocket.New(WebSocketHandler(deps)))
}
