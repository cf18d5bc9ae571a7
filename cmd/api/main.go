package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/kunaldubey10/Agrishield/internal/adapters/analysis"
	"github.com/kunaldubey10/Agrishield/internal/adapters/canvas"
	"github.com/kunaldubey10/Agrishield/internal/adapters/http"
	"github.com/kunaldubey10/Agrishield/internal/adapters/inference"
	natsadapter "github.com/kunaldubey10/Agrishield/internal/adapters/nats"
	"github.com/kunaldubey10/Agrishield/internal/adapters/news"
	"github.com/kunaldubey10/Agrishield/internal/adapters/nominatim"
	"github.com/kunaldubey10/Agrishield/internal/adapters/postgres"
	"github.com/kunaldubey10/Agrishield/internal/adapters/valkey"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
	"github.com/kunaldubey10/Agrishield/internal/pkg/config"
	"github.com/kunaldubey10/Agrishield/internal/pkg/logging"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
	"github.com/kunaldubey10/Agrishield/internal/pkg/telemetry"
	"github.com/kunaldubey10/Agrishield/internal/workflows"
)

func main() {
	cfg, err := config.Load("agrishield-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup("agrishield-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	var (
		publisher  ports.EventPublisher
		subscriber *natsadapter.Subscriber
	)
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.NATS = pub.Conn()
		}

		// Separate connection for the WebSocket relay and the survey consumer
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			subscriber = sub
			deps.Events = sub
		}
	}

	// Analysis backends. The in-process endpoint forwards to the upstream
	// imagery service when one is configured and simulates otherwise.
	var backend ports.VegetationAnalyzer
	if cfg.Analysis.UpstreamURL != "" {
		backend = analysis.NewClient(cfg.Analysis.UpstreamURL, cfg.Analysis.Timeout)
	} else {
		slog.Warn("analysis.upstream_url not set, simulating NDVI values")
		backend = analysis.NewSimulator(cfg.Analysis.SimulateWait)
	}
	deps.Backend = backend

	analyzer := backend
	if cfg.Analysis.Endpoint != "" {
		analyzer = analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Timeout)
	}

	// Sessions
	geocoder := usecases.NewGeocoderService(
		nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout),
		cache,
	)
	sessions := usecases.NewSessionService(
		func(view domain.MapView) ports.DrawingCanvas { return canvas.New(view) },
		geocoder,
		publisher,
		usecases.SessionConfig{
			IdleTTL:         cfg.Session.IdleTTL,
			JanitorInterval: cfg.Session.JanitorInterval,
			MaxSessions:     cfg.Session.MaxSessions,
		},
	)
	sessions.StartJanitor(ctx)
	defer sessions.Shutdown()

	deps.Sessions = sessions
	deps.Orchestrator = usecases.NewAnalysisOrchestrator(analyzer, publisher)

	// Agricultural news: NewsData.io when keyed, then the Guardian, then the curated list
	var newsSources []ports.NewsSource
	if cfg.News.NewsDataEnabled() {
		newsSources = append(newsSources, news.NewNewsData(cfg.News.NewsDataURL, cfg.News.NewsDataKey, cfg.News.Timeout))
	}
	newsSources = append(newsSources, news.NewGuardian(cfg.News.GuardianURL, cfg.News.GuardianKey, cfg.News.Timeout))
	deps.News = usecases.NewNewsService(newsSources, news.NewCurated(nil), cache)

	// Disease detection
	if cfg.Inference.URL != "" {
		deps.Detector = inference.New(cfg.Inference.URL, cfg.Inference.Timeout)
	}

	// Surveys
	var scheduler ports.SurveyScheduler
	if cfg.Temporal.HostPort != "" {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporallog.NewStructuredLogger(logger),
		})
		if err != nil {
			slog.Warn("temporal unavailable, field surveys disabled", "error", err)
		} else {
			defer tc.Close()
			scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Saved fields
	if cfg.Database.Enabled() {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db

		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					metrics.UpdateDBPoolMetrics(db.Pool.Stat())
				}
			}
		}()

		deps.Fields = usecases.NewFieldService(postgres.NewFieldRepo(db), sessions, scheduler, cache)

		if subscriber != nil {
			if err := subscriber.SubscribeSurveys(ctx, deps.Fields.RecordSurvey); err != nil {
				slog.Warn("survey subscription failed", "error", err)
			}
		}
	} else {
		slog.Warn("database.host not set, field storage disabled")
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "AgriShield API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		ExposeHeaders:    "Link, X-Total-Count, Location, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Analyses can take up to a minute; give them time to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 75*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
