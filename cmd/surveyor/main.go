package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/kunaldubey10/Agrishield/internal/adapters/analysis"
	natsadapter "github.com/kunaldubey10/Agrishield/internal/adapters/nats"
	"github.com/kunaldubey10/Agrishield/internal/adapters/postgres"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/config"
	"github.com/kunaldubey10/Agrishield/internal/pkg/logging"
	"github.com/kunaldubey10/Agrishield/internal/workflows"
)

func main() {
	cfg, err := config.Load("agrishield-surveyor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("agrishield-surveyor", cfg.Log.Level, cfg.Log.Format)

	if cfg.Temporal.HostPort == "" {
		log.Fatal("temporal.host_port is required")
	}
	if !cfg.Database.Enabled() {
		log.Fatal("database.host is required")
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Surveys always run against the imagery backend directly.
	var analyzer ports.VegetationAnalyzer
	switch {
	case cfg.Analysis.UpstreamURL != "":
		analyzer = analysis.NewClient(cfg.Analysis.UpstreamURL, cfg.Analysis.Timeout)
	case cfg.Analysis.Endpoint != "":
		analyzer = analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Timeout)
	default:
		slog.Warn("no analysis backend configured, simulating NDVI values")
		analyzer = analysis.NewSimulator(cfg.Analysis.SimulateWait)
	}

	acts := &workflows.SurveyActivities{
		Fields:   postgres.NewFieldRepo(db),
		Analyzer: analyzer,
	}
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
		acts.Publisher = pub
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.FieldSurveyWorkflow)
	w.RegisterActivity(acts)

	slog.Info("surveyor worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
