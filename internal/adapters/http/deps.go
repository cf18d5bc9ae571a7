package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kunaldubey10/Agrishield/internal/adapters/postgres"
	"github.com/kunaldubey10/Agrishield/internal/adapters/valkey"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

// SessionEvents relays a session's boundary and analysis events.
type SessionEvents interface {
	SubscribeSession(sessionID string, handler func(data []byte)) (unsubscribe func(), err error)
}

// Dependencies holds all services needed by HTTP handlers.
// Fields, News, Detector, Events and the infrastructure handles may be nil.
type Dependencies struct {
	Sessions     *usecases.SessionService
	Orchestrator *usecases.AnalysisOrchestrator
	Fields       *usecases.FieldService
	News         *usecases.NewsService

	// Backend serves the analysis endpoint contract on /v1/analysis/ndvi.
	Backend  ports.VegetationAnalyzer
	Detector ports.DiseaseDetector
	Events   SessionEvents

	// LegacySunset is announced on /api/ndvi responses.
	LegacySunset time.Time

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
