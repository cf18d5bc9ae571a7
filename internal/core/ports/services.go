package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// MapCanvas is the map drawing capability a selection surface owns.
type MapCanvas interface {
	// Events streams draw events; Done is closed when the canvas is disposed.
	Events() <-chan domain.DrawEvent
	Done() <-chan struct{}
	View() domain.MapView
	SetView(view domain.MapView)
	// RemoveShape takes a shape off the visible layer.
	RemoveShape(id string)
	Close() error
}

// DrawingCanvas is the canvas as seen by the session that feeds it client gestures.
type DrawingCanvas interface {
	MapCanvas
	// Push records a gesture and queues it on Events.
	Push(ev domain.DrawEvent) error
	// Record applies a gesture to the visible layer without queueing it.
	Record(ev domain.DrawEvent) error
	Shapes() []domain.Shape
}

// Geocoder resolves a free-text place name. A nil place with a nil error means no match.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*domain.Place, error)
}

// VegetationAnalyzer computes the mean vegetation index of a boundary over a period.
// Endpoint-reported failures are returned as *domain.AnalysisError.
type VegetationAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// DiseaseDetector forwards a leaf image to the inference service.
type DiseaseDetector interface {
	Predict(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishBoundary(ctx context.Context, sessionID string, boundary domain.Boundary) error
	PublishAnalysis(ctx context.Context, sessionID string, result domain.AnalysisResult, category domain.HealthCategory) error
	PublishSurvey(ctx context.Context, survey *domain.Survey) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// SurveyScheduler starts background field surveys.
type SurveyScheduler interface {
	StartSurvey(ctx context.Context, fieldID string, dates domain.DateRange) (runID string, err error)
}

// NewsSource searches one agricultural news provider. An empty slice with a
// nil error means the provider had nothing for the query.
type NewsSource interface {
	Name() string
	Search(ctx context.Context, query string) ([]domain.Article, error)
}
