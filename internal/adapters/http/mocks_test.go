package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/kunaldubey10/Agrishield/internal/adapters/canvas"
	handler "github.com/kunaldubey10/Agrishield/internal/adapters/http"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

// ---- Mock collaborators ----

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	calls     atomic.Int32
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.calls.Add(1)
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return nil, errors.New("no analyzer configured")
}

type mockGeocoder struct {
	lookupFn func(ctx context.Context, query string) (*domain.Place, error)
}

func (m *mockGeocoder) Lookup(ctx context.Context, query string) (*domain.Place, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, query)
	}
	return nil, nil
}

type mockDetector struct {
	predictFn func(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error)
}

func (m *mockDetector) Predict(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error) {
	return m.predictFn(ctx, filename, image)
}

type mockScheduler struct {
	fieldID string
	dates   domain.DateRange
}

func (m *mockScheduler) StartSurvey(_ context.Context, fieldID string, dates domain.DateRange) (string, error) {
	m.fieldID, m.dates = fieldID, dates
	return "run-42", nil
}

type memFieldRepo struct {
	mu     sync.Mutex
	fields map[string]domain.Field
}

func newMemFieldRepo() *memFieldRepo {
	return &memFieldRepo{fields: make(map[string]domain.Field)}
}

func (m *memFieldRepo) Create(_ context.Context, f *domain.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[f.ID] = *f
	return nil
}

func (m *memFieldRepo) GetByID(_ context.Context, id string) (*domain.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *memFieldRepo) List(_ context.Context, offset, limit int) ([]domain.Field, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Field, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	offset = min(offset, total)
	end := min(offset+limit, total)
	return out[offset:end], total, nil
}

func (m *memFieldRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.fields, id)
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// ---- Test helpers ----

type testEnv struct {
	deps     *handler.Dependencies
	analyzer *mockAnalyzer
	geocoder *mockGeocoder
	backend  *mockAnalyzer
	fields   *memFieldRepo
	cache    *memCache
}

func newCanvas(view domain.MapView) ports.DrawingCanvas { return canvas.New(view) }

// makeDeps wires real use cases over in-memory collaborators. Field storage
// is enabled; opts may switch parts off.
func makeDeps(t *testing.T, opts ...func(*testEnv)) *testEnv {
	t.Helper()
	env := &testEnv{
		analyzer: &mockAnalyzer{},
		geocoder: &mockGeocoder{},
		backend:  &mockAnalyzer{},
		fields:   newMemFieldRepo(),
		cache:    newMemCache(),
	}
	sessions := usecases.NewSessionService(newCanvas, usecases.NewGeocoderService(env.geocoder, nil), nil, usecases.SessionConfig{})
	t.Cleanup(sessions.Shutdown)

	env.deps = &handler.Dependencies{
		Sessions:     sessions,
		Orchestrator: usecases.NewAnalysisOrchestrator(env.analyzer, nil),
		Fields:       usecases.NewFieldService(env.fields, sessions, nil, env.cache),
		Backend:      env.backend,
	}
	for _, o := range opts {
		o(env)
	}
	return env
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}
