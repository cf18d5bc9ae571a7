package usecases_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kunaldubey10/Agrishield/internal/adapters/canvas"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	lookupFn func(ctx context.Context, query string) (*domain.Place, error)
	calls    atomic.Int32
}

func (m *mockGeocoder) Lookup(ctx context.Context, query string) (*domain.Place, error) {
	m.calls.Add(1)
	if m.lookupFn != nil {
		return m.lookupFn(ctx, query)
	}
	return nil, nil
}

// --- Mock VegetationAnalyzer ---

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

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu         sync.Mutex
	boundaries []domain.Boundary
	analyses   []domain.HealthCategory
	surveys    []*domain.Survey
}

func (m *mockPublisher) PublishBoundary(_ context.Context, _ string, b domain.Boundary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boundaries = append(m.boundaries, b)
	return nil
}

func (m *mockPublisher) PublishAnalysis(_ context.Context, _ string, _ domain.AnalysisResult, c domain.HealthCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, c)
	return nil
}

func (m *mockPublisher) PublishSurvey(_ context.Context, s *domain.Survey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys = append(m.surveys, s)
	return nil
}

func (m *mockPublisher) boundaryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boundaries)
}

// --- In-memory CacheService ---

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
		return nil, errors.New("miss")
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

// --- Mock FieldRepository ---

type mockFieldRepo struct {
	mu     sync.Mutex
	fields map[string]domain.Field
}

func newMockFieldRepo() *mockFieldRepo {
	return &mockFieldRepo{fields: make(map[string]domain.Field)}
}

func (m *mockFieldRepo) Create(_ context.Context, f *domain.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[f.ID] = *f
	return nil
}

func (m *mockFieldRepo) GetByID(_ context.Context, id string) (*domain.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *mockFieldRepo) List(_ context.Context, offset, limit int) ([]domain.Field, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Field, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, f)
	}
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *mockFieldRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.fields, id)
	return nil
}

// --- Mock SurveyScheduler ---

type mockScheduler struct {
	fieldID string
	dates   domain.DateRange
}

func (m *mockScheduler) StartSurvey(_ context.Context, fieldID string, dates domain.DateRange) (string, error) {
	m.fieldID, m.dates = fieldID, dates
	return "run-1", nil
}

func newCanvas(view domain.MapView) ports.DrawingCanvas {
	return canvas.New(view)
}

func rectangle(id string, a, b domain.LatLng) domain.ShapeCreated {
	bounds := domain.BoundsFromCorners(a, b)
	return domain.ShapeCreated{Shape: domain.Shape{ID: id, Kind: domain.ShapeRectangle, Bounds: &bounds}}
}

func polygon(id string, pts ...domain.LatLng) domain.Shape {
	return domain.Shape{ID: id, Kind: domain.ShapePolygon, Vertices: pts}
}

// --- Mock NewsSource ---

type mockNewsSource struct {
	name     string
	searchFn func(ctx context.Context, query string) ([]domain.Article, error)
	calls    atomic.Int32
}

func (m *mockNewsSource) Name() string { return m.name }

func (m *mockNewsSource) Search(ctx context.Context, query string) ([]domain.Article, error) {
	m.calls.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func articlesFrom(source string, titles ...string) []domain.Article {
	out := make([]domain.Article, 0, len(titles))
	for _, t := range titles {
		out = append(out, domain.Article{Title: t, Source: source})
	}
	return out
}
