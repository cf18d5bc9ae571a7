package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

// CanvasFactory creates the drawing canvas for a new session.
type CanvasFactory func(view domain.MapView) ports.DrawingCanvas

// SessionConfig bounds the session registry.
type SessionConfig struct {
	IdleTTL         time.Duration
	JanitorInterval time.Duration
	MaxSessions     int
}

// Session is one open map page: a selection surface with its canvas, the
// chosen dates and the last analysis outcome. Nothing here is persisted.
type Session struct {
	ID        string
	CreatedAt time.Time

	canvas  ports.DrawingCanvas
	surface *SelectionSurface

	mu       sync.Mutex
	boundary domain.Boundary
	dates    domain.DateRange
	result   *domain.AnalysisResult
	errMsg   string
	inFlight bool
	lastSeen time.Time
}

// SessionState is a point-in-time copy of a session.
type SessionState struct {
	ID        string                 `json:"id"`
	Boundary  domain.Boundary        `json:"boundary"`
	Dates     domain.DateRange       `json:"dates"`
	View      domain.MapView         `json:"view"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Loading   bool                   `json:"loading"`
	CreatedAt time.Time              `json:"created_at"`
}

// State snapshots the session.
func (s *Session) State() SessionState {
	view := s.surface.View()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := SessionState{
		ID:        s.ID,
		Boundary:  s.boundary.Clone(),
		Dates:     s.dates,
		View:      view,
		Error:     s.errMsg,
		Loading:   s.inFlight,
		CreatedAt: s.CreatedAt,
	}
	if st.Boundary == nil {
		st.Boundary = domain.Boundary{}
	}
	if s.result != nil {
		r := *s.result
		st.Result = &r
	}
	return st
}

// Boundary returns the active selection.
func (s *Session) Boundary() domain.Boundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundary.Clone()
}

// Surface exposes the session's selection surface.
func (s *Session) Surface() *SelectionSurface { return s.surface }

func (s *Session) setBoundary(b domain.Boundary) {
	s.mu.Lock()
	s.boundary = b
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) close() error {
	return s.surface.Close()
}

// SessionService is the in-memory registry of open sessions.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	newCanvas CanvasFactory
	geocoder  *GeocoderService
	publisher ports.EventPublisher
	cfg       SessionConfig
	now       func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(newCanvas CanvasFactory, geocoder *GeocoderService, publisher ports.EventPublisher, cfg SessionConfig) *SessionService {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		sessions:  make(map[string]*Session),
		newCanvas: newCanvas,
		geocoder:  geocoder,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// StartJanitor evicts idle sessions every JanitorInterval until ctx is done or Shutdown.
func (s *SessionService) StartJanitor(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.baseCtx.Done():
				return
			case <-ticker.C:
				if n := s.EvictIdle(); n > 0 {
					slog.Info("evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

// Create opens a session with the default view and the last 30 days selected.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session registry is shut down")
	}
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, fmt.Errorf("session limit of %d reached", s.cfg.MaxSessions)
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		canvas:    s.newCanvas(domain.DefaultMapView()),
		dates:     domain.DefaultDateRange(now),
		lastSeen:  now,
	}
	sess.surface = NewSelectionSurface(sess.canvas, s.geocoder, s.boundaryListener(sess))
	sess.surface.Start(s.baseCtx)

	s.sessions[sess.ID] = sess
	metrics.ActiveSessions.Inc()
	slog.DebugContext(ctx, "session opened", "session_id", sess.ID)
	return sess, nil
}

func (s *SessionService) boundaryListener(sess *Session) BoundaryListener {
	return func(b domain.Boundary) {
		sess.setBoundary(b)
		if s.publisher == nil {
			return
		}
		if err := s.publisher.PublishBoundary(s.baseCtx, sess.ID, b); err != nil {
			slog.Warn("failed to publish boundary", "session_id", sess.ID, "error", err)
		}
	}
}

// Get returns an open session and marks it as used.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	sess.touch(s.now())
	return sess, nil
}

// Close tears a session down.
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	metrics.ActiveSessions.Dec()
	return sess.close()
}

// Len returns the number of open sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle closes every session unused for longer than IdleTTL.
func (s *SessionService) EvictIdle() int {
	now := s.now()
	var stale []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.cfg.IdleTTL {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		metrics.ActiveSessions.Dec()
		if err := sess.close(); err != nil {
			slog.Warn("failed to close session", "session_id", sess.ID, "error", err)
		}
	}
	return len(stale)
}

// Shutdown stops the janitor and closes every session.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for _, sess := range all {
		metrics.ActiveSessions.Dec()
		_ = sess.close()
	}
}

// Draw applies a client gesture synchronously and reports the emitted boundary.
// Created shapes without an ID are assigned one.
func (s *SessionService) Draw(id string, ev domain.DrawEvent) (domain.Boundary, bool, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	ev = withShapeID(ev)
	if err := domain.ValidateDrawEvent(ev); err != nil {
		return nil, false, err
	}
	if err := sess.canvas.Record(ev); err != nil {
		return nil, false, err
	}
	return sess.surface.Handle(ev)
}

// Stream queues a client gesture on the session canvas; the surface's Run loop
// picks it up and notifies listeners asynchronously.
func (s *SessionService) Stream(id string, ev domain.DrawEvent) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := domain.ValidateDrawEvent(ev); err != nil {
		return err
	}
	return sess.canvas.Push(withShapeID(ev))
}

func withShapeID(ev domain.DrawEvent) domain.DrawEvent {
	if c, ok := ev.(domain.ShapeCreated); ok && c.Shape.ID == "" {
		c.Shape.ID = uuid.NewString()
		return c
	}
	return ev
}

// SetDates applies the date picker constraints and stores the range. Either
// end may be left empty, which clears it.
func (s *SessionService) SetDates(id string, r domain.DateRange) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := domain.ValidatePartialDateRange(r, s.now()); err != nil {
		return err
	}
	sess.mu.Lock()
	sess.dates = r
	sess.mu.Unlock()
	return nil
}

// RecenterOnRegion moves a session's view to a named farming region.
func (s *SessionService) RecenterOnRegion(id, region string) (domain.MapView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return domain.MapView{}, err
	}
	return sess.surface.RecenterOnRegion(region)
}

// Locate moves a session's view to the device position, if one was provided.
func (s *SessionService) Locate(id string, pos *domain.LatLng) (domain.MapView, bool, error) {
	sess, err := s.Get(id)
	if err != nil {
		return domain.MapView{}, false, err
	}
	view, ok := sess.surface.RecenterOnPosition(pos)
	return view, ok, nil
}

// Search moves a session's view to the best match for a place query.
func (s *SessionService) Search(ctx context.Context, id, query string) (domain.MapView, bool, error) {
	sess, err := s.Get(id)
	if err != nil {
		return domain.MapView{}, false, err
	}
	return sess.surface.Search(ctx, query)
}
