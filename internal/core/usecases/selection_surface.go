package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

// BoundaryListener is notified whenever the active selection changes.
// An empty Boundary means the selection was removed.
type BoundaryListener func(domain.Boundary)

// SelectionSurface tracks the single active area selection drawn on a map canvas.
//
// Drawing a new shape replaces the previous one: the old shape is taken off the
// canvas and out of the tracked group, so at most one shape is ever tracked.
// The surface owns its canvas; Close tears both down.
type SelectionSurface struct {
	mu       sync.Mutex
	canvas   ports.MapCanvas
	geocoder *GeocoderService
	listener BoundaryListener
	active   *domain.Shape
	boundary domain.Boundary

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSelectionSurface takes ownership of canvas.
func NewSelectionSurface(canvas ports.MapCanvas, geocoder *GeocoderService, onChange BoundaryListener) *SelectionSurface {
	return &SelectionSurface{
		canvas:   canvas,
		geocoder: geocoder,
		listener: onChange,
		stop:     make(chan struct{}),
	}
}

// Start consumes the canvas event stream in the background until Close.
func (s *SelectionSurface) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

// Run dispatches canvas events until ctx is done, the canvas is disposed, or Close is called.
func (s *SelectionSurface) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-s.canvas.Done():
			return
		case ev := <-s.canvas.Events():
			if _, _, err := s.Handle(ev); err != nil {
				slog.Warn("draw event rejected", "error", err)
			}
		}
	}
}

// Handle applies one draw event. It reports the Boundary that was emitted, if any.
func (s *SelectionSurface) Handle(ev domain.DrawEvent) (domain.Boundary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stop:
		return nil, false, domain.ErrCanvasClosed
	default:
	}

	switch e := ev.(type) {
	case domain.ShapeCreated:
		return s.created(e.Shape)
	case domain.ShapesEdited:
		return s.edited(e.Shapes)
	case domain.ShapesDeleted:
		return s.deleted(e.IDs)
	default:
		return nil, false, fmt.Errorf("unsupported draw event %T", ev)
	}
}

func (s *SelectionSurface) created(shape domain.Shape) (domain.Boundary, bool, error) {
	ring, err := shape.Ring()
	if err != nil {
		s.canvas.RemoveShape(shape.ID)
		return nil, false, err
	}

	if s.active != nil && s.active.ID != shape.ID {
		s.canvas.RemoveShape(s.active.ID)
	}
	s.active = &shape
	s.emit(ring, "created")
	return ring, true, nil
}

func (s *SelectionSurface) edited(shapes []domain.Shape) (domain.Boundary, bool, error) {
	var (
		last    domain.Boundary
		emitted bool
	)
	for _, shape := range shapes {
		if s.active == nil || shape.ID != s.active.ID {
			continue
		}
		ring, err := shape.Ring()
		if err != nil {
			return last, emitted, err
		}
		edited := shape
		s.active = &edited
		s.emit(ring, "edited")
		last, emitted = ring, true
	}
	return last, emitted, nil
}

func (s *SelectionSurface) deleted(ids []string) (domain.Boundary, bool, error) {
	if s.active == nil {
		return nil, false, nil
	}
	hit := len(ids) == 0
	for _, id := range ids {
		if id == s.active.ID {
			hit = true
			break
		}
	}
	if !hit {
		return nil, false, nil
	}
	s.canvas.RemoveShape(s.active.ID)
	s.active = nil
	s.emit(domain.Boundary{}, "deleted")
	return domain.Boundary{}, true, nil
}

// emit must be called with mu held.
func (s *SelectionSurface) emit(b domain.Boundary, kind string) {
	s.boundary = b
	metrics.BoundaryChanges.WithLabelValues(kind).Inc()
	if s.listener != nil {
		s.listener(b.Clone())
	}
}

// Boundary returns the active selection, empty when nothing is selected.
func (s *SelectionSurface) Boundary() domain.Boundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundary.Clone()
}

// ActiveShape returns the tracked shape, if any.
func (s *SelectionSurface) ActiveShape() (domain.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.Shape{}, false
	}
	return *s.active, true
}

// View returns the current map view.
func (s *SelectionSurface) View() domain.MapView {
	return s.canvas.View()
}

// RecenterOnRegion moves the view to a named region.
func (s *SelectionSurface) RecenterOnRegion(name string) (domain.MapView, error) {
	region, ok := FindRegion(name)
	if !ok {
		return s.canvas.View(), fmt.Errorf("%w: %s", domain.ErrUnknownRegion, name)
	}
	view := domain.MapView{Center: region.Center, Zoom: region.Zoom, Label: region.Name}
	s.canvas.SetView(view)
	return view, nil
}

// RecenterOnPosition moves the view to the device position. A nil or invalid
// position (permission denied, API absent) leaves the view unchanged.
func (s *SelectionSurface) RecenterOnPosition(pos *domain.LatLng) (domain.MapView, bool) {
	if pos == nil || !pos.Valid() {
		return s.canvas.View(), false
	}
	view := domain.MapView{
		Center: *pos,
		Zoom:   domain.ZoomGeolocate,
		Label:  fmt.Sprintf("%.4f, %.4f", pos.Lat, pos.Lng),
	}
	s.canvas.SetView(view)
	return view, true
}

// Search recenters on the best geocoding match for query. Lookup failures and
// empty results leave the view unchanged and are not reported; only an empty
// query is an error.
func (s *SelectionSurface) Search(ctx context.Context, query string) (domain.MapView, bool, error) {
	if s.geocoder == nil {
		return s.canvas.View(), false, nil
	}
	place, err := s.geocoder.Search(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			return s.canvas.View(), false, err
		}
		slog.Debug("geocoding failed", "query", query, "error", err)
		return s.canvas.View(), false, nil
	}
	if place == nil {
		return s.canvas.View(), false, nil
	}
	view := domain.MapView{Center: place.Location, Zoom: domain.ZoomPlace, Label: place.DisplayName}
	s.canvas.SetView(view)
	return view, true, nil
}

// Close stops Run, drops the listener and disposes the canvas. Safe to call more than once.
func (s *SelectionSurface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()

		s.mu.Lock()
		s.listener = nil
		s.active = nil
		s.mu.Unlock()

		err = s.canvas.Close()
	})
	return err
}
