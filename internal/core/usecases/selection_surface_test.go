package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kunaldubey10/Agrishield/internal/adapters/canvas"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

type boundaryRecorder struct {
	got []domain.Boundary
}

func (r *boundaryRecorder) listen(b domain.Boundary) { r.got = append(r.got, b) }

func TestSelectionSurface_RectangleRing(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	rec := &boundaryRecorder{}
	s := usecases.NewSelectionSurface(c, nil, rec.listen)
	defer s.Close()

	ev := rectangle("r1", domain.LatLng{Lat: 12, Lng: 22}, domain.LatLng{Lat: 10, Lng: 20})
	require.NoError(t, c.Record(ev))
	b, emitted, err := s.Handle(ev)
	require.NoError(t, err)
	assert.True(t, emitted)

	want := domain.Boundary{{Lat: 10, Lng: 20}, {Lat: 12, Lng: 20}, {Lat: 12, Lng: 22}, {Lat: 10, Lng: 22}}
	assert.Equal(t, want, b)
	require.Len(t, rec.got, 1)
	assert.Equal(t, want, rec.got[0])
}

func TestSelectionSurface_PolygonKeepsDrawingOrder(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, nil, nil)
	defer s.Close()

	pts := []domain.LatLng{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 3}, {Lat: 2, Lng: 4}, {Lat: 3, Lng: 2}, {Lat: 2, Lng: 0}}
	b, emitted, err := s.Handle(domain.ShapeCreated{Shape: polygon("p1", pts...)})
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, domain.Boundary(pts), b)
}

func TestSelectionSurface_SecondShapeReplacesFirst(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, nil, nil)
	defer s.Close()

	first := rectangle("a", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1})
	second := rectangle("b", domain.LatLng{Lat: 5, Lng: 5}, domain.LatLng{Lat: 6, Lng: 6})
	for _, ev := range []domain.DrawEvent{first, second} {
		require.NoError(t, c.Record(ev))
		_, _, err := s.Handle(ev)
		require.NoError(t, err)
	}

	shapes := c.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, "b", shapes[0].ID)

	active, ok := s.ActiveShape()
	require.True(t, ok)
	assert.Equal(t, "b", active.ID)
	assert.Equal(t, domain.LatLng{Lat: 5, Lng: 5}, s.Boundary()[0])
}

func TestSelectionSurface_EditReemitsTrackedShapeOnly(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	rec := &boundaryRecorder{}
	s := usecases.NewSelectionSurface(c, nil, rec.listen)
	defer s.Close()

	_, _, err := s.Handle(domain.ShapeCreated{Shape: polygon("p", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 0, Lng: 1}, domain.LatLng{Lat: 1, Lng: 1})})
	require.NoError(t, err)

	moved := polygon("p", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 0, Lng: 2}, domain.LatLng{Lat: 2, Lng: 2})
	stranger := polygon("x", domain.LatLng{Lat: 9, Lng: 9}, domain.LatLng{Lat: 9, Lng: 8}, domain.LatLng{Lat: 8, Lng: 8})
	b, emitted, err := s.Handle(domain.ShapesEdited{Shapes: []domain.Shape{stranger, moved}})
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, domain.Boundary(moved.Vertices), b)
	assert.Len(t, rec.got, 2)

	_, emitted, err = s.Handle(domain.ShapesEdited{Shapes: []domain.Shape{stranger}})
	require.NoError(t, err)
	assert.False(t, emitted)
	assert.Len(t, rec.got, 2)
}

func TestSelectionSurface_DeleteEmitsEmpty(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	rec := &boundaryRecorder{}
	s := usecases.NewSelectionSurface(c, nil, rec.listen)
	defer s.Close()

	ev := rectangle("r", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1})
	require.NoError(t, c.Record(ev))
	_, _, err := s.Handle(ev)
	require.NoError(t, err)

	_, emitted, err := s.Handle(domain.ShapesDeleted{IDs: []string{"unknown"}})
	require.NoError(t, err)
	assert.False(t, emitted)

	b, emitted, err := s.Handle(domain.ShapesDeleted{IDs: []string{"r"}})
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.True(t, b.Empty())
	assert.True(t, s.Boundary().Empty())
	assert.Empty(t, c.Shapes())
	require.Len(t, rec.got, 2)
	assert.True(t, rec.got[1].Empty())
}

func TestSelectionSurface_DeleteWithoutIDsClears(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, nil, nil)
	defer s.Close()

	_, _, err := s.Handle(rectangle("r", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1}))
	require.NoError(t, err)

	b, emitted, err := s.Handle(domain.ShapesDeleted{})
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.True(t, b.Empty())
	_, ok := s.ActiveShape()
	assert.False(t, ok)
}

func TestSelectionSurface_InvalidShapeLeavesStateUnchanged(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	rec := &boundaryRecorder{}
	s := usecases.NewSelectionSurface(c, nil, rec.listen)
	defer s.Close()

	good := rectangle("r", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1})
	_, _, err := s.Handle(good)
	require.NoError(t, err)

	bad := domain.ShapeCreated{Shape: polygon("p", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1})}
	require.NoError(t, c.Record(bad))
	_, emitted, err := s.Handle(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidShape)
	assert.False(t, emitted)
	assert.Len(t, rec.got, 1)

	active, ok := s.ActiveShape()
	require.True(t, ok)
	assert.Equal(t, "r", active.ID)
	for _, sh := range c.Shapes() {
		assert.NotEqual(t, "p", sh.ID)
	}
}

func TestSelectionSurface_RunConsumesCanvasEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := canvas.New(domain.DefaultMapView())
	got := make(chan domain.Boundary, 1)
	s := usecases.NewSelectionSurface(c, nil, func(b domain.Boundary) { got <- b })
	s.Start(context.Background())

	require.NoError(t, c.Push(rectangle("r", domain.LatLng{Lat: 10, Lng: 20}, domain.LatLng{Lat: 12, Lng: 22})))

	select {
	case b := <-got:
		assert.Len(t, b, 4)
	case <-time.After(2 * time.Second):
		t.Fatal("boundary was not emitted")
	}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, c.Push(domain.ShapesDeleted{}), domain.ErrCanvasClosed)
}

func TestSelectionSurface_RunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, s.Close())
}

func TestSelectionSurface_HandleAfterClose(t *testing.T) {
	s := usecases.NewSelectionSurface(canvas.New(domain.DefaultMapView()), nil, nil)
	require.NoError(t, s.Close())

	_, _, err := s.Handle(rectangle("r", domain.LatLng{Lat: 0, Lng: 0}, domain.LatLng{Lat: 1, Lng: 1}))
	assert.ErrorIs(t, err, domain.ErrCanvasClosed)
}

func TestSelectionSurface_Navigation(t *testing.T) {
	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, nil, nil)
	defer s.Close()

	view, err := s.RecenterOnRegion("punjab")
	require.NoError(t, err)
	assert.Equal(t, domain.ZoomRegion, view.Zoom)
	assert.Equal(t, 30.7333, view.Center.Lat)

	_, err = s.RecenterOnRegion("Atlantis")
	assert.ErrorIs(t, err, domain.ErrUnknownRegion)
	assert.Equal(t, view, c.View())

	unchanged, ok := s.RecenterOnPosition(nil)
	assert.False(t, ok)
	assert.Equal(t, view, unchanged)

	located, ok := s.RecenterOnPosition(&domain.LatLng{Lat: 18.52043, Lng: 73.856743})
	assert.True(t, ok)
	assert.Equal(t, domain.ZoomGeolocate, located.Zoom)
	assert.Equal(t, "18.5204, 73.8567", located.Label)
	assert.True(t, s.Boundary().Empty())
}

func TestSelectionSurface_SearchFailuresAreSilent(t *testing.T) {
	geo := &mockGeocoder{lookupFn: func(ctx context.Context, q string) (*domain.Place, error) {
		if q == "nowhere" {
			return nil, nil
		}
		return nil, errors.New("connection refused")
	}}
	c := canvas.New(domain.DefaultMapView())
	s := usecases.NewSelectionSurface(c, usecases.NewGeocoderService(geo, nil), nil)
	defer s.Close()

	for _, q := range []string{"nowhere", "Pune"} {
		view, applied, err := s.Search(context.Background(), q)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, domain.DefaultMapView(), view)
	}

	_, _, err := s.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.Equal(t, int32(2), geo.calls.Load())
}

func TestSelectionSurface_SearchRecenters(t *testing.T) {
	geo := &mockGeocoder{lookupFn: func(ctx context.Context, q string) (*domain.Place, error) {
		return &domain.Place{Location: domain.LatLng{Lat: 18.5204, Lng: 73.8567}, DisplayName: "Pune, Maharashtra, India"}, nil
	}}
	s := usecases.NewSelectionSurface(canvas.New(domain.DefaultMapView()), usecases.NewGeocoderService(geo, nil), nil)
	defer s.Close()

	view, applied, err := s.Search(context.Background(), "Pune")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.ZoomPlace, view.Zoom)
	assert.Equal(t, "Pune, Maharashtra, India", view.Label)
	assert.Equal(t, view, s.View())
}
