// Package canvas is the server-side half of the browser map: it holds the view
// state and the visible shape layer for one session, and turns draw gestures
// forwarded by the client into a stream of typed events.
package canvas

import (
	"sync"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const eventBuffer = 16

// Canvas implements ports.MapCanvas.
type Canvas struct {
	mu     sync.Mutex
	view   domain.MapView
	layer  map[string]domain.Shape
	events chan domain.DrawEvent
	done   chan struct{}
	closed bool
}

// New creates a canvas showing the given view.
func New(view domain.MapView) *Canvas {
	return &Canvas{
		view:   view,
		layer:  make(map[string]domain.Shape),
		events: make(chan domain.DrawEvent, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Events streams draw events. The channel is never closed; watch Done.
func (c *Canvas) Events() <-chan domain.DrawEvent {
	return c.events
}

// Done is closed when the canvas is disposed.
func (c *Canvas) Done() <-chan struct{} {
	return c.done
}

// Push records a gesture on the visible layer and queues its event.
// It blocks while the buffer is full.
func (c *Canvas) Push(ev domain.DrawEvent) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrCanvasClosed
	}
	c.apply(ev)
	c.mu.Unlock()

	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return domain.ErrCanvasClosed
	}
}

// Record applies a gesture to the visible layer without queueing it, for
// callers that dispatch the event themselves.
func (c *Canvas) Record(ev domain.DrawEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCanvasClosed
	}
	c.apply(ev)
	return nil
}

func (c *Canvas) apply(ev domain.DrawEvent) {
	switch e := ev.(type) {
	case domain.ShapeCreated:
		c.layer[e.Shape.ID] = e.Shape
	case domain.ShapesEdited:
		for _, s := range e.Shapes {
			if _, ok := c.layer[s.ID]; ok {
				c.layer[s.ID] = s
			}
		}
	case domain.ShapesDeleted:
		if len(e.IDs) == 0 {
			c.layer = make(map[string]domain.Shape)
			return
		}
		for _, id := range e.IDs {
			delete(c.layer, id)
		}
	}
}

// Shapes returns the shapes currently visible.
func (c *Canvas) Shapes() []domain.Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Shape, 0, len(c.layer))
	for _, s := range c.layer {
		out = append(out, s)
	}
	return out
}

// RemoveShape takes a shape off the visible layer.
func (c *Canvas) RemoveShape(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.layer, id)
}

func (c *Canvas) View() domain.MapView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Canvas) SetView(view domain.MapView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
}

// Close disposes the layer and stops accepting gestures. Safe to call more than once.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.layer = nil
	close(c.done)
	return nil
}
