package domain

import (
	"encoding/json"
	"fmt"
)

// ShapeKind identifies which drawing tool produced a shape.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapePolygon   ShapeKind = "polygon"
)

// Shape is a shape drawn on the map canvas.
// Rectangles carry Bounds; polygons carry Vertices in drawing order.
type Shape struct {
	ID       string    `json:"id"`
	Kind     ShapeKind `json:"kind"`
	Bounds   *Bounds   `json:"bounds,omitempty"`
	Vertices []LatLng  `json:"vertices,omitempty"`
}

// Ring converts the shape into a Boundary.
func (s Shape) Ring() (Boundary, error) {
	switch s.Kind {
	case ShapeRectangle:
		if s.Bounds == nil {
			return nil, fmt.Errorf("%w: rectangle without bounds", ErrInvalidShape)
		}
		b := BoundsFromCorners(s.Bounds.SouthWest, s.Bounds.NorthEast)
		if !b.SouthWest.Valid() || !b.NorthEast.Valid() {
			return nil, fmt.Errorf("%w: rectangle corner out of range", ErrInvalidShape)
		}
		return b.Ring(), nil

	case ShapePolygon:
		if len(s.Vertices) < 3 {
			return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, len(s.Vertices))
		}
		ring := make(Boundary, len(s.Vertices))
		for i, v := range s.Vertices {
			if !v.Valid() {
				return nil, fmt.Errorf("%w: vertex %d out of range", ErrInvalidShape, i)
			}
			ring[i] = v
		}
		return ring, nil

	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidShape, s.Kind)
	}
}

// DrawEvent is emitted by the map canvas when the user draws, edits or deletes shapes.
// The set of variants is closed: ShapeCreated, ShapesEdited, ShapesDeleted.
type DrawEvent interface {
	drawEvent()
}

// ValidateDrawEvent checks every shape an event carries, so a rejected gesture
// can be refused before it reaches the canvas layer.
func ValidateDrawEvent(ev DrawEvent) error {
	var shapes []Shape
	switch e := ev.(type) {
	case ShapeCreated:
		shapes = []Shape{e.Shape}
	case ShapesEdited:
		shapes = e.Shapes
	}
	for _, shape := range shapes {
		if _, err := shape.Ring(); err != nil {
			return err
		}
	}
	return nil
}

// ShapeCreated reports a newly drawn shape.
type ShapeCreated struct {
	Shape Shape
}

// ShapesEdited reports shapes whose vertices were moved.
type ShapesEdited struct {
	Shapes []Shape
}

// ShapesDeleted reports removed shapes. No IDs means everything was removed.
type ShapesDeleted struct {
	IDs []string
}

func (ShapeCreated) drawEvent()  {}
func (ShapesEdited) drawEvent()  {}
func (ShapesDeleted) drawEvent() {}

// DrawEventType is the wire tag of a DrawEvent.
type DrawEventType string

const (
	DrawCreated DrawEventType = "created"
	DrawEdited  DrawEventType = "edited"
	DrawDeleted DrawEventType = "deleted"
)

// DrawEventEnvelope is the JSON form of a DrawEvent as sent by map clients:
//
//	{"type":"created","shape":{...}}
//	{"type":"edited","shapes":[...]}
//	{"type":"deleted","ids":["..."]}
type DrawEventEnvelope struct {
	Type   DrawEventType `json:"type"`
	Shape  *Shape        `json:"shape,omitempty"`
	Shapes []Shape       `json:"shapes,omitempty"`
	IDs    []string      `json:"ids,omitempty"`
}

// Event decodes the envelope into its typed variant.
func (e DrawEventEnvelope) Event() (DrawEvent, error) {
	switch e.Type {
	case DrawCreated:
		if e.Shape == nil {
			return nil, fmt.Errorf("%w: created event without shape", ErrInvalidShape)
		}
		return ShapeCreated{Shape: *e.Shape}, nil
	case DrawEdited:
		return ShapesEdited{Shapes: e.Shapes}, nil
	case DrawDeleted:
		return ShapesDeleted{IDs: e.IDs}, nil
	default:
		return nil, fmt.Errorf("unknown draw event type %q", e.Type)
	}
}

// ParseDrawEvent decodes a JSON draw event.
func ParseDrawEvent(data []byte) (DrawEvent, error) {
	var env DrawEventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode draw event: %w", err)
	}
	return env.Event()
}
