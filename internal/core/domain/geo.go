package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"github.com/kunaldubey10/Agrishield/internal/pkg/geospatial"
)

// LatLng represents a geographic coordinate (WGS 84).
// It serialises as a [lat, lng] pair, the form map clients send and expect.
type LatLng struct {
	Lat float64
	Lng float64
}

// MarshalJSON encodes the point as [lat, lng].
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

// UnmarshalJSON accepts [lat, lng] or {"lat":..,"lng":..}.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate must have 2 elements, got %d", len(pair))
		}
		p.Lat, p.Lng = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if obj.Lat == nil || obj.Lng == nil {
		return fmt.Errorf("coordinate requires lat and lng")
	}
	p.Lat, p.Lng = *obj.Lat, *obj.Lng
	return nil
}

// Valid reports whether the point lies in the WGS 84 range.
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds is an axis-aligned rectangle given by its south-west and north-east corners.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// BoundsFromCorners builds normalised bounds from any two opposite corners.
func BoundsFromCorners(a, b LatLng) Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: math.Min(a.Lat, b.Lat), Lng: math.Min(a.Lng, b.Lng)},
		NorthEast: LatLng{Lat: math.Max(a.Lat, b.Lat), Lng: math.Max(a.Lng, b.Lng)},
	}
}

// Ring returns the rectangle as [SW, (NE.lat, SW.lng), NE, (SW.lat, NE.lng)].
func (b Bounds) Ring() Boundary {
	sw, ne := b.SouthWest, b.NorthEast
	return Boundary{
		sw,
		{Lat: ne.Lat, Lng: sw.Lng},
		ne,
		{Lat: sw.Lat, Lng: ne.Lng},
	}
}

// Boundary is the ordered ring describing one selected polygon or rectangle.
// The closing vertex is implicit. An empty Boundary means nothing is selected.
type Boundary []LatLng

// Empty reports whether there is no selection.
func (b Boundary) Empty() bool { return len(b) == 0 }

// Clone returns an independent copy.
func (b Boundary) Clone() Boundary {
	if b == nil {
		return nil
	}
	out := make(Boundary, len(b))
	copy(out, b)
	return out
}

// Polygon converts the boundary into a closed orb polygon (lng, lat order).
func (b Boundary) Polygon() orb.Polygon {
	ring := make(orb.Ring, 0, len(b)+1)
	for _, p := range b {
		ring = append(ring, orb.Point{p.Lng, p.Lat})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// AreaHectares returns the geodesic area enclosed by the boundary.
func (b Boundary) AreaHectares() float64 {
	if len(b) < 3 {
		return 0
	}
	return geospatial.SquareMetersToHectares(math.Abs(geo.Area(b.Polygon())))
}

// PerimeterMeters returns the great-circle length of the closed ring, on the
// same earth model as AreaHectares.
func (b Boundary) PerimeterMeters() float64 {
	if len(b) < 2 {
		return 0
	}
	return geo.Length(b.Polygon())
}

// AreaAcres returns the geodesic area in acres.
func (b Boundary) AreaAcres() float64 {
	return geospatial.HectaresToAcres(b.AreaHectares())
}

// Centroid returns the centre of the boundary's bounding box.
func (b Boundary) Centroid() LatLng {
	if len(b) == 0 {
		return LatLng{}
	}
	c := b.Polygon().Bound().Center()
	return LatLng{Lat: c.Lat(), Lng: c.Lon()}
}

// Feature returns the boundary as a GeoJSON polygon feature.
func (b Boundary) Feature(props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(b.Polygon())
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}
