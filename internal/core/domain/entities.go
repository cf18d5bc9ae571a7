package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used by date pickers and the analysis endpoint.
const DateLayout = "2006-01-02"

// DateRange is the analysis period. Either end may be empty until the user picks it.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Complete reports whether both dates are set.
func (r DateRange) Complete() bool {
	return r.Start != "" && r.End != ""
}

// DefaultDateRange returns the last 30 days ending on now.
func DefaultDateRange(now time.Time) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -30).Format(DateLayout),
		End:   now.Format(DateLayout),
	}
}

// ValidateDateRange applies the date picker constraints: both dates parse,
// start is not after end, and end is not in the future.
func ValidateDateRange(r DateRange, now time.Time) error {
	if !r.Complete() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	}
	start, err := time.Parse(DateLayout, r.Start)
	if err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidDateRange, err)
	}
	end, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidDateRange, err)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start is after end", ErrInvalidDateRange)
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	if end.After(today) {
		return fmt.Errorf("%w: end is in the future", ErrInvalidDateRange)
	}
	return nil
}

// ValidatePartialDateRange is ValidateDateRange for a range that may still be
// missing one or both ends. Dates that are present must parse and lie no later
// than today.
func ValidatePartialDateRange(r DateRange, now time.Time) error {
	if r.Complete() {
		return ValidateDateRange(r, now)
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	for _, d := range []string{r.Start, r.End} {
		if d == "" {
			continue
		}
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
		}
		if t.After(today) {
			return fmt.Errorf("%w: %s is in the future", ErrInvalidDateRange, d)
		}
	}
	return nil
}

// AnalysisRequest is the body posted to the analysis endpoint.
type AnalysisRequest struct {
	Coordinates Boundary `json:"coordinates"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
}

// AnalysisResult is a vegetation-index reading for a boundary and period.
type AnalysisResult struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// MapView is the visible part of the map canvas.
type MapView struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
	Label  string `json:"label,omitempty"`
}

// Zoom levels used by the navigation aids.
const (
	ZoomCountry   = 6
	ZoomRegion    = 10
	ZoomPlace     = 12
	ZoomGeolocate = 13
)

// DefaultMapView centres the map on India.
func DefaultMapView() MapView {
	return MapView{Center: LatLng{Lat: 20.5937, Lng: 78.9629}, Zoom: ZoomCountry}
}

// Region is a named farming region the map can jump to.
type Region struct {
	Name   string `json:"name"`
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Place is a geocoding match.
type Place struct {
	Location    LatLng `json:"location"`
	DisplayName string `json:"display_name"`
}

// Field is a saved, named field boundary.
type Field struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Location        string     `json:"location"`
	Boundary        Boundary   `json:"boundary"`
	SizeAcres       float64    `json:"size_acres"`
	SoilType        string     `json:"soil_type,omitempty"`
	LastPlantedDate *string    `json:"last_planted_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Survey is a field analysis produced outside an interactive session.
type Survey struct {
	FieldID   string         `json:"field_id"`
	Dates     DateRange      `json:"dates"`
	Result    AnalysisResult `json:"result"`
	Category  HealthCategory `json:"category"`
	CreatedAt time.Time      `json:"created_at"`
}
