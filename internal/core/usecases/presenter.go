package usecases

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// TimestampLayout renders analysis timestamps, e.g. "Jan 31, 2024 3:04:05 PM".
const TimestampLayout = "Jan 2, 2006 3:04:05 PM"

// ResultView is the rendered analysis outcome.
type ResultView struct {
	Value       float64               `json:"value"`
	ValueText   string                `json:"value_text"`
	Category    domain.HealthCategory `json:"category"`
	Description string                `json:"description"`
	Color       string                `json:"color"`
	Timestamp   string                `json:"timestamp,omitempty"`
}

// SelectionView summarises the active boundary.
type SelectionView struct {
	Points          int             `json:"points"`
	Summary         string          `json:"summary"`
	Coordinates     domain.Boundary `json:"coordinates"`
	AreaHectares    float64         `json:"area_hectares"`
	Area            string          `json:"area"`
	PerimeterMeters float64         `json:"perimeter_meters"`
}

// Presentation is everything the analysis page renders for a session.
type Presentation struct {
	SessionID string              `json:"session_id"`
	View      domain.MapView      `json:"view"`
	Selection *SelectionView      `json:"selection,omitempty"`
	Dates     domain.DateRange    `json:"dates"`
	Loading   bool                `json:"loading"`
	Error     string              `json:"error,omitempty"`
	Result    *ResultView         `json:"result,omitempty"`
	Legend    []domain.HealthBand `json:"legend"`
}

// Present renders a session snapshot. It has no side effects.
func Present(st SessionState) Presentation {
	p := Presentation{
		SessionID: st.ID,
		View:      st.View,
		Dates:     st.Dates,
		Loading:   st.Loading,
		Error:     st.Error,
		Legend:    domain.Legend(),
	}
	if !st.Boundary.Empty() {
		p.Selection = PresentSelection(st.Boundary)
	}
	if st.Result != nil {
		rv := PresentResult(*st.Result)
		p.Result = &rv
	}
	return p
}

// PresentResult formats a value to three decimals with its health band. A
// zero timestamp is left out.
func PresentResult(r domain.AnalysisResult) ResultView {
	band := domain.ClassifyBand(r.Value)
	rv := ResultView{
		Value:       r.Value,
		ValueText:   fmt.Sprintf("%.3f", r.Value),
		Category:    band.Category,
		Description: band.Description,
		Color:       band.Color,
	}
	// Bare values, such as a classify lookup, carry no reading time.
	if !r.Timestamp.IsZero() {
		rv.Timestamp = r.Timestamp.Format(TimestampLayout)
	}
	return rv
}

// PresentSelection summarises a non-empty boundary.
func PresentSelection(b domain.Boundary) *SelectionView {
	ha := b.AreaHectares()
	return &SelectionView{
		Points:          len(b),
		Summary:         fmt.Sprintf("%d points", len(b)),
		Coordinates:     b.Clone(),
		AreaHectares:    ha,
		Area:            humanize.FormatFloat("#,###.##", ha) + " ha",
		PerimeterMeters: b.PerimeterMeters(),
	}
}
