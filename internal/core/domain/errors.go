package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidShape     = errors.New("invalid shape")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrEmptyQuery       = errors.New("search query must not be empty")
	ErrUnknownRegion    = errors.New("unknown region")
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	ErrCanvasClosed     = errors.New("map canvas closed")
	ErrSurveysDisabled  = errors.New("field surveys are not configured")
)

// Messages shown when an analysis is gated before submission.
const (
	MsgSelectArea      = "Please select an area on the map first"
	MsgSelectDateRange = "Please select a date range"
	MsgAnalysisFailed  = "Failed to analyze vegetation index"
)

// ValidationError is a precondition failure that blocks an analysis.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation errors for the analysis preconditions, in the order they are checked.
var (
	ErrNoSelection = &ValidationError{Message: MsgSelectArea}
	ErrNoDateRange = &ValidationError{Message: MsgSelectDateRange}
)

// AnalysisError is a failure reported by the analysis endpoint.
// Message carries the endpoint's own error text and may be empty.
type AnalysisError struct {
	StatusCode int
	Message    string
}

func (e *AnalysisError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgAnalysisFailed
}
