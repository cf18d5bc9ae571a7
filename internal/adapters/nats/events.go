package natsadapter

import (
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Subjects
const (
	subjectSessionPrefix = "agrishield.session."
	subjectSurveyPrefix  = "agrishield.fields.survey."
)

// Event kinds carried on session subjects.
const (
	EventBoundary = "boundary"
	EventAnalysis = "analysis"
)

// SessionSubject returns the subject for one kind of session event.
func SessionSubject(sessionID, kind string) string {
	return subjectSessionPrefix + sessionID + "." + kind
}

// SessionWildcard matches every event of a session.
func SessionWildcard(sessionID string) string {
	return subjectSessionPrefix + sessionID + ".>"
}

// SurveySubject returns the subject a field's survey results are published on.
func SurveySubject(fieldID string) string {
	return subjectSurveyPrefix + fieldID
}

// SessionEvent is the JSON payload published on session subjects and relayed
// verbatim to WebSocket clients.
type SessionEvent struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id"`
	Boundary  domain.Boundary        `json:"boundary,omitempty"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Category  domain.HealthCategory  `json:"category,omitempty"`
	At        time.Time              `json:"at"`
}
