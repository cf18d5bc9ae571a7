package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
)

// SurveyActivities holds the activity implementations for the field survey workflow.
type SurveyActivities struct {
	Fields    ports.FieldRepository
	Analyzer  ports.VegetationAnalyzer
	Publisher ports.EventPublisher
}

// LoadFieldBoundary returns the stored boundary of a saved field.
// A field that no longer exists fails the workflow without retries.
func (a *SurveyActivities) LoadFieldBoundary(ctx context.Context, fieldID string) (domain.Boundary, error) {
	field, err := a.Fields.GetByID(ctx, fieldID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, temporal.NewNonRetryableApplicationError("field not found", "FieldNotFound", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load field %s: %w", fieldID, err)
	}
	return field.Boundary, nil
}

// AnalyzeBoundary runs the vegetation index analysis. Requests the endpoint
// rejects as malformed are not retried.
func (a *SurveyActivities) AnalyzeBoundary(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	res, err := a.Analyzer.Analyze(ctx, req)
	if err != nil {
		var ae *domain.AnalysisError
		if errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500 {
			return domain.AnalysisResult{}, temporal.NewNonRetryableApplicationError(ae.Error(), "AnalysisRejected", err)
		}
		return domain.AnalysisResult{}, fmt.Errorf("analyze: %w", err)
	}
	activity.GetLogger(ctx).Info("boundary analysed", "points", len(req.Coordinates), "value", res.Value)
	return *res, nil
}

// PublishSurvey announces a completed survey. Without a publisher the result
// is only logged.
func (a *SurveyActivities) PublishSurvey(ctx context.Context, survey *domain.Survey) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Info("survey (no publisher)", "fieldID", survey.FieldID, "category", survey.Category)
		return nil
	}
	if err := a.Publisher.PublishSurvey(ctx, survey); err != nil {
		return fmt.Errorf("publish survey %s: %w", survey.FieldID, err)
	}
	return nil
}
