package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Activity names, as registered from SurveyActivities.
const (
	ActivityLoadFieldBoundary = "LoadFieldBoundary"
	ActivityAnalyzeBoundary   = "AnalyzeBoundary"
	ActivityPublishSurvey     = "PublishSurvey"
)

// FieldSurveyInput is the input for the field survey workflow.
type FieldSurveyInput struct {
	FieldID string
	Start   string
	End     string
}

// FieldSurveyWorkflow analyses a saved field's boundary over a period and
// publishes the categorised result.
func FieldSurveyWorkflow(ctx workflow.Context, input FieldSurveyInput) (*domain.Survey, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting field survey", "fieldID", input.FieldID, "start", input.Start, "end", input.End)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 90 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var boundary domain.Boundary
	if err := workflow.ExecuteActivity(ctx, ActivityLoadFieldBoundary, input.FieldID).Get(ctx, &boundary); err != nil {
		return nil, err
	}

	req := domain.AnalysisRequest{Coordinates: boundary, StartDate: input.Start, EndDate: input.End}
	var result domain.AnalysisResult
	if err := workflow.ExecuteActivity(ctx, ActivityAnalyzeBoundary, req).Get(ctx, &result); err != nil {
		return nil, err
	}

	survey := &domain.Survey{
		FieldID:   input.FieldID,
		Dates:     domain.DateRange{Start: input.Start, End: input.End},
		Result:    result,
		Category:  domain.Classify(result.Value),
		CreatedAt: workflow.Now(ctx).UTC(),
	}
	if err := workflow.ExecuteActivity(ctx, ActivityPublishSurvey, survey).Get(ctx, nil); err != nil {
		logger.Warn("survey publish failed", "fieldID", input.FieldID, "error", err)
		return nil, err
	}

	logger.Info("Field survey complete", "fieldID", input.FieldID, "category", survey.Category)
	return survey, nil
}
