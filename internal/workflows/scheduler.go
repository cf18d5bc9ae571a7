package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Scheduler starts field surveys on a Temporal task queue.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler creates a Scheduler.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// StartSurvey implements ports.SurveyScheduler.
func (s *Scheduler) StartSurvey(ctx context.Context, fieldID string, dates domain.DateRange) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        "field-survey-" + fieldID + "-" + uuid.NewString()[:8],
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, FieldSurveyWorkflow, FieldSurveyInput{
		FieldID: fieldID,
		Start:   dates.Start,
		End:     dates.End,
	})
	if err != nil {
		return "", fmt.Errorf("start workflow: %w", err)
	}
	return run.GetRunID(), nil
}
