package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

// AnalysisOrchestrator gates, submits and records vegetation index analyses
// for a session.
type AnalysisOrchestrator struct {
	analyzer  ports.VegetationAnalyzer
	publisher ports.EventPublisher
}

// NewAnalysisOrchestrator creates a new AnalysisOrchestrator. publisher may be nil.
func NewAnalysisOrchestrator(analyzer ports.VegetationAnalyzer, publisher ports.EventPublisher) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{analyzer: analyzer, publisher: publisher}
}

// Submit runs one analysis of the session's boundary over its date range.
//
// A missing selection or date range is returned as a *domain.ValidationError
// and no request is sent; a submission while another is pending returns
// domain.ErrAnalysisInFlight. Failures of the analysis itself are not returned:
// they are recorded on the session as a display message, leaving the previous
// result in place. There are no retries.
func (o *AnalysisOrchestrator) Submit(ctx context.Context, sess *Session) error {
	req, err := o.begin(sess)
	if err != nil {
		return err
	}
	// Released on every exit, including a panicking analyzer.
	defer func() {
		sess.mu.Lock()
		sess.inFlight = false
		sess.mu.Unlock()
	}()

	start := time.Now()
	result, err := o.analyzer.Analyze(ctx, req)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	sess.mu.Lock()
	sess.inFlight = false
	if err != nil {
		sess.errMsg = failureMessage(err)
		sess.mu.Unlock()
		metrics.AnalysisRequests.WithLabelValues("failed").Inc()
		slog.WarnContext(ctx, "analysis failed", "session_id", sess.ID, "error", err)
		return nil
	}
	stored := *result
	sess.result = &stored
	sess.errMsg = ""
	sess.mu.Unlock()

	category := domain.Classify(result.Value)
	metrics.AnalysisRequests.WithLabelValues("succeeded").Inc()

	if o.publisher != nil {
		if err := o.publisher.PublishAnalysis(ctx, sess.ID, stored, category); err != nil {
			slog.WarnContext(ctx, "failed to publish analysis", "session_id", sess.ID, "error", err)
		}
	}
	return nil
}

// begin checks the preconditions and marks the session in flight.
func (o *AnalysisOrchestrator) begin(sess *Session) (domain.AnalysisRequest, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.inFlight {
		return domain.AnalysisRequest{}, domain.ErrAnalysisInFlight
	}
	if sess.boundary.Empty() {
		sess.errMsg = domain.ErrNoSelection.Message
		metrics.AnalysisRequests.WithLabelValues("rejected").Inc()
		return domain.AnalysisRequest{}, domain.ErrNoSelection
	}
	if !sess.dates.Complete() {
		sess.errMsg = domain.ErrNoDateRange.Message
		metrics.AnalysisRequests.WithLabelValues("rejected").Inc()
		return domain.AnalysisRequest{}, domain.ErrNoDateRange
	}

	sess.inFlight = true
	sess.errMsg = ""
	return domain.AnalysisRequest{
		Coordinates: sess.boundary.Clone(),
		StartDate:   sess.dates.Start,
		EndDate:     sess.dates.End,
	}, nil
}

// failureMessage picks the endpoint's own error text when it sent one.
func failureMessage(err error) string {
	var ae *domain.AnalysisError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return domain.MsgAnalysisFailed
}
