// Package analysis talks to the vegetation index analysis endpoint and
// provides a simulated analyzer for running without one.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const tracerName = "github.com/kunaldubey10/Agrishield/internal/adapters/analysis"

// Response is the analysis endpoint's JSON envelope.
type Response struct {
	Success bool          `json:"success"`
	Data    *ResponseData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ResponseData carries the mean index value. Legacy endpoints name it meanNDVI.
type ResponseData struct {
	MeanIndexValue *float64 `json:"meanIndexValue,omitempty"`
	MeanNDVI       *float64 `json:"meanNDVI,omitempty"`
	Date           string   `json:"date"`
}

// Value returns whichever mean field is present.
func (d *ResponseData) Value() (float64, bool) {
	switch {
	case d == nil:
		return 0, false
	case d.MeanIndexValue != nil:
		return *d.MeanIndexValue, true
	case d.MeanNDVI != nil:
		return *d.MeanNDVI, true
	default:
		return 0, false
	}
}

// Client implements ports.VegetationAnalyzer over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	now      func() time.Time
}

// NewClient creates a client posting to endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		now:      time.Now,
	}
}

// Analyze posts {coordinates, startDate, endDate} and returns the mean value.
// Failures the endpoint reports come back as *domain.AnalysisError.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.ndvi")
	defer span.End()
	span.SetAttributes(
		attribute.Int("analysis.points", len(req.Coordinates)),
		attribute.String("analysis.start", req.StartDate),
		attribute.String("analysis.end", req.EndDate),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	result, err := c.decode(resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Float64("analysis.value", result.Value))
	return result, nil
}

func (c *Client) decode(resp *http.Response) (*domain.AnalysisResult, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.AnalysisError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		return nil, &domain.AnalysisError{StatusCode: resp.StatusCode, Message: out.Error}
	}

	value, ok := out.Data.Value()
	if !ok {
		return nil, &domain.AnalysisError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	ts, err := time.Parse(time.RFC3339Nano, out.Data.Date)
	if err != nil {
		ts = c.now()
	}
	return &domain.AnalysisResult{Value: value, Timestamp: ts}, nil
}
