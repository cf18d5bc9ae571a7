// Package news searches agricultural news providers.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/kunaldubey10/Agrishield/internal/adapters/news"

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON fetches rawURL and decodes the body into dst inside a span named spanName.
func getJSON(ctx context.Context, hc *http.Client, spanName, query, rawURL string, dst any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("news.query", query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("%s request: %w", spanName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%s returned status %d: %s", spanName, resp.StatusCode, body)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s response: %w", spanName, err)
	}
	return nil
}

// parseTime accepts the layouts the providers publish; unknown formats yield the zero time.
func parseTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
