// Package inference forwards leaf images to the plant disease classification service.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/kunaldubey10/Agrishield/internal/adapters/inference"

// ErrUpstream means the inference service could not produce a prediction.
var ErrUpstream = errors.New("inference backend failed")

// Client implements ports.DiseaseDetector.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the inference service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Predict uploads image as the multipart "image" field of POST /predict and
// returns the service's JSON verbatim.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "inference.predict")
	defer span.End()
	span.SetAttributes(attribute.String("image.filename", filename))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrUpstream)
	}
	return json.RawMessage(body), nil
}
