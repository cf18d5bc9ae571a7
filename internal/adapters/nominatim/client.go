// Package nominatim resolves place names with the OpenStreetMap Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	tracerName     = "github.com/kunaldubey10/Agrishield/internal/adapters/nominatim"
)

// Client implements ports.Geocoder.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a geocoding client. Nominatim's usage policy requires an
// identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// place is one search hit. Nominatim returns coordinates as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup returns the best match for query, or nil when there is none.
func (c *Client) Lookup(ctx context.Context, query string) (*domain.Place, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "nominatim.search")
	defer span.End()
	span.SetAttributes(attribute.String("geocode.query", query))

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, body)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var hits []place
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	span.SetAttributes(attribute.Int("geocode.results", len(hits)))
	if len(hits) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", hits[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", hits[0].Lon, err)
	}
	return &domain.Place{
		Location:    domain.LatLng{Lat: lat, Lng: lng},
		DisplayName: hits[0].DisplayName,
	}, nil
}
