package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var sampleRequest = domain.AnalysisRequest{
	Coordinates: domain.Boundary{{Lat: 10, Lng: 20}, {Lat: 12, Lng: 20}, {Lat: 12, Lng: 22}, {Lat: 10, Lng: 22}},
	StartDate:   "2024-01-01",
	EndDate:     "2024-01-31",
}

func TestClient_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":true,"data":{"meanIndexValue":0.73,"date":"2024-01-31T12:00:00Z"}}`)

	got, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, 0.73, got.Value)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), got.Timestamp)
}

func TestClient_LegacyField(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":true,"data":{"meanNDVI":0.41,"date":"not a date"}}`)

	c := NewClient(srv.URL, time.Second)
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	got, err := c.Analyze(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, 0.41, got.Value)
	assert.Equal(t, fixed, got.Timestamp)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"reported error", http.StatusOK, `{"success":false,"error":"No imagery for period"}`, "No imagery for period"},
		{"no error field", http.StatusOK, `{"success":false}`, domain.MsgAnalysisFailed},
		{"http error with message", http.StatusBadRequest, `{"success":false,"error":"Missing required parameters"}`, "Missing required parameters"},
		{"non json", http.StatusBadGateway, `<html>bad gateway</html>`, domain.MsgAnalysisFailed},
		{"missing data", http.StatusOK, `{"success":true}`, domain.MsgAnalysisFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), sampleRequest)

			var ae *domain.AnalysisError
			require.True(t, errors.As(err, &ae), "got %v", err)
			assert.Equal(t, tt.status, ae.StatusCode)
			assert.Equal(t, tt.message, ae.Error())
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", time.Second).Analyze(context.Background(), sampleRequest)
	require.Error(t, err)
	var ae *domain.AnalysisError
	assert.False(t, errors.As(err, &ae))
}

func TestSimulator_Range(t *testing.T) {
	s := NewSimulator(0)
	for i := 0; i < 100; i++ {
		got, err := s.Analyze(context.Background(), sampleRequest)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Value, 0.6)
		assert.Less(t, got.Value, 0.8)
	}
}

func TestSimulator_DelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewSimulator(time.Minute).Analyze(ctx, sampleRequest)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
