//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handler "github.com/kunaldubey10/Agrishield/internal/adapters/http"
	"github.com/kunaldubey10/Agrishield/internal/adapters/postgres"
	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
	"github.com/kunaldubey10/Agrishield/internal/pkg/config"
)

// setupTestDB connects to the test database and applies migrations.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("agrishield-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Database.Enabled() {
		t.Skip("AGRISHIELD_DATABASE_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.Migrate(ctx, "up", nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with the real field repository and no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	sessions := usecases.NewSessionService(newCanvas, nil, nil, usecases.SessionConfig{})
	t.Cleanup(sessions.Shutdown)

	return &handler.Dependencies{
		Sessions:     sessions,
		Orchestrator: usecases.NewAnalysisOrchestrator(&mockAnalyzer{}, nil),
		Fields:       usecases.NewFieldService(postgres.NewFieldRepo(db), sessions, nil, nil),
		Backend:      &mockAnalyzer{},
		DB:           db,
	}
}

func TestIntegration_Ready(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(t, db))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_SaveAndFetchField(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/sessions", nil), -1)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var sess struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	var fieldID string
	post := func(path, body string) int {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		if resp.StatusCode == 201 {
			var f domain.Field
			if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
				t.Fatalf("decode field: %v", err)
			}
			t.Cleanup(func() { _ = postgres.NewFieldRepo(db).Delete(context.Background(), f.ID) })
			fieldID = f.ID
		}
		return resp.StatusCode
	}

	if code := post("/v1/sessions/"+sess.SessionID+"/draw-events", rectangleEvent); code != 200 {
		t.Fatalf("draw: expected 200, got %d", code)
	}
	if code := post("/v1/sessions/"+sess.SessionID+"/fields", `{"name":"Integration plot","location":"Ludhiana","last_planted_date":"2024-06-15"}`); code != 201 {
		t.Fatalf("save field: expected 201, got %d", code)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/fields/"+fieldID, nil), -1)
	if err != nil {
		t.Fatalf("get field: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Field
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Integration plot" || len(got.Boundary) != 4 {
		t.Errorf("unexpected field: %+v", got)
	}
	if got.LastPlantedDate == nil || *got.LastPlantedDate != "2024-06-15" {
		t.Errorf("last_planted_date not round-tripped: %v", got.LastPlantedDate)
	}
}
