package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPIDoc locates the openapi.yaml file by walking up from the test directory.
func findOpenAPIDoc(t *testing.T) string {
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPIDocument checks the API description is valid and covers every route.
func TestOpenAPIDocument(t *testing.T) {
	docPath := findOpenAPIDoc(t)
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse API description: %v", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("API description validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/regions",
		"/v1/ndvi/legend",
		"/v1/ndvi/classify",
		"/v1/sessions",
		"/v1/sessions/{id}",
		"/v1/sessions/{id}/draw-events",
		"/v1/sessions/{id}/dates",
		"/v1/sessions/{id}/view/region",
		"/v1/sessions/{id}/view/locate",
		"/v1/sessions/{id}/view/search",
		"/v1/sessions/{id}/analysis",
		"/v1/sessions/{id}/fields",
		"/v1/fields",
		"/v1/fields/{id}",
		"/v1/fields/{id}/geojson",
		"/v1/fields/{id}/surveys",
		"/v1/fields/{id}/surveys/latest",
		"/v1/analysis/ndvi",
		"/api/ndvi",
		"/v1/news",
		"/v1/diagnoses",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in document", path)
		}
	}

	expectedSchemas := []string{
		"Session",
		"Selection",
		"DrawEvent",
		"DateRange",
		"MapView",
		"Region",
		"HealthBand",
		"AnalysisResult",
		"AnalysisRequest",
		"AnalysisResponse",
		"Field",
		"Survey",
		"NewsFeed",
		"Article",
		"APIError",
		"Pagination",
	}

	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("API description valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

// TestOpenAPIInfo verifies document metadata.
func TestOpenAPIInfo(t *testing.T) {
	docPath := findOpenAPIDoc(t)
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse API description: %v", err)
	}

	if doc.Info.Title != "AgriShield API" {
		t.Errorf("expected title 'AgriShield API', got %q", doc.Info.Title)
	}

	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}

	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", doc.Info.Title, doc.Info.Version, doc.Servers[0].URL)
}

func TestOpenAPILegacyRouteDeprecated(t *testing.T) {
	data, err := os.ReadFile(findOpenAPIDoc(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}
	doc, err := (&openapi3.Loader{}).LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse API description: %v", err)
	}

	legacy := doc.Paths.Find("/api/ndvi")
	if legacy == nil || legacy.Post == nil {
		t.Fatal("POST /api/ndvi missing")
	}
	if !legacy.Post.Deprecated {
		t.Error("POST /api/ndvi should be marked deprecated")
	}
	if doc.Paths.Find("/v1/analysis/ndvi").Post.Deprecated {
		t.Error("POST /v1/analysis/ndvi should not be deprecated")
	}
}
