package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kwv/planrecon/plan"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// squareResult reconstructs a simple 10x8 envelope with one partition so all
// endpoints have something to serve.
func squareResult(t *testing.T) *plan.Result {
	t.Helper()
	env := &plan.Envelope{XMin: 0, XMax: 10, YMin: 0, YMax: 8}
	result, err := plan.Reconstruct([]plan.Segment{
		{Start: plan.Point3{X: 5, Y: 0}, End: plan.Point3{X: 5, Y: 8}, Thickness: 0.15, SourceID: "partition"},
	}, env, nil, nil)
	if err != nil {
		t.Fatalf("Reconstruct fixture: %v", err)
	}
	return result
}

// populatedTracker returns a ResultTracker that already holds a result.
func populatedTracker(t *testing.T) *plan.ResultTracker {
	t.Helper()
	tracker := plan.NewResultTracker()
	if err := tracker.SetResult(squareResult(t)); err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	return tracker
}

func testConfig() *plan.Config {
	return &plan.Config{
		Envelope: &plan.Envelope{XMin: 0, XMax: 10, YMin: 0, YMax: 8},
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// /health
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	handler := newHTTPServer(plan.NewResultTracker(), testConfig())

	rec := get(t, handler, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status struct {
		Status    string `json:"status"`
		HasResult bool   `json:"hasResult"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("parse health body: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.HasResult {
		t.Error("hasResult should be false for an empty tracker")
	}
}

func TestHealthEndpoint_WithResult(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/health")
	var status struct {
		HasResult bool `json:"hasResult"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("parse health body: %v", err)
	}
	if !status.HasResult {
		t.Error("hasResult should be true")
	}
}

// ---------------------------------------------------------------------------
// API endpoints
// ---------------------------------------------------------------------------

func TestAPIEndpoints_NoResult(t *testing.T) {
	handler := newHTTPServer(plan.NewResultTracker(), testConfig())

	for _, path := range []string{"/api/walls", "/api/rooms", "/api/report", "/plan.svg", "/plan.png"} {
		rec := get(t, handler, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503 before any reconstruction", path, rec.Code)
		}
	}
}

func TestWallsEndpoint(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/api/walls")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var fc plan.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("parse walls body: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %s, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) != 5 {
		t.Errorf("got %d wall features, want 5", len(fc.Features))
	}
}

func TestRoomsEndpoint(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/api/rooms")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var fc plan.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("parse rooms body: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Errorf("got %d room features, want 2", len(fc.Features))
	}
}

func TestReportEndpoint(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/api/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Report plan.Report `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse report body: %v", err)
	}
	if body.Report.WallCount != 5 || body.Report.RoomCount != 2 {
		t.Errorf("report = %+v, want 5 walls / 2 rooms", body.Report)
	}
}

// ---------------------------------------------------------------------------
// rendered plan endpoints
// ---------------------------------------------------------------------------

func TestPlanSVGEndpoint(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/plan.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body does not look like SVG")
	}
}

func TestPlanPNGEndpoint(t *testing.T) {
	handler := newHTTPServer(populatedTracker(t), testConfig())

	rec := get(t, handler, "/plan.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	// PNG magic bytes
	body := rec.Body.Bytes()
	if len(body) < 8 || body[0] != 0x89 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Error("body does not start with the PNG signature")
	}
}

func TestPlanEndpoints_NilConfig(t *testing.T) {
	// A server started without a config file still renders from the wall
	// extent.
	handler := newHTTPServer(populatedTracker(t), nil)

	rec := get(t, handler, "/plan.svg")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with nil config", rec.Code)
	}
}
