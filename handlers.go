package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/tdewolff/canvas"

	"github.com/kwv/planrecon/plan"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(tracker *plan.ResultTracker, config *plan.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasResult bool      `json:"hasResult"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasResult: tracker.HasResult(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Validated walls as GeoJSON
	mux.HandleFunc("/api/walls", func(w http.ResponseWriter, r *http.Request) {
		result := tracker.GetResult()
		if result == nil {
			http.Error(w, "No reconstruction available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, plan.WallsToFeatureCollection(result.Walls))
	})

	// Detected rooms as GeoJSON
	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		result := tracker.GetResult()
		if result == nil {
			http.Error(w, "No reconstruction available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, plan.RoomsToFeatureCollection(result.Rooms))
	})

	// Quality report with tier breakdown and warnings
	mux.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		result := tracker.GetResult()
		if result == nil {
			http.Error(w, "No reconstruction available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, struct {
			Report    plan.Report `json:"report"`
			Warnings  []string    `json:"warnings,omitempty"`
			UpdatedAt time.Time   `json:"updatedAt"`
		}{
			Report:    result.Report,
			Warnings:  result.Warnings,
			UpdatedAt: tracker.UpdatedAt(),
		})
	})

	// Rendered floor plan, vector
	mux.HandleFunc("/plan.svg", func(w http.ResponseWriter, r *http.Request) {
		result := tracker.GetResult()
		if result == nil {
			http.Error(w, "No reconstruction available", http.StatusServiceUnavailable)
			return
		}
		renderer := newConfiguredRenderer(result, config)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error rendering plan SVG: %v", err)
		}
	})

	// Rendered floor plan, raster
	mux.HandleFunc("/plan.png", func(w http.ResponseWriter, r *http.Request) {
		result := tracker.GetResult()
		if result == nil {
			http.Error(w, "No reconstruction available", http.StatusServiceUnavailable)
			return
		}
		renderer := newConfiguredRenderer(result, config)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToPNG(w); err != nil {
			log.Printf("Error rendering plan PNG: %v", err)
		}
	})

	return mux
}

// newConfiguredRenderer builds a plan renderer honoring the render config.
func newConfiguredRenderer(result *plan.Result, config *plan.Config) *plan.PlanRenderer {
	var env *plan.Envelope
	if config != nil {
		env = config.Envelope
	}
	renderer := plan.NewPlanRenderer(result, env)
	if config != nil {
		if config.Render.GridSpacingM > 0 {
			renderer.GridSpacing = config.Render.GridSpacingM
		}
		if config.Render.PaddingM > 0 {
			renderer.Padding = config.Render.PaddingM
		}
		if config.Render.Resolution > 0 {
			renderer.Resolution = canvas.DPI(config.Render.Resolution)
		}
	}
	return renderer
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
