package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kwv/planrecon/plan"
)

// AppOptions carries the CLI flag values into the application
type AppOptions struct {
	ConfigFile      string
	WallsFile       string
	OpeningsFile    string
	OutputFile      string
	RenderFile      string
	DebugRenderFile string
	HTTPMode        bool
	HTTPPort        int
	PublishMode     bool
	ResultCache     string
}

// App encapsulates the application state and dependencies
type App struct {
	Config  *plan.Config
	Tracker *plan.ResultTracker

	opts AppOptions
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.opts = opts
}

// Run executes the requested modes: reconstruct, write/render outputs,
// publish, and optionally serve HTTP.
func (a *App) Run() error {
	if a.opts.ConfigFile != "" {
		cfg, err := plan.LoadConfig(a.opts.ConfigFile)
		if err != nil {
			return err
		}
		a.Config = cfg
	} else {
		a.Config = &plan.Config{}
	}

	if a.opts.ResultCache != "" {
		a.Tracker = plan.NewResultTrackerWithCache(a.opts.ResultCache)
	} else {
		a.Tracker = plan.NewResultTracker()
	}

	if a.opts.WallsFile != "" {
		if err := a.runReconstruct(); err != nil {
			return err
		}
	} else if !a.Tracker.HasResult() {
		return fmt.Errorf("no input: -walls is required (or -result-cache with a cached result for -http)")
	}

	if a.opts.HTTPMode {
		return a.serveHTTP()
	}
	return nil
}

// runReconstruct loads the inputs, runs the pipeline, and produces all
// requested outputs.
func (a *App) runReconstruct() error {
	candidates, err := plan.LoadWallCandidates(a.opts.WallsFile)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d wall candidates from %s\n", len(candidates), a.opts.WallsFile)

	var openings []plan.Opening
	if a.opts.OpeningsFile != "" {
		openings, err = plan.LoadOpenings(a.opts.OpeningsFile)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d openings from %s\n", len(openings), a.opts.OpeningsFile)
	}

	result, err := plan.Reconstruct(candidates, a.Config.Envelope, openings, a.Config)
	if result != nil {
		printReport(result)
	}
	if err != nil {
		if errors.Is(err, plan.ErrNoValidWalls) {
			return fmt.Errorf("reconstruction failed: %w (upstream extraction likely produced unusable geometry; re-extract before retrying)", err)
		}
		return fmt.Errorf("reconstruction failed: %w", err)
	}

	if err := a.Tracker.SetResult(result); err != nil {
		return err
	}

	if a.opts.OutputFile != "" {
		if err := plan.SaveResult(a.opts.OutputFile, result); err != nil {
			return err
		}
		fmt.Printf("Wrote result to %s\n", a.opts.OutputFile)
	}

	if a.opts.RenderFile != "" {
		if err := a.renderPlan(result); err != nil {
			return err
		}
		fmt.Printf("Rendered plan to %s\n", a.opts.RenderFile)
	}

	if a.opts.DebugRenderFile != "" {
		dr := plan.NewDebugRenderer(result, a.Config.Envelope)
		if err := dr.SavePNG(a.opts.DebugRenderFile); err != nil {
			return err
		}
		fmt.Printf("Wrote debug view to %s\n", a.opts.DebugRenderFile)
	}

	if a.opts.PublishMode {
		if err := a.publishResult(result); err != nil {
			return err
		}
	}

	return nil
}

// renderPlan writes the vector floor plan, choosing the format from the
// output file extension.
func (a *App) renderPlan(result *plan.Result) error {
	renderer := newConfiguredRenderer(result, a.Config)

	f, err := os.Create(a.opts.RenderFile)
	if err != nil {
		return fmt.Errorf("creating render file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(a.opts.RenderFile)) {
	case ".svg":
		return renderer.RenderToSVG(f)
	case ".png":
		return renderer.RenderToPNG(f)
	default:
		return fmt.Errorf("unsupported render format %q (use .svg or .png)", filepath.Ext(a.opts.RenderFile))
	}
}

// publishResult connects to MQTT from config and publishes the result.
func (a *App) publishResult(result *plan.Result) error {
	if a.Config.MQTT == nil {
		return fmt.Errorf("-publish requires an mqtt section in the config file")
	}
	client, err := plan.ConnectMQTT(a.Config.MQTT)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	publisher := plan.NewPublisher(client, a.Config.MQTT.PublishPrefix)
	return publisher.PublishResult(result)
}

// serveHTTP runs the HTTP server until interrupted.
func (a *App) serveHTTP() error {
	handler := newHTTPServer(a.Tracker, a.Config)
	addr := fmt.Sprintf(":%d", a.opts.HTTPPort)
	server := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("HTTP server listening on %s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Printf("Received %v, shutting down\n", sig)
		return server.Close()
	}
}

// printReport prints the tier breakdown and warnings so a human can tell at
// a glance why downstream placement would succeed or fail.
func printReport(result *plan.Result) {
	r := result.Report
	fmt.Printf("Input candidates:   %d\n", r.InputCount)
	fmt.Printf("Degenerate dropped: %d\n", r.DegenerateDropped)
	fmt.Printf("Merge passes:       %d (converged: %v, %d pairs coalesced)\n", r.MergePasses, r.MergeConverged, r.MergedPairs)
	fmt.Printf("Duplicates removed: %d\n", r.DuplicatesRemoved)
	fmt.Printf("Confidence tiers:   high=%d medium=%d low=%d (low tier discarded)\n", r.High, r.Medium, r.Low)
	fmt.Printf("Final output:       %d walls, %d rooms\n", r.WallCount, r.RoomCount)
	for _, w := range result.Warnings {
		fmt.Printf("WARNING: %s\n", w)
	}
}
