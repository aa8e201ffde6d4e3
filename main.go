package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "", "Path to YAML configuration file")
	wallsFile    = flag.String("walls", "", "Path to raw wall candidate JSON (required unless serving from cache)")
	openingsFile = flag.String("openings", "", "Path to door/window position JSON (optional)")
	outputFile   = flag.String("out", "", "Write the full result JSON to this file")
	renderFile   = flag.String("render", "", "Render the floor plan to this file (.svg or .png)")
	debugRender  = flag.String("debug-render", "", "Write a raster debug view PNG to this file")
	httpMode     = flag.Bool("http", false, "Serve results over HTTP after reconstruction")
	httpPort     = flag.Int("http-port", 8080, "HTTP server port")
	publishMode  = flag.Bool("publish", false, "Publish results to MQTT (requires mqtt config)")
	resultCache  = flag.String("result-cache", "", "Path to result cache file for HTTP mode")
)

func main() {
	flag.Parse()
	fmt.Printf("planrecon version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ConfigFile:      *configFile,
		WallsFile:       *wallsFile,
		OpeningsFile:    *openingsFile,
		OutputFile:      *outputFile,
		RenderFile:      *renderFile,
		DebugRenderFile: *debugRender,
		HTTPMode:        *httpMode,
		HTTPPort:        *httpPort,
		PublishMode:     *publishMode,
		ResultCache:     *resultCache,
	})

	if err := app.Run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
