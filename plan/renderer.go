package plan

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// tier and kind colors for plan rendering
var (
	colorHighTier    = color.RGBA{0, 0, 139, 255}    // dark blue
	colorMediumTier  = color.RGBA{184, 134, 11, 255} // dark goldenrod
	colorSynthesized = color.RGBA{105, 105, 105, 255}
	colorRoomFill    = color.RGBA{100, 149, 237, 60} // translucent cornflower
	colorGrid        = color.RGBA{170, 170, 170, 255}
)

// PlanRenderer renders a reconstruction result as a 2D floor plan for human
// inspection. Scale converts world meters to canvas units (millimeters on
// the page).
type PlanRenderer struct {
	Result      *Result
	Envelope    *Envelope
	Scale       float64           // Canvas units per meter (default 10)
	Padding     float64           // Padding in meters
	GridSpacing float64           // Grid line spacing in meters; 0 disables
	Resolution  canvas.Resolution // Resolution for PNG output
}

// NewPlanRenderer creates a renderer with default settings
func NewPlanRenderer(result *Result, env *Envelope) *PlanRenderer {
	return &PlanRenderer{
		Result:      result,
		Envelope:    env,
		Scale:       10.0,
		Padding:     1.0,
		GridSpacing: 1.0,
		Resolution:  canvas.DPI(150),
	}
}

// canvasRenderer is the interface both the svg and rasterizer backends
// implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the plan as an SVG to the provided writer
func (r *PlanRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.worldBounds()
	width := ((maxX - minX) + 2*r.Padding) * r.Scale
	height := ((maxY - minY) + 2*r.Padding) * r.Scale

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, maxX, maxY, width, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the plan as a PNG to the provided writer
func (r *PlanRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.worldBounds()
	width := ((maxX - minX) + 2*r.Padding) * r.Scale
	height := ((maxY - minY) + 2*r.Padding) * r.Scale

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, maxX, maxY, width, height)
	return png.Encode(w, rast)
}

// renderToCanvas draws rooms, walls, and grid (shared logic for SVG and PNG)
func (r *PlanRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, maxX, maxY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p Point) (float64, float64) {
		return (p.X - minX + r.Padding) * r.Scale, (p.Y - minY + r.Padding) * r.Scale
	}

	// Room fills first so walls draw on top.
	roomStyle := canvas.DefaultStyle
	roomStyle.Fill = canvas.Paint{Color: colorRoomFill}
	roomStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, room := range r.Result.Rooms {
		if len(room.Outline) < 3 {
			continue
		}
		cp := &canvas.Path{}
		for i, p := range room.Outline {
			cx, cy := toCanvas(p)
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		cp.Close()
		renderer.RenderPath(cp, roomStyle, canvas.Identity)
	}

	// Grid lines under the walls.
	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: colorGrid}
		gridStyle.StrokeWidth = 0.2
		gridStyle.Dashes = []float64{1.0, 1.0}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Point{X: x, Y: minY})
			x2, y2 := toCanvas(Point{X: x, Y: maxY})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Point{X: minX, Y: y})
			x2, y2 := toCanvas(Point{X: maxX, Y: y})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Walls, colored by tier/kind, stroke width from wall thickness.
	for _, wall := range r.Result.Walls {
		wallStyle := canvas.DefaultStyle
		wallStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		wallStyle.Stroke = canvas.Paint{Color: wallColor(wall)}
		wallStyle.StrokeWidth = wallStrokeWidth(wall, r.Scale)

		cp := &canvas.Path{}
		x1, y1 := toCanvas(wall.Start.XY())
		x2, y2 := toCanvas(wall.End.XY())
		cp.MoveTo(x1, y1)
		cp.LineTo(x2, y2)
		renderer.RenderPath(cp, wallStyle, canvas.Identity)
	}
}

// wallColor picks the stroke color for a wall by kind and tier.
func wallColor(w Segment) color.RGBA {
	if w.Kind == KindSynthesized {
		return colorSynthesized
	}
	if w.Tier == TierMedium {
		return colorMediumTier
	}
	return colorHighTier
}

// wallStrokeWidth maps the wall thickness to a canvas stroke width, with a
// floor so zero-thickness synthesized edges stay visible.
func wallStrokeWidth(w Segment, scale float64) float64 {
	width := w.Thickness * scale
	if width < 0.5 {
		width = 0.5
	}
	return width
}

// worldBounds returns the drawing extent: the envelope when present,
// otherwise the bounding box of all walls.
func (r *PlanRenderer) worldBounds() (minX, minY, maxX, maxY float64) {
	if r.Envelope != nil {
		return r.Envelope.XMin, r.Envelope.YMin, r.Envelope.XMax, r.Envelope.YMax
	}

	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	for _, w := range r.Result.Walls {
		for _, p := range []Point{w.Start.XY(), w.End.XY()} {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		// No walls at all: draw an empty unit square.
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}
