package plan

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DebugRenderer produces a quick raster view of a reconstruction result with
// room labels, meant for eyeballing pipeline output without a browser. The
// vector PlanRenderer is the presentable output; this one trades looks for
// zero setup.
type DebugRenderer struct {
	Result   *Result
	Envelope *Envelope
	Scale    float64 // Pixels per meter (default 40)
	Padding  int     // Padding in pixels
}

// NewDebugRenderer creates a debug renderer with default settings
func NewDebugRenderer(result *Result, env *Envelope) *DebugRenderer {
	return &DebugRenderer{
		Result:   result,
		Envelope: env,
		Scale:    40.0,
		Padding:  20,
	}
}

// Render draws the plan into a new RGBA image.
func (r *DebugRenderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := r.bounds()
	width := int((maxX-minX)*r.Scale) + 2*r.Padding
	height := int((maxY-minY)*r.Scale) + 2*r.Padding
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	// Image Y grows downward; world Y grows upward.
	toPixel := func(p Point) (int, int) {
		px := int((p.X-minX)*r.Scale) + r.Padding
		py := height - (int((p.Y-minY)*r.Scale) + r.Padding)
		return px, py
	}

	for _, wall := range r.Result.Walls {
		c := color.RGBA{0, 0, 139, 255}
		if wall.Kind == KindSynthesized {
			c = color.RGBA{105, 105, 105, 255}
		}
		x1, y1 := toPixel(wall.Start.XY())
		x2, y2 := toPixel(wall.End.XY())
		drawLine(img, x1, y1, x2, y2, c)
	}

	for i, room := range r.Result.Rooms {
		label := room.Label
		if label == "" {
			label = fmt.Sprintf("room %d (%.1f m2)", i+1, room.Area)
		}
		cx, cy := toPixel(room.Centroid)
		drawText(img, cx-len(label)*3, cy, label, color.RGBA{139, 0, 0, 255})
	}

	return img
}

// SavePNG renders and writes the debug view to a PNG file.
func (r *DebugRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating debug PNG: %w", err)
	}
	defer f.Close()
	return png.Encode(f, r.Render())
}

func (r *DebugRenderer) bounds() (minX, minY, maxX, maxY float64) {
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
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}

// drawLine draws a 1px Bresenham line clipped to the image bounds.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x1, y1).In(img.Bounds()) {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
