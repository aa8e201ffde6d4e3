package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Length returns the segment's length in meters.
func (s Segment) Length() float64 {
	return Distance(s.Start.XY(), s.End.XY())
}

// Midpoint returns the segment's midpoint.
func (s Segment) Midpoint() Point {
	return Point{
		X: (s.Start.X + s.End.X) / 2,
		Y: (s.Start.Y + s.End.Y) / 2,
	}
}

// DirectionAngle returns the segment's direction in degrees, normalized to
// [0, 180). Opposite directions map to the same angle, which is what the
// collinearity test wants.
func (s Segment) DirectionAngle() float64 {
	deg := math.Atan2(s.End.Y-s.Start.Y, s.End.X-s.Start.X) * 180 / math.Pi
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}

// IsDegenerate reports whether the segment is shorter than minLength and
// must be discarded rather than propagated downstream.
func (s Segment) IsDegenerate(minLength float64) bool {
	return s.Length() < minLength
}

// angleDifference returns the absolute difference between two direction
// angles in degrees, folded into [0, 90]. Both inputs are [0,180) direction
// angles, so a difference near 180 means the same line direction.
func angleDifference(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// distanceToLine returns the perpendicular distance from p to the infinite
// line through the segment. Distance-to-line rather than distance-to-segment
// is deliberate: collinearity must be recognized between fragments of the
// same wall line even when they do not yet touch.
func distanceToLine(p Point, s Segment) float64 {
	dx := s.End.X - s.Start.X
	dy := s.End.Y - s.Start.Y
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return Distance(p, s.Start.XY())
	}
	return math.Abs(dy*(p.X-s.Start.X)-dx*(p.Y-s.Start.Y)) / mag
}

// AreCollinear reports whether two segments lie on the same infinite line,
// within an angular tolerance (degrees) and a perpendicular-distance
// tolerance (meters). Both endpoints of b must be close to a's line.
func AreCollinear(a, b Segment, angleTolDeg, distTolM float64) bool {
	if angleDifference(a.DirectionAngle(), b.DirectionAngle()) > angleTolDeg {
		return false
	}
	return distanceToLine(b.Start.XY(), a) <= distTolM &&
		distanceToLine(b.End.XY(), a) <= distTolM
}

// AreAdjacent reports whether any endpoint of a is within gapTolM of any
// endpoint of b. The generous default gap absorbs snap errors introduced by
// upstream grid quantization; callers needing stricter adjacency pass a
// smaller tolerance.
func AreAdjacent(a, b Segment, gapTolM float64) bool {
	ae := [2]Point{a.Start.XY(), a.End.XY()}
	be := [2]Point{b.Start.XY(), b.End.XY()}
	for _, p := range ae {
		for _, q := range be {
			if Distance(p, q) <= gapTolM {
				return true
			}
		}
	}
	return false
}

// PointToSegmentDistance returns the distance from p to the closest point on
// the segment (projection clamped to the segment span). Degenerate segments
// fall back to point-to-point distance.
func PointToSegmentDistance(p Point, s Segment) float64 {
	if s.Length() == 0 {
		return Distance(p, s.Start.XY())
	}
	return planar.DistanceFromSegment(
		orb.Point{s.Start.X, s.Start.Y},
		orb.Point{s.End.X, s.End.Y},
		orb.Point{p.X, p.Y},
	)
}

// projectOnto returns the scalar projection of p onto the direction of s,
// measured from s.Start. Used for 1-D interval comparisons between collinear
// segments.
func projectOnto(p Point, s Segment) float64 {
	dx := s.End.X - s.Start.X
	dy := s.End.Y - s.Start.Y
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return 0
	}
	return ((p.X-s.Start.X)*dx + (p.Y-s.Start.Y)*dy) / mag
}

// pointAlong returns the point at scalar offset t along s's direction from
// s.Start.
func pointAlong(s Segment, t float64) Point {
	dx := s.End.X - s.Start.X
	dy := s.End.Y - s.Start.Y
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return s.Start.XY()
	}
	return Point{
		X: s.Start.X + t*dx/mag,
		Y: s.Start.Y + t*dy/mag,
	}
}

// isFinite reports whether the segment's coordinates are all finite floats.
// The geometric predicates are total over well-formed inputs; NaN/Inf must
// be filtered before they reach the pipeline.
func (s Segment) isFinite() bool {
	for _, v := range []float64{s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
