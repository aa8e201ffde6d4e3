package plan

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// ErrNoValidWalls is returned when validation leaves zero High or Medium
// confidence walls. Callers must treat this as a pipeline-level failure
// signalling that upstream extraction likely failed, not as an empty
// building.
var ErrNoValidWalls = errors.New("no walls passed confidence validation")

// tierEpsilon guards the tier thresholds against floating-point dust in the
// composite computation.
const tierEpsilon = 1e-9

// ValidationReport summarizes the tier breakdown of one validation pass.
type ValidationReport struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ValidateWalls assigns each wall candidate a four-dimensional confidence
// score and partitions the set into High/Medium/Low tiers. Low-tier walls
// are dropped entirely: downstream placement and compliance checks cannot
// tolerate speculative geometry.
//
// Scoring dimensions, each in [0,1]:
//   - connection: fraction of the wall's endpoints that coincide with an
//     endpoint of another wall (isolated walls are implausible)
//   - openingProximity: 1 when a door or window lies within the opening
//     band of the wall line
//   - roomBoundary: 1 when the wall can be traced into a closed cycle
//   - parallelism: 1 when the wall runs parallel to an envelope axis,
//     decaying linearly for larger deviations
//
// The composite is a weighted sum of the structural dimensions, multiplied
// by a small opening-proximity boost so openings support but never
// disqualify a wall. Returned walls carry their recomputed ConfidenceScores
// and Tier; scores are replaced wholesale, never mutated across passes.
func ValidateWalls(segments []Segment, openings []Opening, scoring ScoringConfig, tol Tolerances) ([]Segment, ValidationReport, error) {
	report := ValidationReport{}
	if len(segments) == 0 {
		return nil, report, ErrNoValidWalls
	}

	onCycle := CycleMembership(segments, tol)
	connected := connectionScores(segments, tol.AdjacencyGapM)

	var kept []Segment
	for i, s := range segments {
		scores := ConfidenceScores{
			Connection:       connected[i],
			OpeningProximity: openingProximity(s, openings, tol.OpeningBandM),
			Parallelism:      parallelismScore(s, tol.ParallelTolDeg),
		}
		if onCycle[i] {
			scores.RoomBoundary = 1.0
		}
		scores.Composite = composite(scores, scoring)

		s.Scores = scores
		switch {
		case scores.Composite >= scoring.HighThreshold-tierEpsilon:
			s.Tier = TierHigh
			report.High++
			kept = append(kept, s)
		case scores.Composite >= scoring.MediumThreshold-tierEpsilon:
			s.Tier = TierMedium
			report.Medium++
			kept = append(kept, s)
		default:
			report.Low++
		}
	}

	if len(kept) == 0 {
		return nil, report, ErrNoValidWalls
	}
	return kept, report, nil
}

// composite combines the score dimensions under the configured policy.
func composite(s ConfidenceScores, cfg ScoringConfig) float64 {
	base := cfg.ConnectionWeight*s.Connection +
		cfg.RoomBoundaryWeight*s.RoomBoundary +
		cfg.ParallelismWeight*s.Parallelism
	c := base * (cfg.OpeningBase + cfg.OpeningBoost*s.OpeningProximity)
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// connectionScores returns, per segment, the fraction of its two endpoints
// that coincide (within the adjacency tolerance) with an endpoint of some
// other segment. Endpoint lookups run against a quadtree index.
func connectionScores(segments []Segment, adjTol float64) []float64 {
	scores := make([]float64, len(segments))
	if len(segments) < 2 {
		return scores
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	refs := make([]endpointRef, 0, 2*len(segments))
	for i, s := range segments {
		for end, p := range [2]Point{s.Start.XY(), s.End.XY()} {
			refs = append(refs, endpointRef{
				pt:   orb.Point{p.X, p.Y},
				seg:  i,
				end:  end,
				flat: 2*i + end,
			})
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	pad := adjTol + 1.0
	qt := quadtree.New(orb.Bound{
		Min: orb.Point{minX - pad, minY - pad},
		Max: orb.Point{maxX + pad, maxY + pad},
	})
	for _, r := range refs {
		_ = qt.Add(r)
	}

	var buf []orb.Pointer
	for i := range segments {
		touching := 0
		for end := 0; end < 2; end++ {
			r := refs[2*i+end]
			box := orb.Bound{
				Min: orb.Point{r.pt[0] - adjTol, r.pt[1] - adjTol},
				Max: orb.Point{r.pt[0] + adjTol, r.pt[1] + adjTol},
			}
			buf = qt.InBound(buf[:0], box)
			for _, other := range buf {
				o := other.(endpointRef)
				if o.seg == i {
					continue
				}
				if planar.Distance(r.pt, o.pt) <= adjTol {
					touching++
					break
				}
			}
		}
		scores[i] = float64(touching) / 2.0
	}
	return scores
}

// openingProximity returns 1 when at least one opening lies within band
// meters of the wall, 0 otherwise.
func openingProximity(s Segment, openings []Opening, band float64) float64 {
	for _, o := range openings {
		if PointToSegmentDistance(o.Position.XY(), s) <= band {
			return 1.0
		}
	}
	return 0.0
}

// parallelismScore returns 1 when the wall is within parallelTolDeg of one
// of the two envelope axes, decaying linearly to 0 at 45 degrees off axis.
// Buildings are assumed axis-aligned by default; off-axis interior walls are
// penalized softly rather than filtered outright.
func parallelismScore(s Segment, parallelTolDeg float64) float64 {
	angle := s.DirectionAngle() // [0, 180)
	dev := math.Min(angleDifference(angle, 0), angleDifference(angle, 90))
	if dev <= parallelTolDeg {
		return 1.0
	}
	span := 45.0 - parallelTolDeg
	if span <= 0 {
		return 0.0
	}
	score := 1.0 - (dev-parallelTolDeg)/span
	if score < 0 {
		return 0.0
	}
	return score
}
