package plan

import (
	"fmt"
	"log"
	"sort"
)

// Report carries the counters a human-facing caller needs to explain the
// reconstruction outcome: tier breakdown, merge convergence, and drop
// counts.
type Report struct {
	InputCount        int  `json:"inputCount"`
	DegenerateDropped int  `json:"degenerateDropped"`
	MergePasses       int  `json:"mergePasses"`
	MergeConverged    bool `json:"mergeConverged"`
	MergedPairs       int  `json:"mergedPairs"`
	DuplicatesRemoved int  `json:"duplicatesRemoved"`
	High              int  `json:"high"`
	Medium            int  `json:"medium"`
	Low               int  `json:"low"`
	WallCount         int  `json:"wallCount"`
	RoomCount         int  `json:"roomCount"`
}

// Result is the read-only hand-off to downstream consumers: the final wall
// list (validated, cycle-participating, deterministically ordered and
// named), the detected rooms, and the quality report.
type Result struct {
	Walls    []Segment       `json:"walls"`
	Rooms    []RoomCandidate `json:"rooms"`
	Report   Report          `json:"report"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Reconstruct runs the full topology-reconstruction pipeline over one
// floor's raw wall candidates:
//
//	degeneracy filter -> collinear-run merge -> overlap removal ->
//	envelope closure -> overlap removal -> confidence validation ->
//	room-boundary detection
//
// envelope may be nil when no calibration is available, in which case
// closure is skipped. openings are optional and only affect confidence
// scoring. cfg may be nil for defaults.
//
// The call is synchronous and owns all segments it creates; independent
// floors can run concurrently with no shared state.
func Reconstruct(candidates []Segment, envelope *Envelope, openings []Opening, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	tol := cfg.Tolerances.withDefaults()
	scoring := cfg.Scoring.withDefaults()

	result := &Result{}
	result.Report.InputCount = len(candidates)

	// Degenerate and non-finite inputs never propagate downstream.
	working := make([]Segment, 0, len(candidates))
	for _, s := range candidates {
		if !s.isFinite() || s.IsDegenerate(tol.MinLengthM) {
			result.Report.DegenerateDropped++
			continue
		}
		working = append(working, s)
	}
	if dropped := result.Report.DegenerateDropped; dropped > 0 {
		log.Printf("[PIPELINE] dropped %d degenerate wall candidates", dropped)
	}

	merged := MergeCollinearRuns(working, tol)
	result.Report.MergePasses = merged.Iterations
	result.Report.MergeConverged = merged.Converged
	result.Report.MergedPairs = merged.MergedPairs
	result.Report.DegenerateDropped += merged.DegenerateDropped
	if !merged.Converged {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("collinear merge hit the %d-pass cap without converging; output is best-effort", tol.MaxMergePasses))
	}

	deduped := RemoveOverlaps(merged.Segments, tol)
	result.Report.DuplicatesRemoved = deduped.Removed
	working = deduped.Segments

	if envelope != nil {
		closed, err := CloseEnvelope(working, *envelope)
		if err != nil {
			return result, err
		}
		// Reconcile the synthesized perimeter against detected walls
		// covering the same spans.
		reconciled := RemoveOverlaps(closed, tol)
		result.Report.DuplicatesRemoved += reconciled.Removed
		working = reconciled.Segments
	}

	validated, vr, err := ValidateWalls(working, openings, scoring, tol)
	result.Report.High = vr.High
	result.Report.Medium = vr.Medium
	result.Report.Low = vr.Low
	if err != nil {
		return result, err
	}

	walls, rooms := DetectRooms(validated, tol)
	if envelope != nil {
		classifyKinds(walls, *envelope, tol)
	}
	nameWalls(walls)
	propagateNames(walls, rooms)
	sortRooms(rooms)

	result.Walls = walls
	result.Rooms = rooms
	result.Report.WallCount = len(walls)
	result.Report.RoomCount = len(rooms)
	return result, nil
}

// withDefaults fills zero-valued tolerance fields from DefaultTolerances.
func (t Tolerances) withDefaults() Tolerances {
	def := DefaultTolerances()
	if t.CollinearAngleDeg == 0 {
		t.CollinearAngleDeg = def.CollinearAngleDeg
	}
	if t.CollinearDistM == 0 {
		t.CollinearDistM = def.CollinearDistM
	}
	if t.MergeGapM == 0 {
		t.MergeGapM = def.MergeGapM
	}
	if t.DedupeAngleDeg == 0 {
		t.DedupeAngleDeg = def.DedupeAngleDeg
	}
	if t.DedupeDistM == 0 {
		t.DedupeDistM = def.DedupeDistM
	}
	if t.OverlapFraction == 0 {
		t.OverlapFraction = def.OverlapFraction
	}
	if t.AdjacencyGapM == 0 {
		t.AdjacencyGapM = def.AdjacencyGapM
	}
	if t.MinLengthM == 0 {
		t.MinLengthM = def.MinLengthM
	}
	if t.MaxMergePasses == 0 {
		t.MaxMergePasses = def.MaxMergePasses
	}
	if t.ParallelTolDeg == 0 {
		t.ParallelTolDeg = def.ParallelTolDeg
	}
	if t.OpeningBandM == 0 {
		t.OpeningBandM = def.OpeningBandM
	}
	if t.MinRoomAreaM2 == 0 {
		t.MinRoomAreaM2 = def.MinRoomAreaM2
	}
	return t
}

// withDefaults fills zero-valued scoring fields from DefaultScoring.
func (s ScoringConfig) withDefaults() ScoringConfig {
	def := DefaultScoring()
	if s.ConnectionWeight == 0 {
		s.ConnectionWeight = def.ConnectionWeight
	}
	if s.RoomBoundaryWeight == 0 {
		s.RoomBoundaryWeight = def.RoomBoundaryWeight
	}
	if s.ParallelismWeight == 0 {
		s.ParallelismWeight = def.ParallelismWeight
	}
	if s.OpeningBase == 0 {
		s.OpeningBase = def.OpeningBase
	}
	if s.OpeningBoost == 0 {
		s.OpeningBoost = def.OpeningBoost
	}
	if s.HighThreshold == 0 {
		s.HighThreshold = def.HighThreshold
	}
	if s.MediumThreshold == 0 {
		s.MediumThreshold = def.MediumThreshold
	}
	return s
}

// classifyKinds marks walls lying on the envelope perimeter as exterior and
// the rest as interior. Synthesized closure edges keep their kind.
func classifyKinds(walls []Segment, env Envelope, tol Tolerances) {
	onPerimeter := func(p Point) bool {
		nearX := absMin(p.X-env.XMin, p.X-env.XMax) <= tol.AdjacencyGapM
		nearY := absMin(p.Y-env.YMin, p.Y-env.YMax) <= tol.AdjacencyGapM
		inX := p.X >= env.XMin-tol.AdjacencyGapM && p.X <= env.XMax+tol.AdjacencyGapM
		inY := p.Y >= env.YMin-tol.AdjacencyGapM && p.Y <= env.YMax+tol.AdjacencyGapM
		return (nearX && inY) || (nearY && inX)
	}

	for i := range walls {
		if walls[i].Kind == KindSynthesized {
			continue
		}
		// The midpoint check keeps full-span partitions interior: their
		// endpoints touch the perimeter but their body crosses the floor.
		if onPerimeter(walls[i].Start.XY()) && onPerimeter(walls[i].End.XY()) &&
			onPerimeter(walls[i].Midpoint()) {
			walls[i].Kind = KindExterior
		} else {
			walls[i].Kind = KindInterior
		}
	}
}

func absMin(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a < b {
		return a
	}
	return b
}

// nameWalls sorts walls by composite confidence (descending, source ID as
// tie-break) and assigns stable sequential names.
func nameWalls(walls []Segment) {
	sort.SliceStable(walls, func(i, j int) bool {
		if walls[i].Scores.Composite != walls[j].Scores.Composite {
			return walls[i].Scores.Composite > walls[j].Scores.Composite
		}
		return walls[i].SourceID < walls[j].SourceID
	})
	for i := range walls {
		walls[i].Name = fmt.Sprintf("wall_%03d", i+1)
	}
}

// propagateNames rewrites room bounding-segment IDs to the assigned wall
// names so rooms and walls reference each other consistently.
func propagateNames(walls []Segment, rooms []RoomCandidate) {
	nameBySource := make(map[string]string, len(walls))
	for _, w := range walls {
		nameBySource[w.SourceID] = w.Name
	}
	for i := range rooms {
		for j, id := range rooms[i].SegmentIDs {
			if name, ok := nameBySource[id]; ok {
				rooms[i].SegmentIDs[j] = name
				rooms[i].Segments[j].Name = name
			}
		}
	}
}

// sortRooms orders rooms by area descending for deterministic output.
func sortRooms(rooms []RoomCandidate) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Area > rooms[j].Area
	})
}
