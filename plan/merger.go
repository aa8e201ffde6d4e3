package plan

import "log"

// MergeResult contains the outcome of the collinear-run merger
type MergeResult struct {
	Segments          []Segment // Merged segment set
	Iterations        int       // Number of passes performed
	Converged         bool      // Whether a pass produced zero merges before the cap
	MergedPairs       int       // Total pairs coalesced across all passes
	DegenerateDropped int       // Degenerate products discarded after convergence
}

// plannedMerge records one coalescing decision made during a pass. Merges
// are planned first and applied atomically afterward so each pass is a pure
// function from one segment list to the next.
type plannedMerge struct {
	a, b   int
	merged Segment
}

// MergeCollinearRuns repeatedly coalesces pairs of collinear, adjacent
// segments into single segments spanning both, until a full pass produces no
// merges or the pass cap is reached. The cap is a runtime safety valve, not
// a correctness mechanism: well-formed inputs converge in a few passes.
//
// Each merged segment spans the extreme projections of all four parent
// endpoints onto the shared line direction, which handles contained,
// overlapping, and merely abutting fragments alike. Degenerate products
// (length below Tolerances.MinLengthM) are dropped after convergence.
func MergeCollinearRuns(segments []Segment, tol Tolerances) MergeResult {
	result := MergeResult{Segments: segments}

	maxPasses := tol.MaxMergePasses
	if maxPasses <= 0 {
		maxPasses = 10
	}

	current := segments
	for pass := 0; pass < maxPasses; pass++ {
		planned, next := planMergePass(current, tol)
		result.Iterations++
		if len(planned) == 0 {
			result.Converged = true
			break
		}
		result.MergedPairs += len(planned)
		current = next
	}

	if !result.Converged && len(current) > 1 {
		log.Printf("[MERGE] pass cap reached after %d iterations with %d segments; returning best-effort result",
			result.Iterations, len(current))
	}

	// Discard degenerate products of the projection step.
	minLen := tol.MinLengthM
	kept := current[:0:0]
	for _, s := range current {
		if s.IsDegenerate(minLen) {
			result.DegenerateDropped++
			continue
		}
		kept = append(kept, s)
	}

	result.Segments = kept
	return result
}

// planMergePass scans all unordered pairs, plans at most one merge per
// segment, and returns the planned merges together with the next-iteration
// segment list.
func planMergePass(segments []Segment, tol Tolerances) ([]plannedMerge, []Segment) {
	var planned []plannedMerge
	claimed := make([]bool, len(segments))

	for i := 0; i < len(segments); i++ {
		if claimed[i] {
			continue
		}
		for j := i + 1; j < len(segments); j++ {
			if claimed[j] {
				continue
			}
			a, b := segments[i], segments[j]
			if !AreCollinear(a, b, tol.CollinearAngleDeg, tol.CollinearDistM) {
				continue
			}
			if !AreAdjacent(a, b, tol.MergeGapM) {
				continue
			}
			planned = append(planned, plannedMerge{a: i, b: j, merged: mergeSegments(a, b)})
			claimed[i], claimed[j] = true, true
			break
		}
	}

	if len(planned) == 0 {
		return nil, segments
	}

	next := make([]Segment, 0, len(segments)-len(planned))
	for _, pm := range planned {
		next = append(next, pm.merged)
	}
	for i, s := range segments {
		if !claimed[i] {
			next = append(next, s)
		}
	}
	return planned, next
}

// mergeSegments fuses two collinear segments into one spanning both. The
// longer segment supplies the line direction; all four endpoints are
// projected onto it and the two extreme projections become the new
// endpoints.
func mergeSegments(a, b Segment) Segment {
	base := a
	if b.Length() > a.Length() {
		base = b
	}

	tMin, tMax := 0.0, 0.0
	first := true
	for _, p := range []Point{a.Start.XY(), a.End.XY(), b.Start.XY(), b.End.XY()} {
		t := projectOnto(p, base)
		if first {
			tMin, tMax = t, t
			first = false
			continue
		}
		if t < tMin {
			tMin = t
		}
		if t > tMax {
			tMax = t
		}
	}

	start := pointAlong(base, tMin)
	end := pointAlong(base, tMax)

	thickness := a.Thickness
	if b.Thickness > thickness {
		thickness = b.Thickness
	}

	return Segment{
		Start:     Point3{X: start.X, Y: start.Y},
		End:       Point3{X: end.X, Y: end.Y},
		Thickness: thickness,
		Kind:      KindSynthesized,
		SourceID:  joinSourceIDs(a.SourceID, b.SourceID),
	}
}

// joinSourceIDs concatenates parent source IDs for traceability through the
// merge.
func joinSourceIDs(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "+" + b
	}
}
