package plan

import (
	"strings"
	"testing"
)

func TestMergeCollinearRuns_TwoFragments(t *testing.T) {
	// Two fragments of one wall run with a small gap between them.
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 3, Y: 0}, Thickness: 0.2, SourceID: "a"},
		{Start: Point3{X: 3.1, Y: 0}, End: Point3{X: 6, Y: 0}, Thickness: 0.25, SourceID: "b"},
	}

	result := MergeCollinearRuns(input, DefaultTolerances())

	if len(result.Segments) != 1 {
		t.Fatalf("got %d segments, want 1 merged segment", len(result.Segments))
	}
	if !result.Converged {
		t.Error("merge did not converge")
	}
	if result.MergedPairs != 1 {
		t.Errorf("MergedPairs = %d, want 1", result.MergedPairs)
	}

	m := result.Segments[0]
	if !almostEqual(m.Length(), 6.0, 1e-9) {
		t.Errorf("merged length = %f, want 6", m.Length())
	}
	if m.Kind != KindSynthesized {
		t.Errorf("merged kind = %s, want synthesized", m.Kind)
	}
	if m.Thickness != 0.25 {
		t.Errorf("merged thickness = %f, want max of parents (0.25)", m.Thickness)
	}
	if !strings.Contains(m.SourceID, "a") || !strings.Contains(m.SourceID, "b") {
		t.Errorf("merged sourceId %q should trace both parents", m.SourceID)
	}
}

func TestMergeCollinearRuns_Idempotent(t *testing.T) {
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 3, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 3.1, Y: 0}, End: Point3{X: 6, Y: 0}, SourceID: "b"},
	}

	first := MergeCollinearRuns(input, DefaultTolerances())
	second := MergeCollinearRuns(first.Segments, DefaultTolerances())

	if len(second.Segments) != len(first.Segments) {
		t.Errorf("second merge changed segment count: %d -> %d", len(first.Segments), len(second.Segments))
	}
	if second.MergedPairs != 0 {
		t.Errorf("second merge coalesced %d pairs, want 0", second.MergedPairs)
	}
	if !second.Converged {
		t.Error("second merge did not converge")
	}
}

func TestMergeCollinearRuns_LengthInequality(t *testing.T) {
	// The merged segment must span at least as far as the longest input.
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 4, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 2, Y: 0}, End: Point3{X: 7, Y: 0}, SourceID: "b"},
	}

	result := MergeCollinearRuns(input, DefaultTolerances())
	if len(result.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(result.Segments))
	}
	if result.Segments[0].Length() < 5.0-1e-9 {
		t.Errorf("merged length %f shorter than longest input (5)", result.Segments[0].Length())
	}
	if !almostEqual(result.Segments[0].Length(), 7.0, 1e-9) {
		t.Errorf("merged length = %f, want 7 (union of spans)", result.Segments[0].Length())
	}

	// Merging coalesces, never invents length.
	inputSum := 0.0
	for _, s := range input {
		inputSum += s.Length()
	}
	outputSum := 0.0
	for _, s := range result.Segments {
		outputSum += s.Length()
	}
	if outputSum > inputSum+1e-9 {
		t.Errorf("output length sum %f exceeds input sum %f", outputSum, inputSum)
	}
}

func TestMergeCollinearRuns_ChainNeedsMultiplePasses(t *testing.T) {
	// Four abutting fragments collapse to one; each pass merges disjoint
	// pairs, so this requires more than one pass.
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 2, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 2, Y: 0}, End: Point3{X: 4, Y: 0}, SourceID: "b"},
		{Start: Point3{X: 4, Y: 0}, End: Point3{X: 6, Y: 0}, SourceID: "c"},
		{Start: Point3{X: 6, Y: 0}, End: Point3{X: 8, Y: 0}, SourceID: "d"},
	}

	result := MergeCollinearRuns(input, DefaultTolerances())
	if len(result.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(result.Segments))
	}
	if !result.Converged {
		t.Error("chain merge did not converge")
	}
	if result.Iterations < 2 {
		t.Errorf("Iterations = %d, expected at least 2 passes for a 4-fragment chain", result.Iterations)
	}
	if !almostEqual(result.Segments[0].Length(), 8.0, 1e-9) {
		t.Errorf("merged length = %f, want 8", result.Segments[0].Length())
	}
}

func TestMergeCollinearRuns_PerpendicularNotMerged(t *testing.T) {
	// Walls meeting at a corner share an endpoint but are not collinear.
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 5, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 5, Y: 0}, End: Point3{X: 5, Y: 5}, SourceID: "b"},
	}

	result := MergeCollinearRuns(input, DefaultTolerances())
	if len(result.Segments) != 2 {
		t.Errorf("got %d segments, want 2 (corner walls must not merge)", len(result.Segments))
	}
	if result.MergedPairs != 0 {
		t.Errorf("MergedPairs = %d, want 0", result.MergedPairs)
	}
}

func TestMergeCollinearRuns_ParallelOffsetNotMerged(t *testing.T) {
	// Opposite sides of a corridor: parallel, close in X span, but offset in
	// Y beyond the collinearity distance.
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 5, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 0, Y: 1.2}, End: Point3{X: 5, Y: 1.2}, SourceID: "b"},
	}

	result := MergeCollinearRuns(input, DefaultTolerances())
	if len(result.Segments) != 2 {
		t.Errorf("got %d segments, want 2 (corridor sides must stay separate)", len(result.Segments))
	}
}

func TestMergeCollinearRuns_NoDegenerateOutput(t *testing.T) {
	tol := DefaultTolerances()
	input := []Segment{
		{Start: Point3{X: 0, Y: 0}, End: Point3{X: 3, Y: 0}, SourceID: "a"},
		{Start: Point3{X: 3.05, Y: 0}, End: Point3{X: 6, Y: 0}, SourceID: "b"},
		{Start: Point3{X: 10, Y: 10}, End: Point3{X: 10.002, Y: 10}, SourceID: "tiny"},
	}

	result := MergeCollinearRuns(input, tol)
	for _, s := range result.Segments {
		if s.IsDegenerate(tol.MinLengthM) {
			t.Errorf("degenerate segment %q survived the merge", s.SourceID)
		}
	}
	if result.DegenerateDropped != 1 {
		t.Errorf("DegenerateDropped = %d, want 1", result.DegenerateDropped)
	}
}

func TestMergeCollinearRuns_EmptyInput(t *testing.T) {
	result := MergeCollinearRuns(nil, DefaultTolerances())
	if len(result.Segments) != 0 {
		t.Errorf("got %d segments from empty input, want 0", len(result.Segments))
	}
	if !result.Converged {
		t.Error("empty input should converge immediately")
	}
}

func TestJoinSourceIDs(t *testing.T) {
	if got := joinSourceIDs("a", "b"); got != "a+b" {
		t.Errorf("joinSourceIDs(a, b) = %q, want a+b", got)
	}
	if got := joinSourceIDs("", "b"); got != "b" {
		t.Errorf("joinSourceIDs(empty, b) = %q, want b", got)
	}
	if got := joinSourceIDs("a", ""); got != "a" {
		t.Errorf("joinSourceIDs(a, empty) = %q, want a", got)
	}
}
