package plan

// DedupeResult contains the outcome of the duplicate/overlap remover
type DedupeResult struct {
	Segments []Segment
	Removed  int
}

// RemoveOverlaps discards segments whose span is mostly contained within
// another collinear segment's span. For each collinear pair, all four
// endpoints are projected onto the longer segment's direction to form two
// 1-D intervals; when the overlap covers more than Tolerances.OverlapFraction
// of the shorter interval, the shorter segment is dropped.
//
// This runs after the collinear-run merger: merging first reduces the
// candidate count and avoids discarding a fragment the merger could have
// used to bridge a gap. Length ties are broken first-seen-wins, which is
// fine because equal-length duplicates are geometrically redundant.
func RemoveOverlaps(segments []Segment, tol Tolerances) DedupeResult {
	removed := make([]bool, len(segments))

	for i := 0; i < len(segments); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(segments); j++ {
			if removed[j] {
				continue
			}
			a, b := segments[i], segments[j]
			if !AreCollinear(a, b, tol.DedupeAngleDeg, tol.DedupeDistM) &&
				!AreCollinear(b, a, tol.DedupeAngleDeg, tol.DedupeDistM) {
				continue
			}

			longer, shorter := a, b
			shorterIdx := j
			if b.Length() > a.Length() {
				longer, shorter = b, a
				shorterIdx = i
			}

			if overlapFraction(longer, shorter) > tol.OverlapFraction {
				removed[shorterIdx] = true
				if shorterIdx == i {
					break
				}
			}
		}
	}

	result := DedupeResult{Segments: make([]Segment, 0, len(segments))}
	for i, s := range segments {
		if removed[i] {
			result.Removed++
			continue
		}
		result.Segments = append(result.Segments, s)
	}
	return result
}

// overlapFraction projects both segments onto the longer one's direction and
// returns the 1-D interval overlap as a fraction of the shorter interval's
// length. Returns 0 when the shorter interval is degenerate.
func overlapFraction(longer, shorter Segment) float64 {
	l1 := projectOnto(longer.Start.XY(), longer)
	l2 := projectOnto(longer.End.XY(), longer)
	s1 := projectOnto(shorter.Start.XY(), longer)
	s2 := projectOnto(shorter.End.XY(), longer)

	if l1 > l2 {
		l1, l2 = l2, l1
	}
	if s1 > s2 {
		s1, s2 = s2, s1
	}

	shortLen := s2 - s1
	if shortLen <= 0 {
		return 0
	}

	lo := l1
	if s1 > lo {
		lo = s1
	}
	hi := l2
	if s2 < hi {
		hi = s2
	}
	overlap := hi - lo
	if overlap < 0 {
		overlap = 0
	}
	return overlap / shortLen
}
