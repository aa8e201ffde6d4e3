package plan

import (
	"errors"
	"fmt"
)

// ErrMalformedEnvelope is returned when an envelope's bounds are inverted or
// empty. Envelope closure fails fast rather than synthesizing a degenerate
// rectangle.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Validate checks the envelope's bound ordering.
func (e Envelope) Validate() error {
	if e.XMin >= e.XMax {
		return fmt.Errorf("%w: xMin (%g) must be less than xMax (%g)", ErrMalformedEnvelope, e.XMin, e.XMax)
	}
	if e.YMin >= e.YMax {
		return fmt.Errorf("%w: yMin (%g) must be less than yMax (%g)", ErrMalformedEnvelope, e.YMin, e.YMax)
	}
	return nil
}

// CloseEnvelope appends the four ideal perimeter segments of the envelope to
// the working wall set, one per cardinal side. The injection is
// unconditional: rather than detecting perimeter gaps, the pipeline pushes
// the ideal rectangle and lets the downstream overlap remover reconcile the
// synthesized edges against any detected walls covering the same span.
//
// Synthesized edges carry zero thickness; thickness is inherited later from
// a default exterior-wall material by the downstream consumer.
func CloseEnvelope(segments []Segment, env Envelope) ([]Segment, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	sides := []struct {
		name       string
		start, end Point
	}{
		{"envelope-south", Point{env.XMin, env.YMin}, Point{env.XMax, env.YMin}},
		{"envelope-east", Point{env.XMax, env.YMin}, Point{env.XMax, env.YMax}},
		{"envelope-north", Point{env.XMax, env.YMax}, Point{env.XMin, env.YMax}},
		{"envelope-west", Point{env.XMin, env.YMax}, Point{env.XMin, env.YMin}},
	}

	out := make([]Segment, 0, len(segments)+len(sides))
	out = append(out, segments...)
	for _, side := range sides {
		out = append(out, Segment{
			Start:    Point3{X: side.start.X, Y: side.start.Y},
			End:      Point3{X: side.end.X, Y: side.end.Y},
			Kind:     KindSynthesized,
			SourceID: side.name,
		})
	}
	return out, nil
}
