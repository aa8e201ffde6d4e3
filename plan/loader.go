package plan

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
)

// rawWall matches the wire format produced by the upstream line-detection
// process: flat [x,y,z] coordinate triples in meters.
type rawWall struct {
	Start     [3]float64 `json:"start"`
	End       [3]float64 `json:"end"`
	Thickness float64    `json:"thickness"`
	SourceID  string     `json:"sourceId,omitempty"`
}

// rawOpening matches the opening-position extractor's output.
type rawOpening struct {
	Position [3]float64 `json:"position"`
	Type     string     `json:"type"`
}

// ParseWallCandidates decodes raw wall-candidate records. Records with
// non-finite coordinates are skipped and logged rather than failing the
// whole batch; missing source IDs get sequential ones for traceability.
func ParseWallCandidates(data []byte) ([]Segment, error) {
	var raw []rawWall
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing wall candidates: %w", err)
	}

	segments := make([]Segment, 0, len(raw))
	skipped := 0
	for i, r := range raw {
		s := Segment{
			Start:     Point3{X: r.Start[0], Y: r.Start[1], Z: r.Start[2]},
			End:       Point3{X: r.End[0], Y: r.End[1], Z: r.End[2]},
			Thickness: r.Thickness,
			Kind:      KindInterior,
			SourceID:  r.SourceID,
		}
		if s.SourceID == "" {
			s.SourceID = fmt.Sprintf("candidate-%03d", i)
		}
		if !s.isFinite() {
			skipped++
			continue
		}
		segments = append(segments, s)
	}
	if skipped > 0 {
		log.Printf("[LOAD] skipped %d wall candidates with non-finite coordinates", skipped)
	}
	return segments, nil
}

// LoadWallCandidates reads and parses a wall-candidate JSON file.
func LoadWallCandidates(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wall candidates: %w", err)
	}
	return ParseWallCandidates(data)
}

// ParseOpenings decodes opening-position records. Unknown types and
// non-finite positions are skipped with a log line.
func ParseOpenings(data []byte) ([]Opening, error) {
	var raw []rawOpening
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing openings: %w", err)
	}

	openings := make([]Opening, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		t := OpeningType(r.Type)
		if t != OpeningDoor && t != OpeningWindow {
			skipped++
			continue
		}
		finite := true
		for _, v := range r.Position {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
				break
			}
		}
		if !finite {
			skipped++
			continue
		}
		openings = append(openings, Opening{
			Position: Point3{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
			Type:     t,
		})
	}
	if skipped > 0 {
		log.Printf("[LOAD] skipped %d malformed opening records", skipped)
	}
	return openings, nil
}

// LoadOpenings reads and parses an openings JSON file.
func LoadOpenings(path string) ([]Opening, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading openings: %w", err)
	}
	return ParseOpenings(data)
}

// SaveResult writes the reconstruction result as a single JSON document.
func SaveResult(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	return nil
}
