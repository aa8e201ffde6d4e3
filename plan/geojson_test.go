package plan

import (
	"encoding/json"
	"testing"
)

func TestSegmentToLineString(t *testing.T) {
	s := Segment{Start: Point3{X: 1, Y: 2}, End: Point3{X: 5, Y: 2}}
	geom := SegmentToLineString(s)

	if geom.Type != GeometryLineString {
		t.Errorf("type = %s, want LineString", geom.Type)
	}

	var coords [][2]float64
	if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
		t.Fatalf("unmarshal coordinates: %v", err)
	}
	if len(coords) != 2 {
		t.Fatalf("got %d coordinates, want 2", len(coords))
	}
	if coords[0] != [2]float64{1, 2} || coords[1] != [2]float64{5, 2} {
		t.Errorf("coordinates = %v, want [[1 2] [5 2]]", coords)
	}
}

func TestRoomToPolygon_ClosedRing(t *testing.T) {
	room := RoomCandidate{
		Outline: []Point{{0, 0}, {10, 0}, {10, 8}, {0, 8}},
	}
	geom := RoomToPolygon(room)

	if geom.Type != GeometryPolygon {
		t.Errorf("type = %s, want Polygon", geom.Type)
	}

	var rings [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
		t.Fatalf("unmarshal coordinates: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	ring := rings[0]
	if ring[0] != ring[len(ring)-1] {
		t.Error("polygon ring is not closed")
	}
	if len(ring) != 5 {
		t.Errorf("ring has %d points, want 5 (4 corners + closure)", len(ring))
	}
}

func TestRoomToPolygon_SimplifiesCollinearNodes(t *testing.T) {
	// Junction nodes along the south wall are artifacts of endpoint
	// snapping; the polygon should collapse them.
	room := RoomCandidate{
		Outline: []Point{{0, 0}, {3, 0}, {7, 0}, {10, 0}, {10, 8}, {0, 8}},
	}
	geom := RoomToPolygon(room)

	var rings [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
		t.Fatalf("unmarshal coordinates: %v", err)
	}
	if len(rings[0]) != 5 {
		t.Errorf("ring has %d points, want 5 after collinear simplification", len(rings[0]))
	}
}

func TestWallsToFeatureCollection(t *testing.T) {
	walls := []Segment{
		{
			Name:      "wall_001",
			Start:     Point3{X: 0, Y: 0},
			End:       Point3{X: 10, Y: 0},
			Thickness: 0.2,
			Kind:      KindExterior,
			SourceID:  "s1+s2",
			Tier:      TierHigh,
			Scores:    ConfidenceScores{Composite: 0.95},
		},
	}

	fc := WallsToFeatureCollection(walls)
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %s, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}

	f := fc.Features[0]
	if f.ID != "wall_001" {
		t.Errorf("feature ID = %v, want wall_001", f.ID)
	}
	if f.Properties["kind"] != "exterior" {
		t.Errorf("kind property = %v, want exterior", f.Properties["kind"])
	}
	if f.Properties["tier"] != "high" {
		t.Errorf("tier property = %v, want high", f.Properties["tier"])
	}
	if f.Properties["confidence"] != 0.95 {
		t.Errorf("confidence property = %v, want 0.95", f.Properties["confidence"])
	}
	if f.Properties["length"] != 10.0 {
		t.Errorf("length property = %v, want 10", f.Properties["length"])
	}

	// The whole collection must serialize as valid GeoJSON.
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal collection: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("re-parse collection: %v", err)
	}
	if parsed["type"] != "FeatureCollection" {
		t.Error("serialized collection lost its type")
	}
}

func TestRoomsToFeatureCollection(t *testing.T) {
	rooms := []RoomCandidate{
		{
			Label:      "kitchen",
			SegmentIDs: []string{"wall_001", "wall_002"},
			Outline:    []Point{{0, 0}, {4, 0}, {4, 3}, {0, 3}},
			Area:       12,
		},
		{
			SegmentIDs: []string{"wall_003"},
			Outline:    []Point{{5, 0}, {9, 0}, {9, 3}, {5, 3}},
			Area:       12,
		},
	}

	fc := RoomsToFeatureCollection(rooms)
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}

	if fc.Features[0].Properties["label"] != "kitchen" {
		t.Errorf("label property = %v, want kitchen", fc.Features[0].Properties["label"])
	}
	if _, ok := fc.Features[1].Properties["label"]; ok {
		t.Error("unlabeled room should carry no label property")
	}
	if fc.Features[0].Properties["area"] != 12.0 {
		t.Errorf("area property = %v, want 12", fc.Features[0].Properties["area"])
	}
	if fc.Features[1].ID != 1 {
		t.Errorf("feature ID = %v, want index 1", fc.Features[1].ID)
	}
}

func TestNewFeature_NilProperties(t *testing.T) {
	f := NewFeature(&Geometry{Type: GeometryPoint}, nil)
	if f.Properties == nil {
		t.Error("nil properties should be initialized to an empty map")
	}
}
