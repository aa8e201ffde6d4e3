package plan

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// SegmentToLineString converts a wall segment to a GeoJSON LineString.
// Coordinates are in world meters (x, y).
func SegmentToLineString(s Segment) *Geometry {
	coords := [][2]float64{
		{s.Start.X, s.Start.Y},
		{s.End.X, s.End.Y},
	}
	coordsJSON, _ := json.Marshal(coords)
	return &Geometry{
		Type:        GeometryLineString,
		Coordinates: coordsJSON,
	}
}

// RoomToPolygon converts a room outline to a closed GeoJSON Polygon.
// Collinear intermediate nodes (junction artifacts along straight runs) are
// collapsed out with a Douglas-Peucker pass at centimeter tolerance.
func RoomToPolygon(room RoomCandidate) *Geometry {
	ring := make(orb.Ring, 0, len(room.Outline)+1)
	for _, p := range room.Outline {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	if len(ring) > 4 {
		if simplified, ok := simplify.DouglasPeucker(0.01).Simplify(ring.Clone()).(orb.Ring); ok && len(simplified) >= 4 {
			ring = simplified
		}
	}

	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = [2]float64{p[0], p[1]}
	}
	rings := [][][2]float64{coords}
	coordsJSON, _ := json.Marshal(rings)
	return &Geometry{
		Type:        GeometryPolygon,
		Coordinates: coordsJSON,
	}
}

// WallsToFeatureCollection converts the validated wall list to GeoJSON.
// Each wall carries kind, tier, confidence, thickness, and source
// traceability in its properties.
func WallsToFeatureCollection(walls []Segment) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, w := range walls {
		props := map[string]interface{}{
			"name":       w.Name,
			"kind":       string(w.Kind),
			"tier":       string(w.Tier),
			"confidence": w.Scores.Composite,
			"thickness":  w.Thickness,
			"sourceId":   w.SourceID,
			"length":     w.Length(),
		}
		f := NewFeature(SegmentToLineString(w), props)
		f.ID = w.Name
		fc.AddFeature(f)
	}
	return fc
}

// RoomsToFeatureCollection converts detected rooms to GeoJSON polygons with
// area and bounding-wall references in the properties.
func RoomsToFeatureCollection(rooms []RoomCandidate) *FeatureCollection {
	fc := NewFeatureCollection()
	for i, room := range rooms {
		props := map[string]interface{}{
			"area":               room.Area,
			"boundingSegmentIds": room.SegmentIDs,
		}
		if room.Label != "" {
			props["label"] = room.Label
		}
		f := NewFeature(RoomToPolygon(room), props)
		f.ID = i
		fc.AddFeature(f)
	}
	return fc
}
