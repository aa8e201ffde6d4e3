package plan

// Point represents a 2D coordinate in meters
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3 represents a 3D coordinate in meters. Floor-plan geometry keeps Z=0;
// the coordinate exists so boundary I/O matches the upstream extractors.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY returns the 2D projection of the point.
func (p Point3) XY() Point {
	return Point{X: p.X, Y: p.Y}
}

// SegmentKind classifies the provenance of a wall segment
type SegmentKind string

const (
	// KindExterior marks walls on the building perimeter
	KindExterior SegmentKind = "exterior"
	// KindInterior marks partition walls inside the envelope
	KindInterior SegmentKind = "interior"
	// KindSynthesized marks walls produced by merging or envelope closure
	// rather than detected from raw CAD geometry
	KindSynthesized SegmentKind = "synthesized"
)

// ConfidenceScores holds the per-dimension confidence values assigned by the
// wall validator. It is an immutable value: the validator recomputes and
// replaces the whole struct rather than mutating individual fields across
// passes.
type ConfidenceScores struct {
	Connection       float64 `json:"connection"`
	OpeningProximity float64 `json:"openingProximity"`
	RoomBoundary     float64 `json:"roomBoundary"`
	Parallelism      float64 `json:"parallelism"`
	Composite        float64 `json:"composite"`
}

// Tier is the confidence bucket a validated wall falls into
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Segment is the fundamental unit of wall geometry. Start and End are in
// meters with Z=0 for floor-plan segments. SourceID traces the segment back
// to the detector/page that produced it; merged segments carry the joined
// IDs of their parents.
type Segment struct {
	Name      string           `json:"name,omitempty"`
	Start     Point3           `json:"start"`
	End       Point3           `json:"end"`
	Thickness float64          `json:"thickness"`
	Kind      SegmentKind      `json:"kind"`
	SourceID  string           `json:"sourceId,omitempty"`
	Scores    ConfidenceScores `json:"scores,omitempty"`
	Tier      Tier             `json:"tier,omitempty"`
}

// Envelope is the known outer bounding rectangle of a building floor,
// supplied by an external calibration step. Immutable for one pipeline run.
type Envelope struct {
	XMin   float64 `yaml:"xMin" json:"xMin"`
	XMax   float64 `yaml:"xMax" json:"xMax"`
	YMin   float64 `yaml:"yMin" json:"yMin"`
	YMax   float64 `yaml:"yMax" json:"yMax"`
	Height float64 `yaml:"height" json:"height"`
}

// Width returns the envelope extent along X.
func (e Envelope) Width() float64 { return e.XMax - e.XMin }

// Depth returns the envelope extent along Y.
func (e Envelope) Depth() float64 { return e.YMax - e.YMin }

// OpeningType distinguishes doors from windows
type OpeningType string

const (
	OpeningDoor   OpeningType = "door"
	OpeningWindow OpeningType = "window"
)

// Opening is a door or window position reported by the external
// opening-position extractor. Used only for confidence scoring.
type Opening struct {
	Position Point3      `json:"position"`
	Type     OpeningType `json:"type"`
}

// RoomCandidate is an inferred enclosed space: an ordered cycle of wall
// segments whose snapped endpoints form a simple polygon. Read-only after
// detection.
type RoomCandidate struct {
	Label      string    `json:"label,omitempty"`
	SegmentIDs []string  `json:"boundingSegmentIds"`
	Outline    []Point   `json:"outline"`
	Area       float64   `json:"area"`
	Centroid   Point     `json:"centroid"`
	Segments   []Segment `json:"-"`
}

// Tolerances collects the geometric thresholds used across the pipeline.
// All distances are in meters, angles in degrees.
type Tolerances struct {
	CollinearAngleDeg float64 `yaml:"collinearAngleDeg,omitempty" json:"collinearAngleDeg,omitempty"`
	CollinearDistM    float64 `yaml:"collinearDistM,omitempty" json:"collinearDistM,omitempty"`
	MergeGapM         float64 `yaml:"mergeGapM,omitempty" json:"mergeGapM,omitempty"`
	DedupeAngleDeg    float64 `yaml:"dedupeAngleDeg,omitempty" json:"dedupeAngleDeg,omitempty"`
	DedupeDistM       float64 `yaml:"dedupeDistM,omitempty" json:"dedupeDistM,omitempty"`
	OverlapFraction   float64 `yaml:"overlapFraction,omitempty" json:"overlapFraction,omitempty"`
	AdjacencyGapM     float64 `yaml:"adjacencyGapM,omitempty" json:"adjacencyGapM,omitempty"`
	MinLengthM        float64 `yaml:"minLengthM,omitempty" json:"minLengthM,omitempty"`
	MaxMergePasses    int     `yaml:"maxMergePasses,omitempty" json:"maxMergePasses,omitempty"`
	ParallelTolDeg    float64 `yaml:"parallelTolDeg,omitempty" json:"parallelTolDeg,omitempty"`
	OpeningBandM      float64 `yaml:"openingBandM,omitempty" json:"openingBandM,omitempty"`
	MinRoomAreaM2     float64 `yaml:"minRoomAreaM2,omitempty" json:"minRoomAreaM2,omitempty"`
}

// DefaultTolerances returns the pipeline's standard geometric thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		CollinearAngleDeg: 5.0,
		CollinearDistM:    0.15,
		MergeGapM:         0.6,
		DedupeAngleDeg:    5.0,
		DedupeDistM:       0.2,
		OverlapFraction:   0.8,
		AdjacencyGapM:     0.5,
		MinLengthM:        0.01,
		MaxMergePasses:    10,
		ParallelTolDeg:    2.0,
		OpeningBandM:      0.5,
		MinRoomAreaM2:     0.1,
	}
}

// ScoringConfig holds the composite-confidence policy: dimension weights,
// the opening-proximity boost, and the tier thresholds.
type ScoringConfig struct {
	ConnectionWeight   float64 `yaml:"connectionWeight,omitempty" json:"connectionWeight,omitempty"`
	RoomBoundaryWeight float64 `yaml:"roomBoundaryWeight,omitempty" json:"roomBoundaryWeight,omitempty"`
	ParallelismWeight  float64 `yaml:"parallelismWeight,omitempty" json:"parallelismWeight,omitempty"`
	OpeningBase        float64 `yaml:"openingBase,omitempty" json:"openingBase,omitempty"`
	OpeningBoost       float64 `yaml:"openingBoost,omitempty" json:"openingBoost,omitempty"`
	HighThreshold      float64 `yaml:"highThreshold,omitempty" json:"highThreshold,omitempty"`
	MediumThreshold    float64 `yaml:"mediumThreshold,omitempty" json:"mediumThreshold,omitempty"`
}

// DefaultScoring returns the standard scoring policy. Opening proximity is a
// multiplicative boost on top of the weighted structural scores so that a
// windowless partition is supported, never disqualified.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		ConnectionWeight:   0.5,
		RoomBoundaryWeight: 0.3,
		ParallelismWeight:  0.2,
		OpeningBase:        0.95,
		OpeningBoost:       0.05,
		HighThreshold:      0.95,
		MediumThreshold:    0.85,
	}
}

// MQTTConfig holds MQTT connection settings for result publishing
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// RenderConfig holds visualization settings
type RenderConfig struct {
	GridSpacingM float64 `yaml:"gridSpacingM,omitempty" json:"gridSpacingM,omitempty"` // Grid line spacing in meters (default 1)
	Resolution   float64 `yaml:"resolution,omitempty" json:"resolution,omitempty"`     // PNG DPI (default 150)
	PaddingM     float64 `yaml:"paddingM,omitempty" json:"paddingM,omitempty"`         // Margin around the plan in meters
}

// Config represents the full configuration file
type Config struct {
	Envelope   *Envelope     `yaml:"envelope,omitempty" json:"envelope,omitempty"`
	Tolerances Tolerances    `yaml:"tolerances,omitempty" json:"tolerances,omitempty"`
	Scoring    ScoringConfig `yaml:"scoring,omitempty" json:"scoring,omitempty"`
	MQTT       *MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	Render     RenderConfig  `yaml:"render,omitempty" json:"render,omitempty"`
}
