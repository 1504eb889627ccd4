package model

// Region is a normalized bounding box inside a captured frame.
// All coordinates are fractions of the frame size in [0,1].
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// FaceRegion is one detected face with its resolved gender.
type FaceRegion struct {
	Bounds     Region  `json:"bounds"`
	Gender     Gender  `json:"gender"`
	Confidence float64 `json:"confidence"`
}

// MatchResult is the outcome of classifying an identifier against the
// pattern catalog.
type MatchResult struct {
	Category       Category      `json:"category"`
	Confidence     float64       `json:"confidence"`
	MatchedPattern string        `json:"matched_pattern"`
	Source         PatternSource `json:"source"`
	IsCustom       bool          `json:"is_custom"`
	EntryID        int64         `json:"entry_id"`
}

// DetectionSignal carries one frame's worth of upstream detector output.
// It is ephemeral: built per evaluation, never stored.
type DetectionSignal struct {
	MaleCount           int          `json:"male_count"`
	FemaleCount         int          `json:"female_count"`
	UnknownCount        int          `json:"unknown_count"`
	GenderConfidence    float64      `json:"gender_confidence"`
	NSFWContentDensity  float64      `json:"nsfw_content_density"`
	SpatialDistribution float64      `json:"spatial_distribution"`
	Faces               []FaceRegion `json:"faces,omitempty"`
	SiteMatch           *MatchResult `json:"site_match,omitempty"`
}

// BlockingDecision is the aggregator's verdict for one signal.
type BlockingDecision struct {
	ShouldBlur        bool     `json:"should_blur"`
	BlurRegions       []Region `json:"blur_regions,omitempty"`
	RecommendedAction Action   `json:"recommended_action"`
	Category          Category `json:"category,omitempty"`
	Confidence        float64  `json:"confidence"`
	ReflectionSeconds int      `json:"reflection_seconds"`
	WarningLevel      float64  `json:"warning_level"`
}

// Clamp01 bounds a float to [0,1]. Out-of-range policy and signal
// values are corrected rather than rejected.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
