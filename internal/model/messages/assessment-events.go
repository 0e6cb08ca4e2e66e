package messages

import "time"

// SoilAssessmentEvent carries the soil health verdict for a zone, published
// on event/soilAssessment/{zone}.
type SoilAssessmentEvent struct {
	ZoneID string `json:"zone_id"`

	HealthScore  float64  `json:"health_score"`
	Category     string   `json:"category"` // Excellent | Good | Fair | Poor
	Deficiencies []string `json:"deficiencies,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// WaterAssessmentEvent carries the irrigation-water verdict for a source,
// published on event/waterAssessment/{source}.
type WaterAssessmentEvent struct {
	SourceType string `json:"source_type"`

	Grade      string   `json:"grade"` // A..F
	Score      float64  `json:"score"`
	Violations []string `json:"violations,omitempty"`
	Treatment  string   `json:"treatment"`

	Timestamp time.Time `json:"timestamp"`
}
