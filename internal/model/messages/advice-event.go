package messages

import "time"

// IrrigationAdviceEvent is published on event/irrigationAdvice/{zone} at
// QoS 1 whenever the advisor produces a recommendation for a zone.
type IrrigationAdviceEvent struct {
	ID     string `json:"id"`
	ZoneID string `json:"zone_id"`
	Crop   string `json:"crop,omitempty"`

	NeedMM      float64 `json:"need_mm"`
	EToMM       float64 `json:"eto_mm"`
	Priority    string  `json:"priority"`  // High | Medium | Low
	Frequency   string  `json:"frequency"` // e.g. "Daily"
	MoisturePct float64 `json:"moisture_pct"`

	Timestamp time.Time `json:"timestamp"`
}
