package messages

import "time"

// ZoneSnapshot is the aggregator's output: the mean soil state of a zone
// over the aggregation window, paired with the weather summary for the same
// window. Published on sensor/aggregated/{zone} at QoS 1.
type ZoneSnapshot struct {
	Soil    SoilReading      `json:"soil"`
	Weather WeatherAggregate `json:"weather"`

	Timestamp time.Time `json:"timestamp"`
}
