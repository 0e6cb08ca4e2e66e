package messages

import "time"

// WaterReading is one water quality sample for an irrigation source,
// published on sensor/water/{source}.
type WaterReading struct {
	SourceType string `json:"source_type"` // Borewell | River | Canal | Rainwater

	PH               float64 `json:"ph"`
	TDSPpm           float64 `json:"tds_ppm"`
	TurbidityNTU     float64 `json:"turbidity_ntu"`
	DissolvedO2MgL   float64 `json:"dissolved_oxygen_mg_l"`
	HardnessMgL      float64 `json:"hardness_mg_l"`
	ChlorideMgL      float64 `json:"chloride_mg_l"`
	SulfateMgL       float64 `json:"sulfate_mg_l"`
	NitrateMgL       float64 `json:"nitrate_mg_l"`
	WaterTemperature float64 `json:"water_temperature_c"`

	Timestamp time.Time `json:"timestamp"`
}
