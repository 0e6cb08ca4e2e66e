package messages

import (
	"time"

	"github.com/agrisense/agrisense/internal/model/entities"
)

// SoilReading is one soil sensor sample for a zone, published on
// sensor/soil/{zone}.
type SoilReading struct {
	ZoneID   string            `json:"zone_id"`
	SoilType entities.SoilType `json:"soil_type"`
	Crop     string            `json:"crop,omitempty"`

	NitrogenMgKg     float64 `json:"nitrogen_mg_kg"`
	PhosphorusMgKg   float64 `json:"phosphorus_mg_kg"`
	PotassiumMgKg    float64 `json:"potassium_mg_kg"`
	PH               float64 `json:"ph"`
	OrganicMatterPct float64 `json:"organic_matter_pct"`
	MoisturePct      float64 `json:"moisture_pct"`
	SoilTemperatureC float64 `json:"soil_temperature_c"`
	ECMsCm           float64 `json:"ec_mscm"`

	Aggregated bool      `json:"aggregated"`
	Timestamp  time.Time `json:"timestamp"`
}
