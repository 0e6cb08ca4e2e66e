package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// SoilType is one of the soil classes known to the platform. The set is
// closed: every zone must carry one of these, and every one of these must
// have a field-capacity profile entry.
type SoilType string

const (
	SoilSandy     SoilType = "Sandy"
	SoilClay      SoilType = "Clay"
	SoilLoamy     SoilType = "Loamy"
	SoilSilt      SoilType = "Silt"
	SoilPeaty     SoilType = "Peaty"
	SoilClayLoam  SoilType = "Clay Loam"
	SoilSandyLoam SoilType = "Sandy Loam"
)

// Zone represents an independently monitored subdivision of farmland with
// its own soil type, crop and sensor baselines. The Base* values seed the
// synthetic sensor generator.
type Zone struct {
	ID       string   `json:"id"`
	SoilType SoilType `json:"soil_type"`
	Crop     string   `json:"crop"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	BasePH          float64 `json:"base_ph"`
	BaseNitrogen    float64 `json:"base_n_mg_kg"`
	BasePhosphorus  float64 `json:"base_p_mg_kg"`
	BasePotassium   float64 `json:"base_k_mg_kg"`
	BaseMoisturePct float64 `json:"base_moisture_pct"`
}

// LoadZones reads the zone roster from a JSON file, keyed by zone ID.
func LoadZones(path string) (map[string]Zone, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Zone
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]Zone, len(list))
	for _, z := range list {
		if z.ID == "" {
			return nil, fmt.Errorf("zone without id in %s", path)
		}
		out[z.ID] = z
	}
	return out, nil
}
