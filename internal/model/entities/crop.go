package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// Crop describes the ideal growing conditions for one crop from the
// reference database.
type Crop struct {
	Name string `json:"crop_name"`

	NitrogenMin   float64 `json:"nitrogen_min_mg_kg"`
	NitrogenMax   float64 `json:"nitrogen_max_mg_kg"`
	PhosphorusMin float64 `json:"phosphorus_min_mg_kg"`
	PhosphorusMax float64 `json:"phosphorus_max_mg_kg"`
	PotassiumMin  float64 `json:"potassium_min_mg_kg"`
	PotassiumMax  float64 `json:"potassium_max_mg_kg"`

	PHMin float64 `json:"ph_min"`
	PHMax float64 `json:"ph_max"`

	WaterRequirementMM float64 `json:"water_requirement_mm"`

	TemperatureMinC float64 `json:"temperature_min_c"`
	TemperatureMaxC float64 `json:"temperature_max_c"`

	GrowingSeason string  `json:"growing_season"`
	ExpectedYield float64 `json:"expected_yield_tons_per_ha"`
}

// LoadCropDatabase reads the crop reference database from a JSON file.
func LoadCropDatabase(path string) ([]Crop, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var crops []Crop
	if err := json.Unmarshal(raw, &crops); err != nil {
		return nil, err
	}
	if len(crops) == 0 {
		return nil, fmt.Errorf("crop database %s is empty", path)
	}
	return crops, nil
}

// FindCrop looks a crop up by name.
func FindCrop(db []Crop, name string) (Crop, bool) {
	for _, c := range db {
		if c.Name == name {
			return c, true
		}
	}
	return Crop{}, false
}
