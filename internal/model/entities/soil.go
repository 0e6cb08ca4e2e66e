package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// SoilProfiles maps a soil type to its field capacity: the moisture
// percentage the soil retains against gravity after saturation.
type SoilProfiles map[SoilType]float64

// DefaultSoilProfiles are the field capacities used when no profile file is
// configured.
func DefaultSoilProfiles() SoilProfiles {
	return SoilProfiles{
		SoilLoamy:     40,
		SoilClay:      50,
		SoilSandy:     20,
		SoilSilt:      45,
		SoilClayLoam:  48,
		SoilSandyLoam: 28,
		SoilPeaty:     60,
	}
}

// LoadSoilProfiles reads a {"Sandy": 20, ...} table from a JSON file.
func LoadSoilProfiles(path string) (SoilProfiles, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[SoilType]float64
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("soil profile table %s is empty", path)
	}
	for st, fc := range m {
		if fc <= 0 || fc > 100 {
			return nil, fmt.Errorf("soil profile %q has field capacity %g out of (0,100]", st, fc)
		}
	}
	return m, nil
}
