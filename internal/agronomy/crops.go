package agronomy

import (
	"sort"

	"github.com/agrisense/agrisense/internal/model/entities"
)

// CropScore pairs a crop with its suitability score for a soil sample.
type CropScore struct {
	Crop  string
	Score int
}

// SuitabilityScore rates how well a crop fits a soil sample, the soil
// temperature and the current season. Maximum is 110: N 25, P 20, K 20,
// pH 20, temperature 15, season bonus 10. Values inside the crop's ideal
// range earn full points; values near the range midpoint earn partial
// credit.
func SuitabilityScore(s SoilSample, soilTempC float64, season string, c entities.Crop) int {
	score := 0

	if s.NitrogenMgKg >= c.NitrogenMin && s.NitrogenMgKg <= c.NitrogenMax {
		score += 25
	} else if abs(s.NitrogenMgKg-(c.NitrogenMin+c.NitrogenMax)/2) < 30 {
		score += 10
	}
	if s.PhosphorusMgKg >= c.PhosphorusMin && s.PhosphorusMgKg <= c.PhosphorusMax {
		score += 20
	} else if abs(s.PhosphorusMgKg-(c.PhosphorusMin+c.PhosphorusMax)/2) < 20 {
		score += 8
	}
	if s.PotassiumMgKg >= c.PotassiumMin && s.PotassiumMgKg <= c.PotassiumMax {
		score += 20
	} else if abs(s.PotassiumMgKg-(c.PotassiumMin+c.PotassiumMax)/2) < 25 {
		score += 8
	}
	if s.PH >= c.PHMin && s.PH <= c.PHMax {
		score += 20
	} else if abs(s.PH-(c.PHMin+c.PHMax)/2) < 1 {
		score += 8
	}
	if soilTempC >= c.TemperatureMinC && soilTempC <= c.TemperatureMaxC {
		score += 15
	}
	if c.GrowingSeason == "Annual" || c.GrowingSeason == "Year-round" || c.GrowingSeason == season {
		score += 10
	}

	return score
}

// RecommendCrops ranks the database by suitability and returns the topN
// entries. Ties break alphabetically so the ranking is deterministic.
func RecommendCrops(s SoilSample, soilTempC float64, season string, db []entities.Crop, topN int) []CropScore {
	scores := make([]CropScore, 0, len(db))
	for _, c := range db {
		scores = append(scores, CropScore{Crop: c.Name, Score: SuitabilityScore(s, soilTempC, season, c)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Crop < scores[j].Crop
	})
	if topN > 0 && topN < len(scores) {
		scores = scores[:topN]
	}
	return scores
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
