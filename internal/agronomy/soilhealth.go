package agronomy

import "math"

// SoilSample is the flat soil feature set used by the health scorer, the
// deficiency detector and the crop recommender.
type SoilSample struct {
	NitrogenMgKg     float64
	PhosphorusMgKg   float64
	PotassiumMgKg    float64
	PH               float64
	OrganicMatterPct float64
	MoisturePct      float64
	ECMsCm           float64
}

// HealthScore produces a composite soil health score in [0,100].
//
// Breakdown: NPK balance 30, pH 20, organic matter 20, moisture 15, EC 15.
func HealthScore(s SoilSample) float64 {
	score := 0.0

	// NPK balance (30 pts), ideal: N=60-120, P=30-60, K=40-80
	score += math.Max(0, 10-math.Abs(s.NitrogenMgKg-80)/8)
	score += math.Max(0, 10-math.Abs(s.PhosphorusMgKg-45)/5)
	score += math.Max(0, 10-math.Abs(s.PotassiumMgKg-60)/6)

	// pH (20 pts), ideal: 6.0-7.5
	switch {
	case s.PH >= 6.0 && s.PH <= 7.5:
		score += 20
	case s.PH >= 5.5 && s.PH <= 8.0:
		score += 12
	case s.PH >= 5.0 && s.PH <= 8.5:
		score += 5
	}

	// Organic matter (20 pts), ideal: 3-6%
	switch {
	case s.OrganicMatterPct >= 3.0 && s.OrganicMatterPct <= 6.0:
		score += 20
	case s.OrganicMatterPct >= 2.0 && s.OrganicMatterPct <= 8.0:
		score += 12
	default:
		score += 5
	}

	// Moisture (15 pts), ideal: 20-45%
	switch {
	case s.MoisturePct >= 20 && s.MoisturePct <= 45:
		score += 15
	case s.MoisturePct >= 10 && s.MoisturePct <= 60:
		score += 8
	default:
		score += 3
	}

	// EC (15 pts), ideal: 0.5-2.5 mS/cm
	switch {
	case s.ECMsCm >= 0.5 && s.ECMsCm <= 2.5:
		score += 15
	case s.ECMsCm >= 0.2 && s.ECMsCm <= 4.0:
		score += 8
	default:
		score += 2
	}

	score = math.Round(score*10) / 10
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HealthCategory buckets a health score.
func HealthCategory(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}
