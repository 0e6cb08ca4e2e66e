package agronomy

import "fmt"

// WaterSample is the flat water-quality feature set for one source reading.
type WaterSample struct {
	PH             float64
	TDSPpm         float64
	TurbidityNTU   float64
	DissolvedO2MgL float64
	HardnessMgL    float64
	ChlorideMgL    float64
	SulfateMgL     float64
	NitrateMgL     float64
	TemperatureC   float64
}

// WaterQualityScore rates a sample 0-100 across five WHO-guideline criteria
// (pH, TDS, turbidity, dissolved oxygen, nitrate), 20 points each.
func WaterQualityScore(s WaterSample) float64 {
	score := 0.0

	switch {
	case s.PH >= 6.5 && s.PH <= 8.5:
		score += 20
	case s.PH >= 6.0 && s.PH <= 9.0:
		score += 10
	}
	switch {
	case s.TDSPpm < 500:
		score += 20
	case s.TDSPpm < 1000:
		score += 10
	}
	switch {
	case s.TurbidityNTU < 5:
		score += 20
	case s.TurbidityNTU < 10:
		score += 10
	}
	switch {
	case s.DissolvedO2MgL > 6:
		score += 20
	case s.DissolvedO2MgL > 4:
		score += 10
	}
	switch {
	case s.NitrateMgL < 10:
		score += 20
	case s.NitrateMgL < 45:
		score += 10
	}

	return score
}

// GradeFromScore buckets a quality score into the A-F grade scale.
func GradeFromScore(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}

// Irrigation water quality limits (WHO/BIS).
const (
	irrigationPHMin       = 6.0
	irrigationPHMax       = 8.5
	irrigationTDSMax      = 2000 // ppm
	irrigationChlorideMax = 350  // mg/L
	irrigationSulfateMax  = 400  // mg/L
	irrigationHardnessMax = 500  // mg/L
)

// IrrigationLimitViolations lists the limits a sample breaks. An empty
// result means the water is within irrigation limits.
func IrrigationLimitViolations(s WaterSample) []string {
	var out []string
	if s.PH < irrigationPHMin || s.PH > irrigationPHMax {
		out = append(out, fmt.Sprintf("ph %.2f outside %.1f-%.1f", s.PH, irrigationPHMin, irrigationPHMax))
	}
	if s.TDSPpm > irrigationTDSMax {
		out = append(out, fmt.Sprintf("tds %.0f ppm above %d", s.TDSPpm, irrigationTDSMax))
	}
	if s.ChlorideMgL > irrigationChlorideMax {
		out = append(out, fmt.Sprintf("chloride %.0f mg/L above %d", s.ChlorideMgL, irrigationChlorideMax))
	}
	if s.SulfateMgL > irrigationSulfateMax {
		out = append(out, fmt.Sprintf("sulfate %.0f mg/L above %d", s.SulfateMgL, irrigationSulfateMax))
	}
	if s.HardnessMgL > irrigationHardnessMax {
		out = append(out, fmt.Sprintf("hardness %.0f mg/L above %d", s.HardnessMgL, irrigationHardnessMax))
	}
	return out
}

var treatmentByGrade = map[string]string{
	"A": "No treatment needed. Safe for irrigation and livestock.",
	"B": "Basic filtration recommended. Suitable for most crops.",
	"C": "Sediment filtration + pH adjustment recommended. Monitor sensitive crops.",
	"D": "Multi-stage treatment required: sedimentation, filtration, chemical treatment. Limit to tolerant crops.",
	"F": "Do NOT use for irrigation. Full treatment required: reverse osmosis or advanced oxidation. Investigate contamination source.",
}

// TreatmentRecommendation returns the treatment guidance for a grade.
func TreatmentRecommendation(grade string) string {
	return treatmentByGrade[grade]
}
