package agronomy

// Severity grades how far a nutrient is below its adequate range.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityAdequate Severity = "Adequate"
)

// NutrientThresholds are the mg/kg breakpoints for N/P/K plus the pH band.
// Defaults are general agriculture values; crop-specific tables may override.
type NutrientThresholds struct {
	NitrogenLow, NitrogenModerate, NitrogenAdequate       float64
	PhosphorusLow, PhosphorusModerate, PhosphorusAdequate float64
	PotassiumLow, PotassiumModerate, PotassiumAdequate    float64
	PHLow, PHHigh                                         float64
}

func DefaultNutrientThresholds() NutrientThresholds {
	return NutrientThresholds{
		NitrogenLow: 40, NitrogenModerate: 60, NitrogenAdequate: 80,
		PhosphorusLow: 15, PhosphorusModerate: 25, PhosphorusAdequate: 40,
		PotassiumLow: 25, PotassiumModerate: 35, PotassiumAdequate: 50,
		PHLow: 5.5, PHHigh: 8.0,
	}
}

// NutrientStatus is the multi-label deficiency verdict for one soil sample.
type NutrientStatus struct {
	NitrogenDeficient   bool
	PhosphorusDeficient bool
	PotassiumDeficient  bool
	PHImbalanced        bool

	NitrogenSeverity   Severity
	PhosphorusSeverity Severity
	PotassiumSeverity  Severity
}

// DetectDeficiencies labels a soil sample against the thresholds. A nutrient
// is deficient below its moderate breakpoint.
func DetectDeficiencies(s SoilSample, t NutrientThresholds) NutrientStatus {
	return NutrientStatus{
		NitrogenDeficient:   s.NitrogenMgKg < t.NitrogenModerate,
		PhosphorusDeficient: s.PhosphorusMgKg < t.PhosphorusModerate,
		PotassiumDeficient:  s.PotassiumMgKg < t.PotassiumModerate,
		PHImbalanced:        s.PH < t.PHLow || s.PH > t.PHHigh,

		NitrogenSeverity:   severity(s.NitrogenMgKg, t.NitrogenLow, t.NitrogenModerate, t.NitrogenAdequate),
		PhosphorusSeverity: severity(s.PhosphorusMgKg, t.PhosphorusLow, t.PhosphorusModerate, t.PhosphorusAdequate),
		PotassiumSeverity:  severity(s.PotassiumMgKg, t.PotassiumLow, t.PotassiumModerate, t.PotassiumAdequate),
	}
}

func severity(v, low, moderate, adequate float64) Severity {
	switch {
	case v < low:
		return SeverityCritical
	case v < moderate:
		return SeverityLow
	case v < adequate:
		return SeverityModerate
	default:
		return SeverityAdequate
	}
}

// Labels lists the active deficiency labels, for event payloads.
func (n NutrientStatus) Labels() []string {
	var out []string
	if n.NitrogenDeficient {
		out = append(out, "N_deficient")
	}
	if n.PhosphorusDeficient {
		out = append(out, "P_deficient")
	}
	if n.PotassiumDeficient {
		out = append(out, "K_deficient")
	}
	if n.PHImbalanced {
		out = append(out, "pH_imbalanced")
	}
	return out
}

// Amendment is one recommended soil amendment with dosage and timing.
type Amendment struct {
	Name   string `json:"amendment"`
	Dosage string `json:"dosage"`
	Timing string `json:"timing"`
}

var amendmentTable = map[string][]Amendment{
	"N_deficient": {
		{Name: "Urea (46-0-0)", Dosage: "60-100 kg/ha", Timing: "Split application: 50% at sowing, 50% at 30 days"},
		{Name: "Ammonium Sulfate (21-0-0-24S)", Dosage: "120-180 kg/ha", Timing: "Pre-sowing or side-dress"},
		{Name: "Neem-coated Urea", Dosage: "60-100 kg/ha", Timing: "Slow release, apply at sowing"},
	},
	"P_deficient": {
		{Name: "DAP (18-46-0)", Dosage: "50-80 kg/ha", Timing: "Apply at sowing as basal dose"},
		{Name: "SSP (0-16-0)", Dosage: "150-250 kg/ha", Timing: "Basal application"},
		{Name: "Rock Phosphate", Dosage: "200-400 kg/ha", Timing: "Pre-sowing, works best in acidic soils"},
	},
	"K_deficient": {
		{Name: "MOP - Muriate of Potash (0-0-60)", Dosage: "40-80 kg/ha", Timing: "Basal or split application"},
		{Name: "SOP - Sulfate of Potash (0-0-50)", Dosage: "50-100 kg/ha", Timing: "For chloride-sensitive crops"},
		{Name: "Wood Ash", Dosage: "500-1000 kg/ha", Timing: "Pre-sowing, also raises pH"},
	},
	"pH_low": {
		{Name: "Agricultural Lime (CaCO3)", Dosage: "2-4 tons/ha", Timing: "Apply 2-3 months before sowing"},
		{Name: "Dolomite Lime", Dosage: "1.5-3 tons/ha", Timing: "Also supplies Mg, apply before plowing"},
	},
	"pH_high": {
		{Name: "Gypsum (CaSO4)", Dosage: "2-5 tons/ha", Timing: "Apply before plowing season"},
		{Name: "Sulfur", Dosage: "200-500 kg/ha", Timing: "Apply and incorporate into soil"},
		{Name: "Organic Matter / Compost", Dosage: "10-20 tons/ha", Timing: "Regular annual application"},
	},
}

// Amendments returns the recommended amendments for each active label of a
// status. pH recommendations depend on the direction of the imbalance.
func Amendments(s SoilSample, status NutrientStatus, t NutrientThresholds) map[string][]Amendment {
	out := make(map[string][]Amendment)
	if status.NitrogenDeficient {
		out["N_deficient"] = amendmentTable["N_deficient"]
	}
	if status.PhosphorusDeficient {
		out["P_deficient"] = amendmentTable["P_deficient"]
	}
	if status.PotassiumDeficient {
		out["K_deficient"] = amendmentTable["K_deficient"]
	}
	if status.PHImbalanced {
		if s.PH < t.PHLow {
			out["pH_low"] = amendmentTable["pH_low"]
		} else {
			out["pH_high"] = amendmentTable["pH_high"]
		}
	}
	return out
}
