package agronomy_test

import (
	"reflect"
	"testing"

	"github.com/agrisense/agrisense/internal/agronomy"
)

func TestDetectDeficiencies(t *testing.T) {
	th := agronomy.DefaultNutrientThresholds()

	for name, tc := range map[string]struct {
		sample agronomy.SoilSample
		labels []string
	}{
		"well supplied soil has no labels": {
			sample: agronomy.SoilSample{NitrogenMgKg: 90, PhosphorusMgKg: 45, PotassiumMgKg: 60, PH: 6.8},
			labels: nil,
		},
		"everything short": {
			sample: agronomy.SoilSample{NitrogenMgKg: 20, PhosphorusMgKg: 10, PotassiumMgKg: 15, PH: 4.9},
			labels: []string{"N_deficient", "P_deficient", "K_deficient", "pH_imbalanced"},
		},
		"alkaline soil only": {
			sample: agronomy.SoilSample{NitrogenMgKg: 90, PhosphorusMgKg: 45, PotassiumMgKg: 60, PH: 8.4},
			labels: []string{"pH_imbalanced"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			status := agronomy.DetectDeficiencies(tc.sample, th)
			if got := status.Labels(); !reflect.DeepEqual(got, tc.labels) {
				t.Errorf("labels: got %v, want %v", got, tc.labels)
			}
		})
	}
}

func TestSeverityBins(t *testing.T) {
	th := agronomy.DefaultNutrientThresholds()

	for name, tc := range map[string]struct {
		nitrogen float64
		want     agronomy.Severity
	}{
		"below low is critical":          {nitrogen: 30, want: agronomy.SeverityCritical},
		"between low and moderate":       {nitrogen: 50, want: agronomy.SeverityLow},
		"between moderate and adequate":  {nitrogen: 70, want: agronomy.SeverityModerate},
		"at the adequate bound":          {nitrogen: 80, want: agronomy.SeverityAdequate},
		"well above the adequate bound":  {nitrogen: 150, want: agronomy.SeverityAdequate},
		"exactly at the low bound moves": {nitrogen: 40, want: agronomy.SeverityLow},
	} {
		t.Run(name, func(t *testing.T) {
			status := agronomy.DetectDeficiencies(agronomy.SoilSample{NitrogenMgKg: tc.nitrogen}, th)
			if status.NitrogenSeverity != tc.want {
				t.Errorf("got %v, want %v", status.NitrogenSeverity, tc.want)
			}
		})
	}
}

func TestAmendmentsFollowImbalanceDirection(t *testing.T) {
	th := agronomy.DefaultNutrientThresholds()

	acidic := agronomy.SoilSample{NitrogenMgKg: 90, PhosphorusMgKg: 45, PotassiumMgKg: 60, PH: 4.8}
	recs := agronomy.Amendments(acidic, agronomy.DetectDeficiencies(acidic, th), th)
	if _, ok := recs["pH_low"]; !ok {
		t.Error("acidic soil should get liming recommendations")
	}
	if _, ok := recs["pH_high"]; ok {
		t.Error("acidic soil must not get gypsum recommendations")
	}

	alkaline := acidic
	alkaline.PH = 8.6
	recs = agronomy.Amendments(alkaline, agronomy.DetectDeficiencies(alkaline, th), th)
	if _, ok := recs["pH_high"]; !ok {
		t.Error("alkaline soil should get gypsum recommendations")
	}

	short := agronomy.SoilSample{NitrogenMgKg: 20, PhosphorusMgKg: 45, PotassiumMgKg: 60, PH: 7}
	recs = agronomy.Amendments(short, agronomy.DetectDeficiencies(short, th), th)
	if len(recs["N_deficient"]) == 0 {
		t.Error("nitrogen-short soil should get N amendments")
	}
	if len(recs) != 1 {
		t.Errorf("only nitrogen should be flagged, got %d groups", len(recs))
	}
}
