package agronomy_test

import (
	"testing"

	"github.com/agrisense/agrisense/internal/agronomy"
)

func TestHealthScore(t *testing.T) {
	for name, tc := range map[string]struct {
		sample agronomy.SoilSample
		want   float64
	}{
		"ideal sample scores full marks": {
			sample: agronomy.SoilSample{
				NitrogenMgKg: 80, PhosphorusMgKg: 45, PotassiumMgKg: 60,
				PH: 6.8, OrganicMatterPct: 4.0, MoisturePct: 30, ECMsCm: 1.5,
			},
			want: 100,
		},
		"depleted sample bottoms out on the floor points": {
			sample: agronomy.SoilSample{
				NitrogenMgKg: 0, PhosphorusMgKg: 0, PotassiumMgKg: 0,
				PH: 3.0, OrganicMatterPct: 0.1, MoisturePct: 90, ECMsCm: 9,
			},
			// N 0 + P 1 + K 0 + pH 0 + OM 5 + moisture 3 + EC 2
			want: 11,
		},
		"slightly acid loam lands in the good band": {
			sample: agronomy.SoilSample{
				NitrogenMgKg: 60, PhosphorusMgKg: 35, PotassiumMgKg: 48,
				PH: 5.8, OrganicMatterPct: 2.5, MoisturePct: 25, ECMsCm: 1.0,
			},
			// N 7.5 + P 8 + K 8 + pH 12 + OM 12 + moisture 15 + EC 15
			want: 77.5,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := agronomy.HealthScore(tc.sample); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHealthScoreBounded(t *testing.T) {
	samples := []agronomy.SoilSample{
		{},
		{NitrogenMgKg: 500, PhosphorusMgKg: 500, PotassiumMgKg: 500, PH: 14, OrganicMatterPct: 50, MoisturePct: 100, ECMsCm: 20},
		{NitrogenMgKg: 80, PhosphorusMgKg: 45, PotassiumMgKg: 60, PH: 7, OrganicMatterPct: 4, MoisturePct: 30, ECMsCm: 1},
	}
	for _, s := range samples {
		got := agronomy.HealthScore(s)
		if got < 0 || got > 100 {
			t.Errorf("score %v outside [0,100] for %+v", got, s)
		}
	}
}

func TestHealthCategory(t *testing.T) {
	for score, want := range map[float64]string{
		95:   "Excellent",
		80:   "Excellent",
		79.9: "Good",
		60:   "Good",
		59:   "Fair",
		40:   "Fair",
		39.9: "Poor",
		0:    "Poor",
	} {
		if got := agronomy.HealthCategory(score); got != want {
			t.Errorf("score %v: got %q, want %q", score, got, want)
		}
	}
}
