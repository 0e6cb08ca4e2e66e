package agronomy_test

import (
	"errors"
	"math"
	"testing"

	"github.com/agrisense/agrisense/internal/agronomy"
	"github.com/agrisense/agrisense/internal/model/entities"
)

func newEstimator(t *testing.T) *agronomy.IrrigationEstimator {
	t.Helper()
	est, err := agronomy.NewIrrigationEstimator(agronomy.DefaultIrrigationConfig())
	if err != nil {
		t.Fatalf("estimator init: %v", err)
	}
	return est
}

func TestEstimateWithEToScenarios(t *testing.T) {
	est := newEstimator(t)

	for name, tc := range map[string]struct {
		zone     agronomy.ZoneReading
		eto      float64
		rainfall float64

		needMM    float64
		priority  agronomy.Priority
		frequency string
	}{
		"sandy soil in deficit needs daily watering": {
			zone:      agronomy.ZoneReading{ZoneID: "Zone_3", SoilType: entities.SoilSandy, MoisturePct: 14},
			eto:       5,
			rainfall:  0,
			needMM:    21, // (20*0.5 - 14) + 5*5 - 0
			priority:  agronomy.PriorityHigh,
			frequency: "Daily",
		},
		"wet clay soil needs nothing": {
			zone:      agronomy.ZoneReading{ZoneID: "Zone_2", SoilType: entities.SoilClay, MoisturePct: 44},
			eto:       2,
			rainfall:  5,
			needMM:    0, // (25 - 44) + 10 - 4 = -13, clamped
			priority:  agronomy.PriorityLow,
			frequency: "Every 3-4 days",
		},
		"medium tier between thresholds": {
			zone:      agronomy.ZoneReading{ZoneID: "Zone_1", SoilType: entities.SoilLoamy, MoisturePct: 18},
			eto:       1,
			rainfall:  0,
			needMM:    7, // (20 - 18) + 5
			priority:  agronomy.PriorityMedium,
			frequency: "Every 2 days",
		},
		"extreme deficit is capped at the daily maximum": {
			zone:     agronomy.ZoneReading{ZoneID: "Zone_8", SoilType: entities.SoilPeaty, MoisturePct: 0},
			eto:      15,
			rainfall: 0,
			needMM:   50, // 30 + 75 capped at MaxNeedMM
			priority: agronomy.PriorityHigh, frequency: "Daily",
		},
	} {
		t.Run(name, func(t *testing.T) {
			advice, err := est.EstimateWithETo(tc.zone, tc.eto, tc.rainfall)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(advice.NeedMM-tc.needMM) > 1e-9 {
				t.Errorf("need: got %v, want %v", advice.NeedMM, tc.needMM)
			}
			if advice.Priority != tc.priority {
				t.Errorf("priority: got %v, want %v", advice.Priority, tc.priority)
			}
			if advice.Frequency != tc.frequency {
				t.Errorf("frequency: got %q, want %q", advice.Frequency, tc.frequency)
			}
		})
	}
}

func TestUnknownSoilTypeIsConfigurationError(t *testing.T) {
	est := newEstimator(t)

	_, err := est.EstimateWithETo(agronomy.ZoneReading{ZoneID: "z", SoilType: "Rocky", MoisturePct: 10}, 3, 0)
	var cfgErr *agronomy.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Key != "Rocky" {
		t.Errorf("error should name the soil type, got %q", cfgErr.Key)
	}
}

func TestInvalidReadingsNameTheField(t *testing.T) {
	est := newEstimator(t)
	okZone := agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilLoamy, MoisturePct: 30}
	okWeather := agronomy.WeatherReading{TemperatureC: 25, HumidityPct: 50, SolarWm2: 200, WindKmh: 10, RainfallMM: 0}

	for name, tc := range map[string]struct {
		zone    agronomy.ZoneReading
		weather agronomy.WeatherReading
		field   string
	}{
		"negative moisture": {
			zone:    agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilLoamy, MoisturePct: -1},
			weather: okWeather,
			field:   "moisture_pct",
		},
		"moisture over 100": {
			zone:    agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilLoamy, MoisturePct: 101},
			weather: okWeather,
			field:   "moisture_pct",
		},
		"NaN moisture": {
			zone:    agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilLoamy, MoisturePct: math.NaN()},
			weather: okWeather,
			field:   "moisture_pct",
		},
		"non-physical temperature": {
			zone:    okZone,
			weather: agronomy.WeatherReading{TemperatureC: 80, HumidityPct: 50, SolarWm2: 200, WindKmh: 10},
			field:   "temperature_c",
		},
		"humidity over 100": {
			zone:    okZone,
			weather: agronomy.WeatherReading{TemperatureC: 25, HumidityPct: 120, SolarWm2: 200, WindKmh: 10},
			field:   "humidity_pct",
		},
		"negative solar radiation": {
			zone:    okZone,
			weather: agronomy.WeatherReading{TemperatureC: 25, HumidityPct: 50, SolarWm2: -5, WindKmh: 10},
			field:   "solar_radiation_wm2",
		},
		"negative wind": {
			zone:    okZone,
			weather: agronomy.WeatherReading{TemperatureC: 25, HumidityPct: 50, SolarWm2: 200, WindKmh: -1},
			field:   "wind_speed_kmh",
		},
		"negative rainfall": {
			zone:    okZone,
			weather: agronomy.WeatherReading{TemperatureC: 25, HumidityPct: 50, SolarWm2: 200, WindKmh: 10, RainfallMM: -2},
			field:   "rainfall_mm",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := est.Estimate(tc.zone, tc.weather)
			var invErr *agronomy.InvalidReadingError
			if !errors.As(err, &invErr) {
				t.Fatalf("expected InvalidReadingError, got %v", err)
			}
			if invErr.Field != tc.field {
				t.Errorf("offending field: got %q, want %q", invErr.Field, tc.field)
			}
		})
	}
}

func TestNeedNeverNegative(t *testing.T) {
	est := newEstimator(t)
	for moisture := 0.0; moisture <= 100; moisture += 10 {
		for eto := 0.0; eto <= 15; eto += 3 {
			for rain := 0.0; rain <= 60; rain += 15 {
				z := agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilSandy, MoisturePct: moisture}
				advice, err := est.EstimateWithETo(z, eto, rain)
				if err != nil {
					t.Fatal(err)
				}
				if advice.NeedMM < 0 {
					t.Fatalf("need %v < 0 for moisture=%v eto=%v rain=%v", advice.NeedMM, moisture, eto, rain)
				}
			}
		}
	}
}

func TestMonotonicity(t *testing.T) {
	est := newEstimator(t)
	base := agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilClay, MoisturePct: 20}

	need := func(moisture, eto, rain float64) float64 {
		z := base
		z.MoisturePct = moisture
		advice, err := est.EstimateWithETo(z, eto, rain)
		if err != nil {
			t.Fatal(err)
		}
		return advice.NeedMM
	}

	// more moisture never increases need
	prev := math.Inf(1)
	for m := 0.0; m <= 100; m += 5 {
		n := need(m, 4, 2)
		if n > prev {
			t.Fatalf("need increased with moisture at %v: %v > %v", m, n, prev)
		}
		prev = n
	}

	// more rainfall never increases need
	prev = math.Inf(1)
	for r := 0.0; r <= 50; r += 5 {
		n := need(10, 4, r)
		if n > prev {
			t.Fatalf("need increased with rainfall at %v: %v > %v", r, n, prev)
		}
		prev = n
	}

	// more ETo never decreases need
	prev = math.Inf(-1)
	for e := 0.0; e <= 15; e += 1 {
		n := need(10, e, 2)
		if n < prev {
			t.Fatalf("need decreased with ETo at %v: %v < %v", e, n, prev)
		}
		prev = n
	}
}

func TestThresholdsAreInclusiveLowerBounds(t *testing.T) {
	est := newEstimator(t)

	// moisture tuned so need lands exactly on a tier threshold:
	// clay FC=50 -> deficit = 25 - moisture; eto/rain zero out the rest.
	for name, tc := range map[string]struct {
		moisture float64
		want     agronomy.Priority
	}{
		"exactly 12 is High":    {moisture: 13, want: agronomy.PriorityHigh},
		"just under 12":         {moisture: 13.5, want: agronomy.PriorityMedium},
		"exactly 6 is Medium":   {moisture: 19, want: agronomy.PriorityMedium},
		"just under 6":          {moisture: 19.5, want: agronomy.PriorityLow},
		"zero need is Low tier": {moisture: 25, want: agronomy.PriorityLow},
	} {
		t.Run(name, func(t *testing.T) {
			z := agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilClay, MoisturePct: tc.moisture}
			advice, err := est.EstimateWithETo(z, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if advice.Priority != tc.want {
				t.Errorf("need=%v: got %v, want %v", advice.NeedMM, advice.Priority, tc.want)
			}
		})
	}
}

func TestEstimateIsPure(t *testing.T) {
	est := newEstimator(t)
	z := agronomy.ZoneReading{ZoneID: "z", SoilType: entities.SoilSilt, MoisturePct: 17, Crop: "Wheat", CropWaterNeedMM: 450}
	w := agronomy.WeatherReading{TemperatureC: 31, HumidityPct: 40, SolarWm2: 260, WindKmh: 12, RainfallMM: 1.5}

	first, err := est.Estimate(z, w)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := est.Estimate(z, w)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("estimate not idempotent: %+v != %+v", again, first)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	for name, mutate := range map[string]func(*agronomy.IrrigationConfig){
		"empty soil profile table": func(c *agronomy.IrrigationConfig) {
			c.SoilProfiles = nil
		},
		"field capacity out of range": func(c *agronomy.IrrigationConfig) {
			c.SoilProfiles[entities.SoilClay] = 120
		},
		"medium threshold above high": func(c *agronomy.IrrigationConfig) {
			c.MediumThresholdMM = 20
		},
		"zero medium threshold": func(c *agronomy.IrrigationConfig) {
			c.MediumThresholdMM = 0
		},
		"missing frequency mapping": func(c *agronomy.IrrigationConfig) {
			delete(c.Frequency, agronomy.PriorityLow)
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := agronomy.DefaultIrrigationConfig()
			mutate(&cfg)
			if _, err := agronomy.NewIrrigationEstimator(cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}
}
