package sensor_simulator_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/agrisense/agrisense/internal/model/entities"
	sensorSimulator "github.com/agrisense/agrisense/internal/sensor-simulator"
)

func testZone() entities.Zone {
	return entities.Zone{
		ID:              "zone-north",
		SoilType:        entities.SoilLoamy,
		Crop:            "Wheat",
		Latitude:        26.85,
		Longitude:       80.95,
		BasePH:          6.8,
		BaseNitrogen:    75,
		BasePhosphorus:  30,
		BasePotassium:   45,
		BaseMoisturePct: 30,
	}
}

func TestNextSoilStaysInRange(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 0, 42)
	now := time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		r := gen.NextSoil(now.Add(time.Duration(i) * time.Minute))
		if r.PH < 4.0 || r.PH > 9.0 {
			t.Fatalf("iteration %d: pH %.2f out of range", i, r.PH)
		}
		if r.MoisturePct < 2 || r.MoisturePct > 80 {
			t.Fatalf("iteration %d: moisture %.1f out of range", i, r.MoisturePct)
		}
		if r.OrganicMatterPct < 0.5 || r.OrganicMatterPct > 12 {
			t.Fatalf("iteration %d: organic matter %.2f out of range", i, r.OrganicMatterPct)
		}
		if r.SoilTemperatureC < 5 || r.SoilTemperatureC > 45 {
			t.Fatalf("iteration %d: soil temp %.1f out of range", i, r.SoilTemperatureC)
		}
		if r.ECMsCm < 0.1 || r.ECMsCm > 5.0 {
			t.Fatalf("iteration %d: EC %.2f out of range", i, r.ECMsCm)
		}
		if r.NitrogenMgKg < 5 || r.PhosphorusMgKg < 2 || r.PotassiumMgKg < 5 {
			t.Fatalf("iteration %d: nutrient below floor: N=%.1f P=%.1f K=%.1f",
				i, r.NitrogenMgKg, r.PhosphorusMgKg, r.PotassiumMgKg)
		}
		if r.ZoneID != "zone-north" || r.Crop != "Wheat" {
			t.Fatalf("iteration %d: zone identity not carried through", i)
		}
	}
}

func TestMoistureDecaysWithoutRain(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 0.02, 1)
	start := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	gen.Seed(50, start)

	first := gen.NextSoil(start)
	if first.MoisturePct != 50 {
		t.Fatalf("seeded moisture = %.1f, want 50", first.MoisturePct)
	}

	later := gen.NextSoil(start.Add(10 * time.Hour))
	want := 50 - 0.02*600 // 38
	if later.MoisturePct != want {
		t.Fatalf("after 10h dry: moisture = %.1f, want %.1f", later.MoisturePct, want)
	}
}

func TestMoistureNeverBelowFloor(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 1.0, 1)
	start := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	gen.Seed(10, start)
	gen.NextSoil(start)

	r := gen.NextSoil(start.Add(24 * time.Hour))
	if r.MoisturePct != 2 {
		t.Fatalf("moisture = %.1f, want floor of 2", r.MoisturePct)
	}
}

func TestRainfallRechargesMoisture(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 0.02, 7)
	// Late July: monsoon peak, rain is frequent.
	now := time.Date(2026, time.July, 28, 14, 0, 0, 0, time.UTC)
	gen.Seed(30, now)

	var totalRain float64
	for i := 0; i < 50; i++ {
		w := gen.NextWeather(now)
		totalRain += w.RainfallMM
	}
	if totalRain < 1 {
		t.Skipf("generated only %.1fmm of rain over 50 draws", totalRain)
	}

	// Same timestamp, so no decay: recharge must show.
	r := gen.NextSoil(now)
	if r.MoisturePct <= 30 {
		t.Fatalf("moisture = %.1f after %.1fmm rain, want > 30", r.MoisturePct, totalRain)
	}
}

func TestWeatherStaysInRange(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 0, 99)
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		w := gen.NextWeather(now.Add(time.Duration(i) * time.Hour))
		if w.HumidityPct < 15 || w.HumidityPct > 100 {
			t.Fatalf("iteration %d: humidity %.1f out of range", i, w.HumidityPct)
		}
		if w.RainfallMM < 0 || w.WindSpeedKmh < 0 || w.SolarRadiation < 0 {
			t.Fatalf("iteration %d: negative reading: rain=%.1f wind=%.1f solar=%.1f",
				i, w.RainfallMM, w.WindSpeedKmh, w.SolarRadiation)
		}
		if w.UVIndex < 0 || w.UVIndex > 12 {
			t.Fatalf("iteration %d: UV index %d out of range", i, w.UVIndex)
		}
	}
}

func TestSameSeedSameSeries(t *testing.T) {
	a := sensorSimulator.NewGenerator(testZone(), 0.02, 1234)
	b := sensorSimulator.NewGenerator(testZone(), 0.02, 1234)
	now := time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		ts := now.Add(time.Duration(i) * 10 * time.Minute)
		if got, want := a.NextSoil(ts), b.NextSoil(ts); !reflect.DeepEqual(got, want) {
			t.Fatalf("iteration %d: soil series diverged", i)
		}
		if got, want := a.NextWeather(ts), b.NextWeather(ts); !reflect.DeepEqual(got, want) {
			t.Fatalf("iteration %d: weather series diverged", i)
		}
	}
}

func TestNextWaterBySource(t *testing.T) {
	gen := sensorSimulator.NewGenerator(testZone(), 0, 5)
	now := time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)

	sources := sensorSimulator.WaterSources()
	if len(sources) != 4 {
		t.Fatalf("WaterSources() returned %d sources, want 4", len(sources))
	}

	for _, src := range sources {
		r := gen.NextWater(now, src)
		if r.SourceType != src {
			t.Errorf("source %s: reading tagged %q", src, r.SourceType)
		}
		if r.PH < 4.5 || r.PH > 9.5 {
			t.Errorf("source %s: pH %.2f out of range", src, r.PH)
		}
		if r.TDSPpm < 10 {
			t.Errorf("source %s: TDS %.1f below floor", src, r.TDSPpm)
		}
		if r.DissolvedO2MgL < 1 || r.DissolvedO2MgL > 14 {
			t.Errorf("source %s: dissolved O2 %.2f out of range", src, r.DissolvedO2MgL)
		}
	}

	// Unknown sources still produce a usable reading.
	r := gen.NextWater(now, "Pond")
	if r.SourceType != "Pond" {
		t.Fatalf("unknown source tagged %q, want Pond", r.SourceType)
	}
}
