package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/model/messages"
)

// ====== Tunables ======
const (
	// decayPerMin: moisture lost per minute with no rain, percent points.
	defaultDecayPerMin = 0.02

	// rainGainPerMM: moisture gained per mm of rainfall, percent points.
	rainGainPerMM = 0.4

	moistureFloor = 2.0
	moistureCeil  = 80.0
)

// Generator produces synthetic sensor readings for one zone. Soil moisture
// is stateful: it decays over time and recharges with generated rainfall;
// everything else is drawn fresh around the zone's baselines with seasonal
// and diurnal patterns.
type Generator struct {
	mu   sync.Mutex
	zone entities.Zone
	rng  *rand.Rand

	seeded      bool
	last        time.Time
	moisture    float64 // percent 0..100
	decayPerMin float64
}

func NewGenerator(zone entities.Zone, decayPerMin float64, seed int64) *Generator {
	if decayPerMin <= 0 {
		decayPerMin = defaultDecayPerMin
	}
	return &Generator{
		zone:        zone,
		rng:         rand.New(rand.NewSource(seed)),
		decayPerMin: decayPerMin,
	}
}

// Seed fixes the initial moisture level, e.g. from a SoilGrids fetch.
// Without an explicit seed the zone baseline is used on first tick.
func (g *Generator) Seed(moisturePct float64, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moisture = clampMoisture(moisturePct)
	g.last = now
	g.seeded = true
}

// NextSoil advances the moisture state and returns a soil reading.
func (g *Generator) NextSoil(now time.Time) messages.SoilReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureSeeded(now)

	dtMin := now.Sub(g.last).Minutes()
	if dtMin < 0 {
		dtMin = 0
	}
	g.moisture = clampMoisture(g.moisture - g.decayPerMin*dtMin)
	g.last = now

	seasonal := seasonalFactor(now)
	return messages.SoilReading{
		ZoneID:           g.zone.ID,
		SoilType:         g.zone.SoilType,
		Crop:             g.zone.Crop,
		NitrogenMgKg:     math.Max(5, g.zone.BaseNitrogen*(0.7+0.6*seasonal)+g.rng.NormFloat64()*12),
		PhosphorusMgKg:   math.Max(2, g.zone.BasePhosphorus*(0.8+0.4*seasonal)+g.rng.NormFloat64()*8),
		PotassiumMgKg:    math.Max(5, g.zone.BasePotassium*(0.75+0.5*seasonal)+g.rng.NormFloat64()*10),
		PH:               clamp(g.zone.BasePH+g.rng.NormFloat64()*0.3, 4.0, 9.0),
		OrganicMatterPct: clamp(3.5+g.rng.NormFloat64()*1.2+peatyBoost(g.zone.SoilType), 0.5, 12.0),
		MoisturePct:      math.Round(g.moisture*10) / 10,
		SoilTemperatureC: clamp(15+15*seasonal+g.rng.NormFloat64()*3, 5, 45),
		ECMsCm:           clamp(1.5+g.rng.NormFloat64()*0.6, 0.1, 5.0),
		Timestamp:        now.UTC(),
	}
}

// NextWeather returns a weather reading; generated rainfall recharges the
// zone's soil moisture state.
func (g *Generator) NextWeather(now time.Time) messages.WeatherReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureSeeded(now)

	seasonal := seasonalFactor(now)
	diurnal := diurnalFactor(now)

	rain := g.nextRainfall(now)
	g.moisture = clampMoisture(g.moisture + rain*rainGainPerMM)

	uv := math.Round(8*diurnal*seasonal + g.rng.NormFloat64())
	return messages.WeatherReading{
		TemperatureC:   round1(15 + 20*seasonal + 5*diurnal + g.rng.NormFloat64()*2),
		HumidityPct:    round1(clamp(60+25*(1-seasonal)*(1-0.3*diurnal)+g.rng.NormFloat64()*8, 15, 100)),
		RainfallMM:     round1(rain),
		WindSpeedKmh:   round1(math.Max(0, weibull2(g.rng)*8+3)),
		SolarRadiation: round1(math.Max(0, 300*diurnal*(0.7+0.3*seasonal)*(0.5+0.7*g.rng.Float64()))),
		PressureHpa:    round1(1013 + g.rng.NormFloat64()*5),
		UVIndex:        int(clamp(uv, 0, 12)),
		Timestamp:      now.UTC(),
	}
}

// Recharge applies rainfall to the moisture state. The weather stream is
// shared across the farm, so rain emitted by one generator must be applied
// to every other zone's moisture too.
func (g *Generator) Recharge(rainMM float64, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureSeeded(now)
	g.moisture = clampMoisture(g.moisture + rainMM*rainGainPerMM)
}

// sourceBaselines are per source type: pH, TDS, turbidity, dissolved O2,
// hardness, chloride, sulfate, nitrate.
var sourceBaselines = map[string][8]float64{
	"Borewell":  {7.5, 600, 2, 5, 250, 100, 80, 15},
	"River":     {7.0, 350, 15, 7, 150, 50, 40, 25},
	"Canal":     {7.2, 450, 20, 6, 180, 70, 55, 30},
	"Rainwater": {6.5, 50, 3, 8, 30, 10, 10, 5},
}

// WaterSources lists the source types the generator knows baselines for.
func WaterSources() []string {
	return []string{"Borewell", "River", "Canal", "Rainwater"}
}

// NextWater returns a water quality reading for the given source type.
// Unknown sources fall back to the canal baseline.
func (g *Generator) NextWater(now time.Time, source string) messages.WaterReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := sourceBaselines[source]
	if !ok {
		f = sourceBaselines["Canal"]
	}
	seasonal := seasonalFactor(now)

	return messages.WaterReading{
		SourceType:       source,
		PH:               round2(clamp(f[0]+g.rng.NormFloat64()*0.4, 4.5, 9.5)),
		TDSPpm:           round1(math.Max(10, f[1]+g.rng.NormFloat64()*f[1]*0.2)),
		TurbidityNTU:     round2(math.Max(0.1, f[2]*(1+0.5*seasonal)+g.rng.NormFloat64()*f[2]*0.3)),
		DissolvedO2MgL:   round2(clamp(f[3]+g.rng.NormFloat64()*1.2, 1, 14)),
		HardnessMgL:      round1(math.Max(10, f[4]+g.rng.NormFloat64()*f[4]*0.15)),
		ChlorideMgL:      round1(math.Max(1, f[5]+g.rng.NormFloat64()*f[5]*0.2)),
		SulfateMgL:       round1(math.Max(1, f[6]+g.rng.NormFloat64()*f[6]*0.2)),
		NitrateMgL:       round2(math.Max(0.5, f[7]*(1+0.3*seasonal)+g.rng.NormFloat64()*f[7]*0.25)),
		WaterTemperature: round1(clamp(20+10*seasonal+g.rng.NormFloat64()*3, 8, 38)),
		Timestamp:        now.UTC(),
	}
}

func (g *Generator) ensureSeeded(now time.Time) {
	if g.seeded {
		return
	}
	g.moisture = clampMoisture(g.zone.BaseMoisturePct * moistureSeasonal(now))
	g.last = now
	g.seeded = true
}

// nextRainfall draws from a monsoon-weighted exponential; most days outside
// the monsoon are dry.
func (g *Generator) nextRainfall(now time.Time) float64 {
	monsoon := monsoonFactor(now)
	rain := g.rng.ExpFloat64() * (5*monsoon + 0.5)
	if g.rng.Float64() > 0.3+0.4*monsoon {
		return 0
	}
	return rain
}

// ===== Seasonal patterns =====

// seasonalFactor is in [0,1], peaking around June.
func seasonalFactor(t time.Time) float64 {
	day := float64(t.YearDay())
	return 0.5 + 0.5*math.Sin(2*math.Pi*(day-80)/365)
}

// moistureSeasonal is the monsoon boost applied to baseline moisture.
func moistureSeasonal(t time.Time) float64 {
	day := float64(t.YearDay())
	f := 0.3 + 0.7*math.Sin(2*math.Pi*(day-150)/365)
	return math.Max(0.1, f)
}

// monsoonFactor is a gaussian bump peaking at day ~210 (late July).
func monsoonFactor(t time.Time) float64 {
	day := float64(t.YearDay())
	return math.Exp(-0.5 * math.Pow((day-210)/40, 2))
}

// diurnalFactor is in [0,1], peaking mid-afternoon.
func diurnalFactor(t time.Time) float64 {
	hour := float64(t.Hour())
	return 0.5 + 0.5*math.Sin(2*math.Pi*(hour-6)/24)
}

// ===== Helpers =====

// weibull2 draws from a shape-2 Weibull with unit scale.
func weibull2(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u >= 1 {
		u = math.Nextafter(1, 0)
	}
	return math.Sqrt(-math.Log(1 - u))
}

func peatyBoost(st entities.SoilType) float64 {
	if st == entities.SoilPeaty {
		return 1
	}
	return 0
}

func clampMoisture(x float64) float64 {
	return clamp(x, moistureFloor, moistureCeil)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
