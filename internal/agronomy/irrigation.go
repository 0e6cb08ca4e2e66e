package agronomy

import (
	"math"

	"github.com/agrisense/agrisense/internal/model/entities"
)

// Priority is the urgency tier of an irrigation recommendation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ZoneReading is the per-zone soil state consumed by the estimator.
type ZoneReading struct {
	ZoneID      string
	SoilType    entities.SoilType
	MoisturePct float64 // 0..100

	Crop            string
	CropWaterNeedMM float64 // seasonal baseline, informational
}

// WeatherReading is the weather state for the same window as the
// ZoneReading it is paired with.
type WeatherReading struct {
	TemperatureC float64
	HumidityPct  float64 // 0..100
	SolarWm2     float64
	WindKmh      float64
	RainfallMM   float64
}

// IrrigationAdvice is the estimator output: a daily water requirement, an
// urgency tier, and a recommended watering cadence.
type IrrigationAdvice struct {
	ZoneID string
	Crop   string

	NeedMM    float64 // always >= 0
	EToMM     float64
	Priority  Priority
	Frequency string
}

// IrrigationConfig carries the policy constants of the estimator. The
// formula weights and tier thresholds are asserted by agronomists, not
// derived here; they are deliberately configuration, not code.
type IrrigationConfig struct {
	// SoilProfiles maps soil type to field capacity (percent).
	SoilProfiles entities.SoilProfiles

	// Tier thresholds in mm, inclusive lower bounds. Must satisfy
	// 0 < MediumThresholdMM < HighThresholdMM.
	HighThresholdMM   float64
	MediumThresholdMM float64

	// MaxNeedMM caps the daily requirement. Zero disables the cap.
	MaxNeedMM float64

	// Frequency maps each tier to a watering cadence label.
	Frequency map[Priority]string
}

// DefaultIrrigationConfig returns the stock policy: tiers at 12/6 mm, need
// capped at 50 mm/day, and the default field-capacity table.
func DefaultIrrigationConfig() IrrigationConfig {
	return IrrigationConfig{
		SoilProfiles:      entities.DefaultSoilProfiles(),
		HighThresholdMM:   12,
		MediumThresholdMM: 6,
		MaxNeedMM:         50,
		Frequency: map[Priority]string{
			PriorityHigh:   "Daily",
			PriorityMedium: "Every 2 days",
			PriorityLow:    "Every 3-4 days",
		},
	}
}

// Formula weights: deficit is measured against half field capacity, ETo is
// scaled to the root zone, and only part of the rainfall is effective.
const (
	fieldCapacityFraction = 0.5
	etoWeight             = 5.0
	rainfallEffectiveness = 0.8
)

// IrrigationEstimator computes daily irrigation advice. It is stateless and
// safe for concurrent use; the config is read-only after construction.
type IrrigationEstimator struct {
	cfg IrrigationConfig
}

func NewIrrigationEstimator(cfg IrrigationConfig) (*IrrigationEstimator, error) {
	if len(cfg.SoilProfiles) == 0 {
		return nil, &ConfigurationError{Key: "soil_profiles", Reason: "table is empty"}
	}
	for st, fc := range cfg.SoilProfiles {
		if math.IsNaN(fc) || fc <= 0 || fc > 100 {
			return nil, &ConfigurationError{Key: string(st), Reason: "field capacity out of (0,100]"}
		}
	}
	if cfg.MediumThresholdMM <= 0 || cfg.HighThresholdMM <= cfg.MediumThresholdMM {
		return nil, &ConfigurationError{Key: "thresholds", Reason: "need 0 < medium < high"}
	}
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if cfg.Frequency[p] == "" {
			return nil, &ConfigurationError{Key: string(p), Reason: "no frequency mapping"}
		}
	}
	return &IrrigationEstimator{cfg: cfg}, nil
}

// Estimate derives ETo from the weather reading and produces advice for one
// zone. Pure: identical inputs always yield identical advice.
func (e *IrrigationEstimator) Estimate(z ZoneReading, w WeatherReading) (IrrigationAdvice, error) {
	if err := validateZone(z); err != nil {
		return IrrigationAdvice{}, err
	}
	if err := validateWeather(w); err != nil {
		return IrrigationAdvice{}, err
	}
	eto := EstimateETo(w.TemperatureC, w.HumidityPct, w.SolarWm2, w.WindKmh)
	return e.EstimateWithETo(z, eto, w.RainfallMM)
}

// EstimateWithETo produces advice from a precomputed reference
// evapotranspiration, for callers whose weather source reports ETo directly.
func (e *IrrigationEstimator) EstimateWithETo(z ZoneReading, etoMM, rainfallMM float64) (IrrigationAdvice, error) {
	if err := validateZone(z); err != nil {
		return IrrigationAdvice{}, err
	}
	if math.IsNaN(etoMM) || etoMM < 0 {
		return IrrigationAdvice{}, &InvalidReadingError{Field: "eto_mm", Value: etoMM, Reason: "must be >= 0"}
	}
	if math.IsNaN(rainfallMM) || rainfallMM < 0 {
		return IrrigationAdvice{}, &InvalidReadingError{Field: "rainfall_mm", Value: rainfallMM, Reason: "must be >= 0"}
	}

	fc, ok := e.cfg.SoilProfiles[z.SoilType]
	if !ok {
		return IrrigationAdvice{}, &ConfigurationError{Key: string(z.SoilType), Reason: "soil type has no field-capacity profile"}
	}

	deficit := fc*fieldCapacityFraction - z.MoisturePct
	need := deficit + etoMM*etoWeight - rainfallMM*rainfallEffectiveness
	if need < 0 {
		need = 0
	}
	if e.cfg.MaxNeedMM > 0 && need > e.cfg.MaxNeedMM {
		need = e.cfg.MaxNeedMM
	}

	prio := e.classify(need)
	return IrrigationAdvice{
		ZoneID:    z.ZoneID,
		Crop:      z.Crop,
		NeedMM:    need,
		EToMM:     etoMM,
		Priority:  prio,
		Frequency: e.cfg.Frequency[prio],
	}, nil
}

// classify maps a need to its tier; thresholds are inclusive lower bounds.
func (e *IrrigationEstimator) classify(needMM float64) Priority {
	switch {
	case needMM >= e.cfg.HighThresholdMM:
		return PriorityHigh
	case needMM >= e.cfg.MediumThresholdMM:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func validateZone(z ZoneReading) error {
	if math.IsNaN(z.MoisturePct) || z.MoisturePct < 0 || z.MoisturePct > 100 {
		return &InvalidReadingError{Field: "moisture_pct", Value: z.MoisturePct, Reason: "must be within [0,100]"}
	}
	if math.IsNaN(z.CropWaterNeedMM) || z.CropWaterNeedMM < 0 {
		return &InvalidReadingError{Field: "water_requirement_mm", Value: z.CropWaterNeedMM, Reason: "must be >= 0"}
	}
	return nil
}

func validateWeather(w WeatherReading) error {
	if math.IsNaN(w.TemperatureC) || w.TemperatureC < -60 || w.TemperatureC > 60 {
		return &InvalidReadingError{Field: "temperature_c", Value: w.TemperatureC, Reason: "outside physical range [-60,60]"}
	}
	if math.IsNaN(w.HumidityPct) || w.HumidityPct < 0 || w.HumidityPct > 100 {
		return &InvalidReadingError{Field: "humidity_pct", Value: w.HumidityPct, Reason: "must be within [0,100]"}
	}
	if math.IsNaN(w.SolarWm2) || w.SolarWm2 < 0 {
		return &InvalidReadingError{Field: "solar_radiation_wm2", Value: w.SolarWm2, Reason: "must be >= 0"}
	}
	if math.IsNaN(w.WindKmh) || w.WindKmh < 0 {
		return &InvalidReadingError{Field: "wind_speed_kmh", Value: w.WindKmh, Reason: "must be >= 0"}
	}
	if math.IsNaN(w.RainfallMM) || w.RainfallMM < 0 {
		return &InvalidReadingError{Field: "rainfall_mm", Value: w.RainfallMM, Reason: "must be >= 0"}
	}
	return nil
}
