package app

import (
	"math"
	"sort"

	"github.com/agrisense/agrisense/internal/model"
)

// naiveIrrigationMM is the flat per-zone dose the savings figure compares
// against: watering every zone the same amount regardless of state.
const naiveIrrigationMM = 20.0

// ZoneScheduleRow is one row of the dashboard irrigation schedule.
type ZoneScheduleRow struct {
	ZoneID          string  `json:"zone_id"`
	Crop            string  `json:"crop,omitempty"`
	MoisturePct     float64 `json:"moisture_pct"`
	NeedMM          float64 `json:"need_mm"`
	EToMM           float64 `json:"eto_mm"`
	Priority        string  `json:"priority"`
	Frequency       string  `json:"frequency"`
	NeedsIrrigation bool    `json:"needs_irrigation"`
}

// BuildSchedule turns the latest advice per zone into the dashboard schedule,
// sorted by zone for a stable UI.
func BuildSchedule(advice []model.IrrigationAdviceEvent) []ZoneScheduleRow {
	rows := make([]ZoneScheduleRow, 0, len(advice))
	for _, a := range advice {
		rows = append(rows, ZoneScheduleRow{
			ZoneID:          a.ZoneID,
			Crop:            a.Crop,
			MoisturePct:     a.MoisturePct,
			NeedMM:          a.NeedMM,
			EToMM:           a.EToMM,
			Priority:        a.Priority,
			Frequency:       a.Frequency,
			NeedsIrrigation: a.NeedMM > 0,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ZoneID < rows[j].ZoneID })
	return rows
}

// WaterSavingsPct compares the advised total against flat 20 mm per zone.
// Zero when advice would use as much or more water than the naive plan.
func WaterSavingsPct(advice []model.IrrigationAdviceEvent) float64 {
	if len(advice) == 0 {
		return 0
	}
	naive := naiveIrrigationMM * float64(len(advice))
	var advised float64
	for _, a := range advice {
		advised += a.NeedMM
	}
	if advised >= naive {
		return 0
	}
	return math.Round((naive-advised)/naive*1000) / 10
}

// DroughtRiskZones lists zones that are both high priority and below the
// moisture floor, which the dashboard highlights in red.
func DroughtRiskZones(advice []model.IrrigationAdviceEvent, moistureFloorPct float64) []string {
	var out []string
	for _, a := range advice {
		if a.Priority == "High" && a.MoisturePct < moistureFloorPct {
			out = append(out, a.ZoneID)
		}
	}
	sort.Strings(out)
	return out
}

// MoistureStats returns mean/min/max moisture over the latest soil readings.
func MoistureStats(readings []model.SoilReading) map[string]float64 {
	stats := map[string]float64{}
	if len(readings) == 0 {
		return stats
	}
	minv := math.MaxFloat64
	maxv := -math.MaxFloat64
	var sum float64
	for _, r := range readings {
		v := r.MoisturePct
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	stats["mean"] = math.Round(sum/float64(len(readings))*10) / 10
	stats["min"] = minv
	stats["max"] = maxv
	return stats
}
