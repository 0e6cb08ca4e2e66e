package agronomy

import (
	"math"
	"time"
)

// EstimateETo returns a reference evapotranspiration estimate in mm/day from
// a simplified Penman-Monteith approximation. The coefficients are policy
// constants, not physics; confirm against FAO-56 before dosing real crops.
func EstimateETo(tempC, humidityPct, solarWm2, windKmh float64) float64 {
	eto := 0.0023 * (tempC + 17.8) * math.Sqrt(math.Abs(solarWm2+1)) *
		(1 - humidityPct/100) * (1 + 0.01*windKmh)
	if eto < 0 {
		eto = 0
	}
	if eto > 15 {
		eto = 15
	}
	return math.Round(eto*100) / 100
}

// HeatIndex is Steadman's simplified regression, rounded to one decimal.
func HeatIndex(tempC, humidityPct float64) float64 {
	hi := 0.5 * (tempC + 61.0 + ((tempC - 68.0) * 1.2) + (humidityPct * 0.094))
	return math.Round(hi*10) / 10
}

// Season maps a month to the Indian agricultural season.
func Season(month time.Month) string {
	switch month {
	case time.June, time.July, time.August, time.September:
		return "Kharif" // monsoon
	case time.October, time.November, time.December, time.January, time.February:
		return "Rabi" // winter
	default:
		return "Zaid" // summer
	}
}
