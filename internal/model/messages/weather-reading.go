package messages

import "time"

// WeatherReading is one weather station sample, published on sensor/weather.
type WeatherReading struct {
	TemperatureC   float64 `json:"temperature_c"`
	HumidityPct    float64 `json:"humidity_pct"`
	RainfallMM     float64 `json:"rainfall_mm"`
	WindSpeedKmh   float64 `json:"wind_speed_kmh"`
	SolarRadiation float64 `json:"solar_radiation_wm2"`
	PressureHpa    float64 `json:"pressure_hpa"`
	UVIndex        int     `json:"uv_index"`

	Timestamp time.Time `json:"timestamp"`
}

// WeatherAggregate is the daily weather summary attached to a ZoneSnapshot:
// means across the window except rainfall, which accumulates.
type WeatherAggregate struct {
	TemperatureC   float64 `json:"temperature_c"`
	HumidityPct    float64 `json:"humidity_pct"`
	RainfallMM     float64 `json:"rainfall_mm"`
	WindSpeedKmh   float64 `json:"wind_speed_kmh"`
	SolarRadiation float64 `json:"solar_radiation_wm2"`
	Samples        int     `json:"samples"`
}
