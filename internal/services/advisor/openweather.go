package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// WeatherClient returns daily reference evapotranspiration and rainfall (mm)
// for a coordinate. Used as fallback when a snapshot arrives with no weather
// samples in its window.
type WeatherClient interface {
	GetDailyEToAndRain(ctx context.Context, lat, lon float64, day time.Time) (etoMM, rainMM float64, err error)
}

type owmDaily struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Rain float64 `json:"rain"`
}

type owmResp struct {
	Daily []owmDaily `json:"daily"`
}

// OWMClient fetches the OpenWeatherMap One Call daily forecast and derives
// ETo from min/max temperature with simplified Hargreaves.
type OWMClient struct {
	apiKey string
	http   *http.Client
}

func NewOWMClient(key string) *OWMClient {
	return &OWMClient{
		apiKey: key,
		http:   &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *OWMClient) GetDailyEToAndRain(ctx context.Context, lat, lon float64, day time.Time) (float64, float64, error) {
	if c.apiKey == "" {
		return 0, 0, fmt.Errorf("missing api key")
	}
	url := fmt.Sprintf("https://api.openweathermap.org/data/3.0/onecall?lat=%f&lon=%f&exclude=current,minutely,hourly,alerts&units=metric&appid=%s", lat, lon, c.apiKey)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return 0, 0, fmt.Errorf("owm status %d: %s", resp.StatusCode, string(b))
	}
	var out owmResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, err
	}
	if len(out.Daily) == 0 {
		return 0, 0, fmt.Errorf("no daily data")
	}

	// Pick the daily entry closest to the requested day (UTC).
	target := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	chosen := out.Daily[0]
	minDelta := time.Duration(1<<63 - 1)
	for _, d := range out.Daily {
		t := time.Unix(d.Dt, 0).UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		delta := target.Sub(date)
		if delta < 0 {
			delta = -delta
		}
		if delta < minDelta {
			minDelta = delta
			chosen = d
		}
	}

	// Simplified extraterrestrial radiation constant; good enough for a
	// fallback estimate in mm/day.
	const ra = 0.408
	eto := etoHargreaves(chosen.Temp.Min, chosen.Temp.Max, ra)
	return eto, chosen.Rain, nil
}

func etoHargreaves(tmin, tmax, ra float64) float64 {
	tmean := (tmin + tmax) / 2.0
	return 0.0023 * (tmean + 17.8) * math.Sqrt(math.Max(tmax-tmin, 0)) * ra
}
