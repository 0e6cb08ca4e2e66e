package sensor_simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// soilGridsURL: one fetch per zone at startup; never called on the tick path.
const soilGridsURL = "https://rest.isric.org/soilgrids/v2.0/properties/query?lat=%f&lon=%f&property=wv0010"

// SoilGridsSeeder fetches an initial volumetric moisture estimate for a
// coordinate, with one retry for transient failures.
type SoilGridsSeeder struct {
	httpClient *http.Client
}

func NewSoilGridsSeeder() *SoilGridsSeeder {
	return &SoilGridsSeeder{httpClient: &http.Client{Timeout: 8 * time.Second}}
}

// FetchMoisturePct returns the topsoil moisture as a percentage, or an
// error; callers fall back to the zone baseline on error.
func (s *SoilGridsSeeder) FetchMoisturePct(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf(soilGridsURL, lat, lon)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(rand.Intn(400)+600) * time.Millisecond)
		}
		val, retry, err := s.fetchOnce(ctx, url)
		if err == nil {
			return val, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return -1, lastErr
}

func (s *SoilGridsSeeder) fetchOnce(ctx context.Context, url string) (val float64, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return -1, false, err
	}
	req.Header.Set("User-Agent", "agrisense-sensor-simulator/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return -1, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return -1, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		m, perr := parseSoilGridsMoisture(body)
		if perr != nil {
			return -1, true, perr
		}
		return normalizeWV(m), false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return -1, true, fmt.Errorf("soilgrids HTTP %d", resp.StatusCode)
	default:
		return -1, false, fmt.Errorf("soilgrids HTTP %d: %s", resp.StatusCode, string(body))
	}
}

// parseSoilGridsMoisture walks the layers/depths/values shape of the
// SoilGrids response and returns the first usable quantile value.
func parseSoilGridsMoisture(body []byte) (float64, error) {
	var parsed struct {
		Properties struct {
			Layers []struct {
				Name   string `json:"name"`
				Depths []struct {
					Values map[string]*float64 `json:"values"`
				} `json:"depths"`
			} `json:"layers"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return -1, err
	}
	for _, layer := range parsed.Properties.Layers {
		for _, depth := range layer.Depths {
			for _, k := range []string{"Q0.5", "mean", "Q0.95", "Q0.05"} {
				if v := depth.Values[k]; v != nil {
					return *v, nil
				}
			}
		}
	}
	return -1, fmt.Errorf("soilgrids: moisture field not found")
}

// normalizeWV converts SoilGrids wv**** values to a moisture percentage.
// Many layers are integers in thousandths of m3/m3 (e.g. 420 => 42%).
func normalizeWV(x float64) float64 {
	if x > 1.5 {
		x = x / 1000.0
	}
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	return x * 100
}
