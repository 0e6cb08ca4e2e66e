package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/model/messages"
	"github.com/agrisense/agrisense/pkg/mqttbus"
)

type InfluxConfig struct {
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// Service writes every sensor reading to InfluxDB and keeps an in-memory
// cache of the latest soil state per zone as a fallback read path.
type Service struct {
	consumer mqttbus.IConsumer[messages.SoilReading]
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	bucket   string

	mu    sync.RWMutex
	cache map[string]messages.SoilReading // zone -> latest
}

func NewService(consumer mqttbus.IConsumer[messages.SoilReading], client influxdb2.Client, cfg InfluxConfig) (*Service, error) {
	if cfg.InfluxOrg == "" || cfg.InfluxBucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}
	return &Service{
		consumer: consumer,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		queryAPI: client.QueryAPI(cfg.InfluxOrg),
		bucket:   cfg.InfluxBucket,
		cache:    make(map[string]messages.SoilReading),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(func(topic string, msg mqtt.Message) error {
		return s.handleMessage(ctx, topic, msg.Payload())
	})
	s.consumer.ConsumeMessage(ctx)
}

func (s *Service) handleMessage(ctx context.Context, topic string, payload []byte) error {
	var point *write.Point

	switch {
	case strings.HasPrefix(topic, "sensor/soil/"):
		var r messages.SoilReading
		if err := json.Unmarshal(payload, &r); err != nil {
			log.Printf("persistence: invalid JSON on %s: %v", topic, err)
			return nil // keep the stream moving
		}
		point = SoilPoint(r)
		s.mu.Lock()
		if prev, ok := s.cache[r.ZoneID]; !ok || r.Timestamp.After(prev.Timestamp) {
			s.cache[r.ZoneID] = r
		}
		s.mu.Unlock()

	case topic == "sensor/weather":
		var w messages.WeatherReading
		if err := json.Unmarshal(payload, &w); err != nil {
			log.Printf("persistence: invalid JSON on %s: %v", topic, err)
			return nil
		}
		point = WeatherPoint(w)

	case strings.HasPrefix(topic, "sensor/water/"):
		var r messages.WaterReading
		if err := json.Unmarshal(payload, &r); err != nil {
			log.Printf("persistence: invalid JSON on %s: %v", topic, err)
			return nil
		}
		point = WaterPoint(r)

	default:
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(wctx, point); err != nil {
		log.Printf("persistence: write error on %s: %v", topic, err)
		return err
	}
	return nil
}

// SoilPoint builds the soil_reading measurement point for one reading.
func SoilPoint(r messages.SoilReading) *write.Point {
	t := r.Timestamp
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return influxdb2.NewPoint("soil_reading",
		map[string]string{
			"zone_id":   r.ZoneID,
			"soil_type": string(r.SoilType),
		},
		map[string]interface{}{
			"moisture_pct":       r.MoisturePct,
			"ph":                 r.PH,
			"nitrogen_mg_kg":     r.NitrogenMgKg,
			"phosphorus_mg_kg":   r.PhosphorusMgKg,
			"potassium_mg_kg":    r.PotassiumMgKg,
			"organic_matter_pct": r.OrganicMatterPct,
			"soil_temperature_c": r.SoilTemperatureC,
			"ec_mscm":            r.ECMsCm,
			"aggregated":         r.Aggregated,
		}, t)
}

// WeatherPoint builds the weather_reading measurement point.
func WeatherPoint(w messages.WeatherReading) *write.Point {
	t := w.Timestamp
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return influxdb2.NewPoint("weather_reading",
		map[string]string{},
		map[string]interface{}{
			"temperature_c":       w.TemperatureC,
			"humidity_pct":        w.HumidityPct,
			"rainfall_mm":         w.RainfallMM,
			"wind_speed_kmh":      w.WindSpeedKmh,
			"solar_radiation_wm2": w.SolarRadiation,
			"pressure_hpa":        w.PressureHpa,
			"uv_index":            w.UVIndex,
		}, t)
}

// WaterPoint builds the water_reading measurement point.
func WaterPoint(r messages.WaterReading) *write.Point {
	t := r.Timestamp
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return influxdb2.NewPoint("water_reading",
		map[string]string{
			"source_type": r.SourceType,
		},
		map[string]interface{}{
			"ph":                  r.PH,
			"tds_ppm":             r.TDSPpm,
			"turbidity_ntu":       r.TurbidityNTU,
			"dissolved_oxygen":    r.DissolvedO2MgL,
			"hardness_mg_l":       r.HardnessMgL,
			"chloride_mg_l":       r.ChlorideMgL,
			"sulfate_mg_l":        r.SulfateMgL,
			"nitrate_mg_l":        r.NitrateMgL,
			"water_temperature_c": r.WaterTemperature,
		}, t)
}

// LatestCache returns the cached latest soil reading per zone.
func (s *Service) LatestCache() []messages.SoilReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]messages.SoilReading, 0, len(s.cache))
	for _, r := range s.cache {
		out = append(out, r)
	}
	return out
}

// QueryLatestFromInflux returns the last soil moisture per zone within the
// window, read back from the soil_reading measurement.
func (s *Service) QueryLatestFromInflux(ctx context.Context, minutes int) ([]messages.SoilReading, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "soil_reading" and r._field == "moisture_pct")
  |> group(columns: ["zone_id"])
  |> last()`, s.bucket, minutes)

	res, err := s.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []messages.SoilReading
	for res.Next() {
		rec := res.Record()
		r := messages.SoilReading{Timestamp: rec.Time()}
		if v, ok := rec.ValueByKey("zone_id").(string); ok {
			r.ZoneID = v
		}
		if v, ok := rec.ValueByKey("soil_type").(string); ok {
			r.SoilType = entities.SoilType(v)
		}
		if v, ok := rec.Value().(float64); ok {
			r.MoisturePct = v
		}
		out = append(out, r)
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	return out, nil
}
