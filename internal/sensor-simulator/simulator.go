package sensor_simulator

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/pkg/mqttbus"
)

// Topics the simulator publishes on; {zone} and {source} are substituted.
const (
	soilTopicTmpl  = "sensor/soil/{zone}"
	weatherTopic   = "sensor/weather"
	waterTopicTmpl = "sensor/water/{source}"
)

// Simulator drives one Generator per zone and publishes readings on a fixed
// interval. Weather is shared, so only the first zone's generator emits it.
type Simulator struct {
	publisher  mqttbus.IPublisher
	generators map[string]*Generator
	zoneOrder  []string

	// water readings are emitted every waterEvery ticks
	waterEvery int
	tick       int
}

func NewSimulator(publisher mqttbus.IPublisher, zones map[string]entities.Zone, decayPerMin float64, seed int64) *Simulator {
	gens := make(map[string]*Generator, len(zones))
	var order []string
	for id, z := range zones {
		gens[id] = NewGenerator(z, decayPerMin, seed+int64(len(order)))
		order = append(order, id)
	}
	return &Simulator{
		publisher:  publisher,
		generators: gens,
		zoneOrder:  order,
		waterEvery: 6,
	}
}

// SeedFromSoilGrids performs one moisture fetch per zone before the publish
// loop starts. Failures fall back to the zone baseline.
func (s *Simulator) SeedFromSoilGrids(ctx context.Context, zones map[string]entities.Zone) {
	seeder := NewSoilGridsSeeder()
	now := time.Now()
	for id, z := range zones {
		if z.Latitude == 0 && z.Longitude == 0 {
			continue
		}
		m, err := seeder.FetchMoisturePct(ctx, z.Latitude, z.Longitude)
		if err != nil {
			log.Printf("simulator: soilgrids seed for %s failed: %v (using baseline)", id, err)
			continue
		}
		s.generators[id].Seed(m, now)
		log.Printf("simulator: seeded %s moisture=%.1f%% from soilgrids", id, m)
	}
}

// Start publishes readings until ctx is cancelled.
func (s *Simulator) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case now := <-ticker.C:
			s.publishAll(now)
		}
	}
}

func (s *Simulator) publishAll(now time.Time) {
	s.tick++

	// One shared weather stream; its rainfall recharges every zone, not
	// just the generator that emitted it.
	var rainMM float64
	if len(s.zoneOrder) > 0 {
		w := s.generators[s.zoneOrder[0]].NextWeather(now)
		rainMM = w.RainfallMM
		s.publishJSON(weatherTopic, w)
		log.Printf("simulator: pub weather temp=%.1fC rain=%.1fmm", w.TemperatureC, w.RainfallMM)
	}

	for i, id := range s.zoneOrder {
		gen := s.generators[id]
		if i > 0 {
			gen.Recharge(rainMM, now)
		}

		soil := gen.NextSoil(now)
		s.publishJSON(strings.Replace(soilTopicTmpl, "{zone}", id, 1), soil)
		log.Printf("simulator: pub soil zone=%s moisture=%.1f%%", id, soil.MoisturePct)
	}

	if s.tick%s.waterEvery == 0 && len(s.zoneOrder) > 0 {
		gen := s.generators[s.zoneOrder[0]]
		for _, source := range WaterSources() {
			wr := gen.NextWater(now, source)
			s.publishJSON(strings.Replace(waterTopicTmpl, "{source}", source, 1), wr)
		}
		log.Printf("simulator: pub water readings for %d sources", len(WaterSources()))
	}
}

func (s *Simulator) publishJSON(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("simulator: marshal error on %s: %v", topic, err)
		return
	}
	if err := s.publisher.PublishToQos(topic, 0, false, string(payload)); err != nil {
		log.Printf("simulator: publish error on %s: %v", topic, err)
	}
}
