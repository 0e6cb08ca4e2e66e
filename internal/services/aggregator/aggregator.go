package aggregator

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/agrisense/agrisense/internal/model/messages"
	"github.com/agrisense/agrisense/pkg/mqttbus"
)

const aggregatedTopicPrefix = "sensor/aggregated/"

// Service buffers raw soil readings per zone and weather readings globally,
// then publishes a ZoneSnapshot per zone on every aggregation tick.
type Service struct {
	consumer  mqttbus.IConsumer[messages.SoilReading]
	publisher mqttbus.IPublisher

	mutex    sync.Mutex
	soilBuf  map[string][]messages.SoilReading
	weather  []messages.WeatherReading
	interval time.Duration
}

func NewService(consumer mqttbus.IConsumer[messages.SoilReading], publisher mqttbus.IPublisher, interval time.Duration) *Service {
	return &Service{
		consumer:  consumer,
		publisher: publisher,
		interval:  interval,
		soilBuf:   make(map[string][]messages.SoilReading),
	}
}

func (s *Service) messageHandler(topic string, message mqtt.Message) error {
	switch {
	case strings.HasPrefix(topic, "sensor/soil/"):
		var r messages.SoilReading
		if err := json.Unmarshal(message.Payload(), &r); err != nil {
			log.Printf("aggregator: bad soil payload on %s: %v", topic, err)
			return err
		}
		if r.ZoneID == "" {
			r.ZoneID = strings.TrimPrefix(topic, "sensor/soil/")
		}
		s.mutex.Lock()
		s.soilBuf[r.ZoneID] = append(s.soilBuf[r.ZoneID], r)
		s.mutex.Unlock()

	case topic == "sensor/weather":
		var w messages.WeatherReading
		if err := json.Unmarshal(message.Payload(), &w); err != nil {
			log.Printf("aggregator: bad weather payload: %v", err)
			return err
		}
		s.mutex.Lock()
		s.weather = append(s.weather, w)
		s.mutex.Unlock()

	default:
		log.Printf("aggregator: ignoring message on unexpected topic %s", topic)
	}
	return nil
}

func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.messageHandler)
	go s.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-ticker.C:
			s.aggregateAndPublish(time.Now().UTC())
		}
	}
}

func (s *Service) aggregateAndPublish(now time.Time) {
	type pending struct {
		topic   string
		payload string
	}

	// Snapshot and marshal under the lock; publishing blocks on broker
	// acks and must not stall the message handler.
	s.mutex.Lock()
	weather := AggregateWeather(s.weather)
	s.weather = s.weather[:0]

	var batch []pending
	for zoneID, readings := range s.soilBuf {
		if len(readings) == 0 {
			continue
		}
		snap := messages.ZoneSnapshot{
			Soil:      AggregateSoil(readings),
			Weather:   weather,
			Timestamp: now,
		}
		snap.Soil.Timestamp = now

		b, err := json.Marshal(snap)
		if err != nil {
			log.Printf("aggregator: marshal error for zone %s: %v", zoneID, err)
			continue
		}
		batch = append(batch, pending{topic: aggregatedTopicPrefix + zoneID, payload: string(b)})
		s.soilBuf[zoneID] = readings[:0]
	}
	s.mutex.Unlock()

	published := 0
	for _, p := range batch {
		if err := s.publisher.PublishToQos(p.topic, 1, false, p.payload); err != nil {
			log.Printf("aggregator: publish error on %s: %v", p.topic, err)
			continue
		}
		published++
	}

	if published > 0 {
		log.Printf("aggregator: published %d zone snapshots (weather samples=%d)", published, weather.Samples)
	}
}

// AggregateSoil returns the mean of the buffered readings. Identity fields
// are taken from the most recent reading.
func AggregateSoil(readings []messages.SoilReading) messages.SoilReading {
	last := readings[len(readings)-1]
	out := messages.SoilReading{
		ZoneID:     last.ZoneID,
		SoilType:   last.SoilType,
		Crop:       last.Crop,
		Aggregated: true,
		Timestamp:  last.Timestamp,
	}

	n := float64(len(readings))
	for _, r := range readings {
		out.NitrogenMgKg += r.NitrogenMgKg
		out.PhosphorusMgKg += r.PhosphorusMgKg
		out.PotassiumMgKg += r.PotassiumMgKg
		out.PH += r.PH
		out.OrganicMatterPct += r.OrganicMatterPct
		out.MoisturePct += r.MoisturePct
		out.SoilTemperatureC += r.SoilTemperatureC
		out.ECMsCm += r.ECMsCm
	}
	out.NitrogenMgKg /= n
	out.PhosphorusMgKg /= n
	out.PotassiumMgKg /= n
	out.PH /= n
	out.OrganicMatterPct /= n
	out.MoisturePct /= n
	out.SoilTemperatureC /= n
	out.ECMsCm /= n
	return out
}

// AggregateWeather means every field over the window except rainfall, which
// accumulates: the advisor needs total rain, not average rain rate.
func AggregateWeather(readings []messages.WeatherReading) messages.WeatherAggregate {
	agg := messages.WeatherAggregate{Samples: len(readings)}
	if len(readings) == 0 {
		return agg
	}

	for _, w := range readings {
		agg.TemperatureC += w.TemperatureC
		agg.HumidityPct += w.HumidityPct
		agg.WindSpeedKmh += w.WindSpeedKmh
		agg.SolarRadiation += w.SolarRadiation
		agg.RainfallMM += w.RainfallMM
	}
	n := float64(len(readings))
	agg.TemperatureC /= n
	agg.HumidityPct /= n
	agg.WindSpeedKmh /= n
	agg.SolarRadiation /= n
	return agg
}
