package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/agrisense/agrisense/internal/agronomy"
	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/model/messages"
	"github.com/agrisense/agrisense/pkg/dedup"
	"github.com/agrisense/agrisense/pkg/mqttbus"
)

const (
	adviceTopicTmpl     = "event/irrigationAdvice/{zone}"
	soilEventTopicTmpl  = "event/soilAssessment/{zone}"
	waterEventTopicTmpl = "event/waterAssessment/{source}"
)

// Service consumes aggregated zone snapshots and raw water readings, runs the
// agronomy estimators and publishes advice and assessment events.
type Service struct {
	consumer  mqttbus.IConsumer[messages.ZoneSnapshot]
	publisher mqttbus.IPublisher
	estimator *agronomy.IrrigationEstimator
	weather   WeatherClient // optional fallback, may be nil
	metrics   *Metrics

	zones      map[string]entities.Zone
	crops      []entities.Crop
	thresholds agronomy.NutrientThresholds

	deduper *dedup.Deduper

	mu          sync.RWMutex
	latestSoil  map[string]agronomy.SoilSample // zone -> last sample
	latestTemp  map[string]float64             // zone -> last soil temperature
	latestAdv   map[string]messages.IrrigationAdviceEvent
	latestWater map[string]messages.WaterAssessmentEvent
}

func NewService(
	consumer mqttbus.IConsumer[messages.ZoneSnapshot],
	publisher mqttbus.IPublisher,
	estimator *agronomy.IrrigationEstimator,
	weather WeatherClient,
	zones map[string]entities.Zone,
	crops []entities.Crop,
	metrics *Metrics,
) (*Service, error) {
	if estimator == nil {
		return nil, errors.New("estimator is nil")
	}
	if publisher == nil {
		return nil, errors.New("publisher is nil")
	}

	s := &Service{
		consumer:    consumer,
		publisher:   publisher,
		estimator:   estimator,
		weather:     weather,
		metrics:     metrics,
		zones:       zones,
		crops:       crops,
		thresholds:  agronomy.DefaultNutrientThresholds(),
		deduper:     dedup.New(10*time.Minute, 20000),
		latestSoil:  make(map[string]agronomy.SoilSample),
		latestTemp:  make(map[string]float64),
		latestAdv:   make(map[string]messages.IrrigationAdviceEvent),
		latestWater: make(map[string]messages.WaterAssessmentEvent),
	}
	consumer.SetHandler(s.handleMessage)
	return s, nil
}

func (s *Service) Start(ctx context.Context) {
	go s.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
	s.publisher.Close()
}

// handleMessage routes by topic family. Redeliveries on the QoS1 aggregated
// topic are dropped by payload hash before unmarshalling.
func (s *Service) handleMessage(topic string, msg mqtt.Message) error {
	h := sha256.Sum256(msg.Payload())
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	switch {
	case strings.HasPrefix(topic, "sensor/aggregated/"):
		return s.handleSnapshot(msg.Payload())
	case strings.HasPrefix(topic, "sensor/water/"):
		return s.handleWater(strings.TrimPrefix(topic, "sensor/water/"), msg.Payload())
	default:
		log.Printf("advisor: ignoring message on unexpected topic %s", topic)
		return nil
	}
}

func (s *Service) handleSnapshot(payload []byte) error {
	var snap messages.ZoneSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		log.Printf("advisor: bad snapshot payload: %v", err)
		s.skipped("unmarshal")
		return nil
	}
	if !snap.Soil.Aggregated {
		return nil
	}

	zoneID := snap.Soil.ZoneID
	advice, err := s.estimate(snap)
	if err != nil {
		// Bad readings and missing profiles are caller-data problems:
		// skip this snapshot, the next window gets a fresh chance.
		var invErr *agronomy.InvalidReadingError
		var cfgErr *agronomy.ConfigurationError
		switch {
		case errors.As(err, &invErr):
			log.Printf("advisor: zone=%s invalid reading field=%s value=%v: %s", zoneID, invErr.Field, invErr.Value, invErr.Reason)
			s.skipped("invalid_reading")
		case errors.As(err, &cfgErr):
			log.Printf("advisor: zone=%s configuration error key=%s: %s", zoneID, cfgErr.Key, cfgErr.Reason)
			s.skipped("configuration")
		case errors.Is(err, errNoWeather):
			log.Printf("advisor: zone=%s window has no weather and no fallback, skipping", zoneID)
			s.skipped("no_weather")
		default:
			log.Printf("advisor: zone=%s estimate error: %v", zoneID, err)
			s.skipped("other")
		}
		return nil
	}

	now := time.Now().UTC()
	evt := messages.IrrigationAdviceEvent{
		ID:          uuid.NewString(),
		ZoneID:      advice.ZoneID,
		Crop:        advice.Crop,
		NeedMM:      advice.NeedMM,
		EToMM:       advice.EToMM,
		Priority:    string(advice.Priority),
		Frequency:   advice.Frequency,
		MoisturePct: snap.Soil.MoisturePct,
		Timestamp:   now,
	}
	s.publishEvent(strings.Replace(adviceTopicTmpl, "{zone}", zoneID, 1), 1, evt)
	log.Printf("advisor: zone=%s need=%.1fmm eto=%.2fmm priority=%s freq=%q",
		zoneID, advice.NeedMM, advice.EToMM, advice.Priority, advice.Frequency)

	sample := soilSampleOf(snap.Soil)
	status := agronomy.DetectDeficiencies(sample, s.thresholds)
	health := agronomy.HealthScore(sample)
	soilEvt := messages.SoilAssessmentEvent{
		ZoneID:       zoneID,
		HealthScore:  health,
		Category:     agronomy.HealthCategory(health),
		Deficiencies: status.Labels(),
		Timestamp:    now,
	}
	s.publishEvent(strings.Replace(soilEventTopicTmpl, "{zone}", zoneID, 1), 0, soilEvt)

	if s.metrics != nil {
		s.metrics.AdviceTotal.WithLabelValues(string(advice.Priority)).Inc()
		s.metrics.ZoneNeedMM.WithLabelValues(zoneID).Set(advice.NeedMM)
		s.metrics.SoilHealthScore.WithLabelValues(zoneID).Set(health)
	}

	s.mu.Lock()
	s.latestSoil[zoneID] = sample
	s.latestTemp[zoneID] = snap.Soil.SoilTemperatureC
	s.latestAdv[zoneID] = evt
	s.mu.Unlock()
	return nil
}

// errNoWeather marks a snapshot whose window held no weather samples and for
// which no fallback source could supply any.
var errNoWeather = errors.New("no weather samples in window")

// estimate runs the irrigation estimator for one snapshot. When the window
// held no weather samples, the OpenWeatherMap fallback supplies ETo and rain;
// without a usable fallback the snapshot is rejected rather than estimated
// from zero-valued weather.
func (s *Service) estimate(snap messages.ZoneSnapshot) (agronomy.IrrigationAdvice, error) {
	z := agronomy.ZoneReading{
		ZoneID:      snap.Soil.ZoneID,
		SoilType:    snap.Soil.SoilType,
		MoisturePct: snap.Soil.MoisturePct,
		Crop:        snap.Soil.Crop,
	}
	if c, ok := entities.FindCrop(s.crops, snap.Soil.Crop); ok {
		z.CropWaterNeedMM = c.WaterRequirementMM
	}

	if snap.Weather.Samples == 0 {
		if s.weather != nil {
			zone, ok := s.zones[z.ZoneID]
			if ok {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				eto, rain, err := s.weather.GetDailyEToAndRain(ctx, zone.Latitude, zone.Longitude, time.Now().UTC())
				if err == nil {
					log.Printf("advisor: zone=%s no weather samples, owm fallback eto=%.2f rain=%.2f", z.ZoneID, eto, rain)
					return s.estimator.EstimateWithETo(z, eto, rain)
				}
				log.Printf("advisor: zone=%s owm fallback failed: %v", z.ZoneID, err)
			}
		}
		return agronomy.IrrigationAdvice{}, errNoWeather
	}

	w := agronomy.WeatherReading{
		TemperatureC: snap.Weather.TemperatureC,
		HumidityPct:  snap.Weather.HumidityPct,
		SolarWm2:     snap.Weather.SolarRadiation,
		WindKmh:      snap.Weather.WindSpeedKmh,
		RainfallMM:   snap.Weather.RainfallMM,
	}
	return s.estimator.Estimate(z, w)
}

func (s *Service) handleWater(source string, payload []byte) error {
	var r messages.WaterReading
	if err := json.Unmarshal(payload, &r); err != nil {
		log.Printf("advisor: bad water payload on source %s: %v", source, err)
		s.skipped("unmarshal")
		return nil
	}
	if r.SourceType == "" {
		r.SourceType = source
	}

	sample := agronomy.WaterSample{
		PH:             r.PH,
		TDSPpm:         r.TDSPpm,
		TurbidityNTU:   r.TurbidityNTU,
		DissolvedO2MgL: r.DissolvedO2MgL,
		HardnessMgL:    r.HardnessMgL,
		ChlorideMgL:    r.ChlorideMgL,
		SulfateMgL:     r.SulfateMgL,
		NitrateMgL:     r.NitrateMgL,
		TemperatureC:   r.WaterTemperature,
	}
	score := agronomy.WaterQualityScore(sample)
	grade := agronomy.GradeFromScore(score)
	evt := messages.WaterAssessmentEvent{
		SourceType: r.SourceType,
		Grade:      grade,
		Score:      score,
		Violations: agronomy.IrrigationLimitViolations(sample),
		Treatment:  agronomy.TreatmentRecommendation(grade),
		Timestamp:  time.Now().UTC(),
	}
	s.publishEvent(strings.Replace(waterEventTopicTmpl, "{source}", r.SourceType, 1), 0, evt)
	log.Printf("advisor: water source=%s score=%.0f grade=%s violations=%d",
		r.SourceType, score, grade, len(evt.Violations))

	if s.metrics != nil {
		s.metrics.WaterScore.WithLabelValues(r.SourceType).Set(score)
	}

	s.mu.Lock()
	s.latestWater[r.SourceType] = evt
	s.mu.Unlock()
	return nil
}

func (s *Service) publishEvent(topic string, qos byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("advisor: marshal error on %s: %v", topic, err)
		return
	}
	if err := s.publisher.PublishToQos(topic, qos, false, string(b)); err != nil {
		log.Printf("advisor: publish error on %s: %v", topic, err)
	}
}

func (s *Service) skipped(reason string) {
	if s.metrics != nil {
		s.metrics.SkippedTotal.WithLabelValues(reason).Inc()
	}
}

// LatestAdvice returns the last advice event per zone.
func (s *Service) LatestAdvice() []messages.IrrigationAdviceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]messages.IrrigationAdviceEvent, 0, len(s.latestAdv))
	for _, evt := range s.latestAdv {
		out = append(out, evt)
	}
	return out
}

// LatestWater returns the last assessment per water source.
func (s *Service) LatestWater() []messages.WaterAssessmentEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]messages.WaterAssessmentEvent, 0, len(s.latestWater))
	for _, evt := range s.latestWater {
		out = append(out, evt)
	}
	return out
}

// RecommendCrops ranks the crop database against the zone's latest soil
// sample. ok is false until a snapshot for the zone has been seen.
func (s *Service) RecommendCrops(zoneID string, topN int) ([]agronomy.CropScore, bool) {
	s.mu.RLock()
	sample, ok := s.latestSoil[zoneID]
	soilTemp := s.latestTemp[zoneID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	season := agronomy.Season(time.Now().UTC().Month())
	return agronomy.RecommendCrops(sample, soilTemp, season, s.crops, topN), true
}

func soilSampleOf(r messages.SoilReading) agronomy.SoilSample {
	return agronomy.SoilSample{
		NitrogenMgKg:     r.NitrogenMgKg,
		PhosphorusMgKg:   r.PhosphorusMgKg,
		PotassiumMgKg:    r.PotassiumMgKg,
		PH:               r.PH,
		OrganicMatterPct: r.OrganicMatterPct,
		MoisturePct:      r.MoisturePct,
		ECMsCm:           r.ECMsCm,
	}
}
