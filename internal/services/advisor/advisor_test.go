package advisor

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agrisense/agrisense/internal/agronomy"
	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/model/messages"
)

type fakeConsumer struct{}

func (f *fakeConsumer) ConsumeMessage(ctx context.Context)                                {}
func (f *fakeConsumer) SetHandler(h func(topic string, message mqtt.Message) error)       {}

type published struct {
	topic   string
	qos     byte
	payload string
}

type fakePublisher struct {
	msgs []published
}

func (f *fakePublisher) PublishMessage(payload string) error {
	return f.PublishToQos("", 0, false, payload)
}
func (f *fakePublisher) PublishToQos(topic string, qos byte, retained bool, payload string) error {
	f.msgs = append(f.msgs, published{topic: topic, qos: qos, payload: payload})
	return nil
}
func (f *fakePublisher) Close() {}

func (f *fakePublisher) byPrefix(prefix string) []published {
	var out []published
	for _, m := range f.msgs {
		if strings.HasPrefix(m.topic, prefix) {
			out = append(out, m)
		}
	}
	return out
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func testCrops() []entities.Crop {
	return []entities.Crop{
		{
			Name:         "Wheat",
			NitrogenMin:  50, NitrogenMax: 100,
			PhosphorusMin: 25, PhosphorusMax: 60,
			PotassiumMin: 30, PotassiumMax: 80,
			PHMin: 6.0, PHMax: 7.5,
			WaterRequirementMM: 450,
			TemperatureMinC:    10, TemperatureMaxC: 25,
			GrowingSeason: "Rabi",
		},
	}
}

func newTestService(t *testing.T) (*Service, *fakePublisher, *Metrics) {
	t.Helper()
	estimator, err := agronomy.NewIrrigationEstimator(agronomy.DefaultIrrigationConfig())
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	pub := &fakePublisher{}
	metrics := NewMetrics(prometheus.NewRegistry())
	zones := map[string]entities.Zone{
		"z1": {ID: "z1", SoilType: entities.SoilSandy, Crop: "Wheat"},
	}
	svc, err := NewService(&fakeConsumer{}, pub, estimator, nil, zones, testCrops(), metrics)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, pub, metrics
}

func snapshotPayload(t *testing.T, snap messages.ZoneSnapshot) []byte {
	t.Helper()
	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return b
}

func baseSnapshot() messages.ZoneSnapshot {
	return messages.ZoneSnapshot{
		Soil: messages.SoilReading{
			ZoneID:           "z1",
			SoilType:         entities.SoilSandy,
			Crop:             "Wheat",
			NitrogenMgKg:     70,
			PhosphorusMgKg:   40,
			PotassiumMgKg:    60,
			PH:               6.8,
			OrganicMatterPct: 3.5,
			MoisturePct:      2,
			SoilTemperatureC: 20,
			ECMsCm:           1.5,
			Aggregated:       true,
		},
		Weather: messages.WeatherAggregate{
			TemperatureC:   25,
			HumidityPct:    100, // saturated air: ETo is 0
			RainfallMM:     0,
			WindSpeedKmh:   5,
			SolarRadiation: 300,
			Samples:        6,
		},
		Timestamp: time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotProducesAdviceAndAssessment(t *testing.T) {
	svc, pub, _ := newTestService(t)

	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, baseSnapshot())}
	if err := svc.handleMessage(msg.topic, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	advices := pub.byPrefix("event/irrigationAdvice/z1")
	if len(advices) != 1 {
		t.Fatalf("got %d advice events, want 1", len(advices))
	}
	if advices[0].qos != 1 {
		t.Errorf("advice published at qos %d, want 1", advices[0].qos)
	}

	var evt messages.IrrigationAdviceEvent
	if err := json.Unmarshal([]byte(advices[0].payload), &evt); err != nil {
		t.Fatalf("unmarshal advice: %v", err)
	}
	// Sandy FC 20: need = 20*0.5 - 2 + 0 - 0 = 8 -> Medium.
	if evt.NeedMM != 8 {
		t.Errorf("need = %.2f, want 8", evt.NeedMM)
	}
	if evt.EToMM != 0 {
		t.Errorf("eto = %.2f, want 0 at saturation", evt.EToMM)
	}
	if evt.Priority != "Medium" || evt.Frequency != "Every 2 days" {
		t.Errorf("priority/frequency = %s/%s, want Medium/Every 2 days", evt.Priority, evt.Frequency)
	}
	if evt.ID == "" {
		t.Error("advice event has no ID")
	}

	soils := pub.byPrefix("event/soilAssessment/z1")
	if len(soils) != 1 {
		t.Fatalf("got %d soil assessments, want 1", len(soils))
	}
	var soil messages.SoilAssessmentEvent
	if err := json.Unmarshal([]byte(soils[0].payload), &soil); err != nil {
		t.Fatalf("unmarshal soil assessment: %v", err)
	}
	if soil.HealthScore < 0 || soil.HealthScore > 100 {
		t.Errorf("health score %.1f outside [0,100]", soil.HealthScore)
	}
	if soil.Category == "" {
		t.Error("soil assessment has no category")
	}
	// Nutrients are all above the moderate breakpoints here.
	if len(soil.Deficiencies) != 0 {
		t.Errorf("unexpected deficiencies: %v", soil.Deficiencies)
	}
}

func TestRedeliveredSnapshotIsDropped(t *testing.T) {
	svc, pub, _ := newTestService(t)

	payload := snapshotPayload(t, baseSnapshot())
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: payload}

	_ = svc.handleMessage(msg.topic, msg)
	first := len(pub.msgs)
	_ = svc.handleMessage(msg.topic, msg)

	if len(pub.msgs) != first {
		t.Fatalf("redelivery was not deduplicated: %d -> %d publishes", first, len(pub.msgs))
	}
}

func TestInvalidReadingIsSkipped(t *testing.T) {
	svc, pub, metrics := newTestService(t)

	snap := baseSnapshot()
	snap.Soil.MoisturePct = 150
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, snap)}

	if err := svc.handleMessage(msg.topic, msg); err != nil {
		t.Fatalf("handleMessage should skip, not fail: %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("published %d events from an invalid reading, want 0", len(pub.msgs))
	}
	if got := testutil.ToFloat64(metrics.SkippedTotal.WithLabelValues("invalid_reading")); got != 1 {
		t.Errorf("skipped counter = %v, want 1", got)
	}
}

func TestUnknownSoilTypeIsSkipped(t *testing.T) {
	svc, pub, metrics := newTestService(t)

	snap := baseSnapshot()
	snap.Soil.SoilType = "Rocky"
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, snap)}

	_ = svc.handleMessage(msg.topic, msg)
	if len(pub.msgs) != 0 {
		t.Fatalf("published %d events for an unprofiled soil type, want 0", len(pub.msgs))
	}
	if got := testutil.ToFloat64(metrics.SkippedTotal.WithLabelValues("configuration")); got != 1 {
		t.Errorf("skipped counter = %v, want 1", got)
	}
}

func TestSnapshotWithoutWeatherIsSkipped(t *testing.T) {
	svc, pub, metrics := newTestService(t)

	snap := baseSnapshot()
	snap.Weather = messages.WeatherAggregate{}
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, snap)}

	if err := svc.handleMessage(msg.topic, msg); err != nil {
		t.Fatalf("handleMessage should skip, not fail: %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("published %d events from an empty weather window, want 0", len(pub.msgs))
	}
	if got := testutil.ToFloat64(metrics.SkippedTotal.WithLabelValues("no_weather")); got != 1 {
		t.Errorf("skipped counter = %v, want 1", got)
	}
}

type fakeWeather struct {
	etoMM, rainMM float64
}

func (f *fakeWeather) GetDailyEToAndRain(ctx context.Context, lat, lon float64, day time.Time) (float64, float64, error) {
	return f.etoMM, f.rainMM, nil
}

func TestWeatherFallbackFillsEmptyWindow(t *testing.T) {
	svc, pub, _ := newTestService(t)
	svc.weather = &fakeWeather{etoMM: 2, rainMM: 0}

	snap := baseSnapshot()
	snap.Weather = messages.WeatherAggregate{}
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, snap)}

	if err := svc.handleMessage(msg.topic, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	advices := pub.byPrefix("event/irrigationAdvice/z1")
	if len(advices) != 1 {
		t.Fatalf("got %d advice events, want 1", len(advices))
	}
	var evt messages.IrrigationAdviceEvent
	if err := json.Unmarshal([]byte(advices[0].payload), &evt); err != nil {
		t.Fatalf("unmarshal advice: %v", err)
	}
	// Sandy FC 20: need = 20*0.5 - 2 + 2*5 - 0 = 18 -> High.
	if evt.NeedMM != 18 || evt.Priority != "High" {
		t.Errorf("need/priority = %.2f/%s, want 18/High", evt.NeedMM, evt.Priority)
	}
}

func TestNonAggregatedSnapshotIsIgnored(t *testing.T) {
	svc, pub, _ := newTestService(t)

	snap := baseSnapshot()
	snap.Soil.Aggregated = false
	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, snap)}

	_ = svc.handleMessage(msg.topic, msg)
	if len(pub.msgs) != 0 {
		t.Fatalf("published %d events for a raw reading, want 0", len(pub.msgs))
	}
}

func TestWaterReadingProducesAssessment(t *testing.T) {
	svc, pub, _ := newTestService(t)

	r := messages.WaterReading{
		SourceType:     "Canal",
		PH:             7.0,
		TDSPpm:         300,
		TurbidityNTU:   2,
		DissolvedO2MgL: 7,
		NitrateMgL:     5,
	}
	payload, _ := json.Marshal(r)
	msg := &fakeMessage{topic: "sensor/water/Canal", payload: payload}

	if err := svc.handleMessage(msg.topic, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	events := pub.byPrefix("event/waterAssessment/Canal")
	if len(events) != 1 {
		t.Fatalf("got %d water assessments, want 1", len(events))
	}
	var evt messages.WaterAssessmentEvent
	if err := json.Unmarshal([]byte(events[0].payload), &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.Score != 100 || evt.Grade != "A" {
		t.Errorf("score/grade = %.0f/%s, want 100/A", evt.Score, evt.Grade)
	}
	if len(evt.Violations) != 0 {
		t.Errorf("unexpected violations: %v", evt.Violations)
	}
	if evt.Treatment == "" {
		t.Error("no treatment recommendation")
	}
}

func TestCropRecommendationRequiresSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, ok := svc.RecommendCrops("z1", 3); ok {
		t.Fatal("recommendation available before any snapshot")
	}

	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, baseSnapshot())}
	_ = svc.handleMessage(msg.topic, msg)

	scores, ok := svc.RecommendCrops("z1", 3)
	if !ok {
		t.Fatal("recommendation unavailable after snapshot")
	}
	if len(scores) != 1 || scores[0].Crop != "Wheat" {
		t.Fatalf("unexpected recommendations: %+v", scores)
	}
	if scores[0].Score <= 0 {
		t.Errorf("score = %d, want > 0", scores[0].Score)
	}
}

func TestLatestAdviceIsServed(t *testing.T) {
	svc, _, _ := newTestService(t)

	msg := &fakeMessage{topic: "sensor/aggregated/z1", payload: snapshotPayload(t, baseSnapshot())}
	_ = svc.handleMessage(msg.topic, msg)

	latest := svc.LatestAdvice()
	if len(latest) != 1 || latest[0].ZoneID != "z1" {
		t.Fatalf("unexpected latest advice: %+v", latest)
	}
}
