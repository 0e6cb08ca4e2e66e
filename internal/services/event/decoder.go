package event

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/agrisense/agrisense/internal/model/messages"
)

// CommonEvent is the normalized shape every advisory topic decodes into
// before being written to the system_event measurement.
type CommonEvent struct {
	EventType     string // irrigation.advice | soil.assessment | water.assessment
	SourceService string
	ZoneID        string
	SourceID      string // water source, for water.assessment
	Severity      string // info|warning|error
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler turns MQTT messages into CommonEvents and hands them to the
// sink (Influx).
type MQTTHandler struct{ sink func(CommonEvent) }

func NewMQTTHandler(sink func(CommonEvent)) *MQTTHandler { return &MQTTHandler{sink: sink} }

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, "event/irrigationAdvice/"):
		evt, err = decodeAdvice(topic, payload)
	case strings.HasPrefix(topic, "event/soilAssessment/"):
		evt, err = decodeSoilAssessment(topic, payload)
	case strings.HasPrefix(topic, "event/waterAssessment/"):
		evt, err = decodeWaterAssessment(topic, payload)
	default:
		return nil // not ours
	}
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeAdvice(topic string, payload []byte) (CommonEvent, error) {
	var a msg.IrrigationAdviceEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return CommonEvent{}, err
	}
	zone := pickID(topic, a.ZoneID, "event/irrigationAdvice/")
	if zone == "" {
		return CommonEvent{}, errors.New("advice: missing zone")
	}
	sev := "info"
	if a.Priority == "High" {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "irrigation.advice",
		SourceService: "advisor",
		ZoneID:        zone,
		Severity:      sev,
		Fields: map[string]interface{}{
			"need_mm":      a.NeedMM,
			"eto_mm":       a.EToMM,
			"moisture_pct": a.MoisturePct,
			"priority":     a.Priority,
			"frequency":    a.Frequency,
			"advice_id":    a.ID,
		},
		Timestamp: a.Timestamp,
	}, nil
}

func decodeSoilAssessment(topic string, payload []byte) (CommonEvent, error) {
	var s msg.SoilAssessmentEvent
	if err := json.Unmarshal(payload, &s); err != nil {
		return CommonEvent{}, err
	}
	zone := pickID(topic, s.ZoneID, "event/soilAssessment/")
	if zone == "" {
		return CommonEvent{}, errors.New("soilAssessment: missing zone")
	}
	sev := "info"
	if s.Category == "Poor" {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "soil.assessment",
		SourceService: "advisor",
		ZoneID:        zone,
		Severity:      sev,
		Fields: map[string]interface{}{
			"health_score": s.HealthScore,
			"category":     s.Category,
			"deficiencies": strings.Join(s.Deficiencies, ","),
		},
		Timestamp: s.Timestamp,
	}, nil
}

func decodeWaterAssessment(topic string, payload []byte) (CommonEvent, error) {
	var w msg.WaterAssessmentEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return CommonEvent{}, err
	}
	source := pickID(topic, w.SourceType, "event/waterAssessment/")
	if source == "" {
		return CommonEvent{}, errors.New("waterAssessment: missing source")
	}
	sev := "info"
	switch w.Grade {
	case "D":
		sev = "warning"
	case "F":
		sev = "error"
	}
	return CommonEvent{
		EventType:     "water.assessment",
		SourceService: "advisor",
		SourceID:      source,
		Severity:      sev,
		Fields: map[string]interface{}{
			"score":      w.Score,
			"grade":      w.Grade,
			"violations": strings.Join(w.Violations, "; "),
			"treatment":  w.Treatment,
		},
		Timestamp: w.Timestamp,
	}, nil
}

// pickID prefers the payload value, falling back to "prefix/{id}" from the
// topic.
func pickID(topic, id, prefix string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	suffix := strings.TrimPrefix(topic, prefix)
	if i := strings.IndexByte(suffix, '/'); i >= 0 {
		suffix = suffix[:i]
	}
	return suffix
}
