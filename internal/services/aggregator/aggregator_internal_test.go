package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agrisense/agrisense/internal/model/messages"
)

type stubMessage struct {
	topic   string
	payload []byte
}

func (m *stubMessage) Duplicate() bool   { return false }
func (m *stubMessage) Qos() byte         { return 0 }
func (m *stubMessage) Retained() bool    { return false }
func (m *stubMessage) Topic() string     { return m.topic }
func (m *stubMessage) MessageID() uint16 { return 0 }
func (m *stubMessage) Payload() []byte   { return m.payload }
func (m *stubMessage) Ack()              {}

// blockingPublisher stands in for a broker that is slow to ack.
type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishMessage(payload string) error { return nil }
func (p *blockingPublisher) PublishToQos(topic string, qos byte, retained bool, payload string) error {
	p.entered <- struct{}{}
	<-p.release
	return nil
}
func (p *blockingPublisher) Close() {}

func TestHandlerNotBlockedBySlowPublish(t *testing.T) {
	pub := &blockingPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(nil, pub, time.Minute)

	reading, err := json.Marshal(messages.SoilReading{ZoneID: "z1", MoisturePct: 20})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg := &stubMessage{topic: "sensor/soil/z1", payload: reading}
	if err := svc.messageHandler(msg.topic, msg); err != nil {
		t.Fatalf("messageHandler: %v", err)
	}

	done := make(chan struct{})
	go func() {
		svc.aggregateAndPublish(time.Now().UTC())
		close(done)
	}()
	<-pub.entered // publish is now in flight waiting on the broker

	handled := make(chan struct{})
	go func() {
		_ = svc.messageHandler(msg.topic, msg)
		close(handled)
	}()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("message handler stalled behind an in-flight publish")
	}

	close(pub.release)
	<-done
}
