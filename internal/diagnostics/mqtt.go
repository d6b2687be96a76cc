package diagnostics

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// TelemetrySink is the ambient §6 Port: Telemetry sink.
type TelemetrySink interface {
	Publish(HealthSnapshot) error
}

// MQTTSink publishes HealthSnapshots to a broker topic, grounded on the
// pack's paho wrapper (pkg/l1/comm/mqtt/pubsub.go) though used directly
// here since a single fire-and-forget publish needs none of that package's
// subscription bookkeeping.
type MQTTSink struct {
	client paho.Client
	topic  string
}

// NewMQTTSink connects a paho client to broker and returns a sink
// publishing to topic. Connection failures are logged, never returned,
// matching §7's ambient-error policy: a publish sink must never block
// startup.
func NewMQTTSink(broker, topic, clientID string) *MQTTSink {
	opts := paho.NewClientOptions()
	opts.AddBroker(broker).SetAutoReconnect(true).SetClientID(clientID)
	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		glog.Warningf("diagnostics: mqtt connect to %s failed: %v", broker, token.Error())
	}
	return &MQTTSink{client: client, topic: topic}
}

// Publish sends the encoded snapshot with QoS 0, at-most-once, non-retained
// (§4.9: "a publish failure never affects the core loop").
func (s *MQTTSink) Publish(snap HealthSnapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	token := s.client.Publish(s.topic, 0, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("diagnostics: mqtt publish to %s timed out", s.topic)
	}
	return token.Error()
}

// Close disconnects the client.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}

// NoopSink discards every snapshot; used when no broker is configured.
type NoopSink struct{}

func (NoopSink) Publish(HealthSnapshot) error { return nil }
