package sink

import (
	"fmt"

	"github.com/larsks/airdancer/internal/mqtt"
)

// MQTTSink publishes each matched command as the payload of an MQTT message
// rather than running it locally, so a separate consumer (or a fleet of
// them) can act on it.
type MQTTSink struct {
	client *mqtt.Client
	topic  string
}

// NewMQTTSink wraps an already-connecting mqtt.Client, publishing every
// dispatched command to topic.
func NewMQTTSink(client *mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

// Dispatch publishes cmd verbatim, QoS 0, not retained.
func (s *MQTTSink) Dispatch(cmd string) error {
	if err := s.client.Publish(s.topic, 0, false, []byte(cmd)); err != nil {
		return fmt.Errorf("publish command: %w", err)
	}
	return nil
}
