package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client the driver needs.
// Narrow by design so tests can substitute a recorder.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
}

// CommandEnvelope is the JSON payload published for each command.
type CommandEnvelope struct {
	DeviceID  string      `json:"device_id"`
	Command   string      `json:"command"`
	Args      device.Args `json:"args,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// MQTTDriver delivers device commands over MQTT.
//
// Commands are published to hearth/command/{type}/{device_id} as JSON
// envelopes. Device transports (simulators, protocol adapters) subscribe
// to these topics and report resulting state on hearth/state/{device_id}.
type MQTTDriver struct {
	publisher Publisher
	topics    mqtt.Topics
}

// NewMQTTDriver creates a driver that publishes through the given client.
func NewMQTTDriver(publisher Publisher) *MQTTDriver {
	return &MQTTDriver{publisher: publisher}
}

// Send publishes the command envelope to the device's command topic.
//
// The context deadline is not enforced here; the MQTT client applies its
// own publish timeout. The context is checked for early cancellation so
// a cancelled dispatch does not publish at all.
func (d *MQTTDriver) Send(ctx context.Context, deviceType device.Type, deviceID string, command device.Command, args device.Args) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("sending %s to %s: %w", command, deviceID, ctx.Err())
	default:
	}

	envelope := CommandEnvelope{
		DeviceID:  deviceID,
		Command:   string(command),
		Args:      args,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshalling command envelope: %w", err)
	}

	topic := d.topics.DeviceCommand(string(deviceType), deviceID)
	if err := d.publisher.PublishEvent(topic, payload); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", command, topic, err)
	}

	return nil
}
