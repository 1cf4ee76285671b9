package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/infrastructure/mqtt"
)

// Reporter receives state reported by device transports.
// Implemented by the controller.
type Reporter interface {
	ApplyReport(ctx context.Context, deviceID string, state device.State) error
}

// Subscriber is the subset of the MQTT client the ingest needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger is the optional logging interface for the ingest.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// StateIngest feeds device state reports from MQTT into the controller.
//
// Transports publish JSON state documents to hearth/state/{device_id}.
// The ingest parses each report and hands it to the Reporter, which
// merges it into the live device and persists it. Reports for unknown
// devices are logged and dropped; a transport may report before its
// device is registered.
type StateIngest struct {
	reporter Reporter
	logger   Logger
	topics   mqtt.Topics
}

// NewStateIngest creates an ingest feeding the given reporter.
func NewStateIngest(reporter Reporter, logger Logger) *StateIngest {
	if logger == nil {
		logger = noopLogger{}
	}
	return &StateIngest{
		reporter: reporter,
		logger:   logger,
	}
}

// Start subscribes to all device state report topics.
func (si *StateIngest) Start(sub Subscriber, qos byte) error {
	topic := si.topics.AllDeviceStateReports()
	if err := sub.Subscribe(topic, qos, si.handleReport); err != nil {
		return fmt.Errorf("subscribing to state reports: %w", err)
	}
	return nil
}

// handleReport parses one state report and forwards it to the reporter.
func (si *StateIngest) handleReport(topic string, payload []byte) error {
	deviceID := mqtt.DeviceIDFromStateTopic(topic)
	if deviceID == "" {
		return fmt.Errorf("ignoring state report on unexpected topic %q", topic)
	}

	var state device.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("parsing state report for %s: %w", deviceID, err)
	}

	if err := si.reporter.ApplyReport(context.Background(), deviceID, state); err != nil {
		si.logger.Warn("dropping state report",
			"device_id", deviceID,
			"error", err,
		)
		return nil
	}

	si.logger.Debug("state report applied", "device_id", deviceID)
	return nil
}
