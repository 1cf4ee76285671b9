package driver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hearthd/hearth-core/internal/device"
)

// recordingPublisher captures published messages.
type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	fail     error
}

func (p *recordingPublisher) PublishEvent(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestMQTTDriver_Send(t *testing.T) {
	pub := &recordingPublisher{}
	drv := NewMQTTDriver(pub)

	err := drv.Send(context.Background(), device.TypeLight, "light-living-room",
		device.CmdSetBrightness, device.Args{"brightness": 60})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(pub.topics) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.topics))
	}
	if pub.topics[0] != "hearth/command/light/light-living-room" {
		t.Errorf("topic = %q, want command topic", pub.topics[0])
	}

	var envelope CommandEnvelope
	if err := json.Unmarshal(pub.payloads[0], &envelope); err != nil {
		t.Fatalf("unmarshalling envelope: %v", err)
	}
	if envelope.Command != "SET_BRIGHTNESS" {
		t.Errorf("Command = %q, want SET_BRIGHTNESS", envelope.Command)
	}
	if envelope.DeviceID != "light-living-room" {
		t.Errorf("DeviceID = %q, want light-living-room", envelope.DeviceID)
	}
	if envelope.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestMQTTDriver_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{fail: errors.New("broker unavailable")}
	drv := NewMQTTDriver(pub)

	err := drv.Send(context.Background(), device.TypeLock, "lock-1", device.CmdLock, nil)
	if err == nil {
		t.Error("Send() should propagate publish failures")
	}
}

func TestMQTTDriver_CancelledContext(t *testing.T) {
	pub := &recordingPublisher{}
	drv := NewMQTTDriver(pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := drv.Send(ctx, device.TypeLight, "light-1", device.CmdTurnOn, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
	if len(pub.topics) != 0 {
		t.Error("cancelled send must not publish")
	}
}

func TestMemoryDriver_RecordsAndFails(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	if err := drv.Send(ctx, device.TypeLight, "light-1", device.CmdTurnOn, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	injected := errors.New("device offline")
	drv.FailWith("light-2", injected)
	if err := drv.Send(ctx, device.TypeLight, "light-2", device.CmdTurnOn, nil); !errors.Is(err, injected) {
		t.Errorf("Send() error = %v, want injected failure", err)
	}

	drv.FailWith("light-2", nil)
	if err := drv.Send(ctx, device.TypeLight, "light-2", device.CmdTurnOn, nil); err != nil {
		t.Errorf("Send() after clearing failure: error = %v", err)
	}

	if got := len(drv.Sent()); got != 2 {
		t.Errorf("Sent() returned %d commands, want 2", got)
	}
	if got := len(drv.SentTo("light-1")); got != 1 {
		t.Errorf("SentTo(light-1) returned %d commands, want 1", got)
	}
}

// recordingReporter captures state reports.
type recordingReporter struct {
	mu      sync.Mutex
	reports map[string]device.State
	fail    error
}

func (r *recordingReporter) ApplyReport(_ context.Context, deviceID string, state device.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if r.reports == nil {
		r.reports = make(map[string]device.State)
	}
	r.reports[deviceID] = state
	return nil
}

func TestStateIngest_HandleReport(t *testing.T) {
	reporter := &recordingReporter{}
	ingest := NewStateIngest(reporter, nil)

	payload := []byte(`{"on": true, "brightness": 42}`)
	if err := ingest.handleReport("hearth/state/light-1", payload); err != nil {
		t.Fatalf("handleReport() error = %v", err)
	}

	state, ok := reporter.reports["light-1"]
	if !ok {
		t.Fatal("report was not forwarded")
	}
	if state["brightness"] != float64(42) {
		t.Errorf("brightness = %v, want 42", state["brightness"])
	}
}

func TestStateIngest_BadTopicAndPayload(t *testing.T) {
	reporter := &recordingReporter{}
	ingest := NewStateIngest(reporter, nil)

	if err := ingest.handleReport("hearth/command/light/x", []byte(`{}`)); err == nil {
		t.Error("non-state topic should return an error")
	}
	if err := ingest.handleReport("hearth/state/light-1", []byte(`not json`)); err == nil {
		t.Error("malformed payload should return an error")
	}
	if len(reporter.reports) != 0 {
		t.Error("no reports should have been forwarded")
	}
}

func TestStateIngest_ReporterErrorIsSwallowed(t *testing.T) {
	reporter := &recordingReporter{fail: errors.New("unknown device")}
	ingest := NewStateIngest(reporter, nil)

	// Reports for unknown devices are dropped, not retried; the handler
	// must not surface the error to the MQTT client.
	if err := ingest.handleReport("hearth/state/ghost", []byte(`{"on":true}`)); err != nil {
		t.Errorf("handleReport() error = %v, want nil", err)
	}
}
