package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/hearthd/hearth-core/internal/device"
)

// SentCommand records one command delivered through the MemoryDriver.
type SentCommand struct {
	DeviceType device.Type
	DeviceID   string
	Command    device.Command
	Args       device.Args
}

// MemoryDriver is an in-process device.Driver.
//
// It is the driver used when MQTT is disabled (standalone mode) and the
// workhorse of tests: it records every command and can inject failures
// per device.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type MemoryDriver struct {
	mu       sync.Mutex
	sent     []SentCommand
	failures map[string]error
}

// NewMemoryDriver creates an empty in-process driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		failures: make(map[string]error),
	}
}

// Send records the command, or returns the injected failure for the device.
func (d *MemoryDriver) Send(ctx context.Context, deviceType device.Type, deviceID string, command device.Command, args device.Args) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending %s to %s: %w", command, deviceID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err, ok := d.failures[deviceID]; ok {
		return err
	}

	d.sent = append(d.sent, SentCommand{
		DeviceType: deviceType,
		DeviceID:   deviceID,
		Command:    command,
		Args:       args.DeepCopy(),
	})
	return nil
}

// FailWith makes Send return err for the given device until cleared.
func (d *MemoryDriver) FailWith(deviceID string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, deviceID)
		return
	}
	d.failures[deviceID] = err
}

// Sent returns a snapshot of all recorded commands in delivery order.
func (d *MemoryDriver) Sent() []SentCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SentCommand, len(d.sent))
	copy(out, d.sent)
	return out
}

// SentTo returns the recorded commands for one device.
func (d *MemoryDriver) SentTo(deviceID string) []SentCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []SentCommand
	for _, c := range d.sent {
		if c.DeviceID == deviceID {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded commands and injected failures.
func (d *MemoryDriver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
	d.failures = make(map[string]error)
}
