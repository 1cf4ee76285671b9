package device

import (
	"context"
	"fmt"
	"sync"
)

// Driver delivers commands to the physical (or simulated) device.
//
// Implementations translate the canonical command vocabulary into a
// transport-specific payload (MQTT, in-memory test driver). A Driver
// instance is shared across devices; the device identity travels with
// each call.
type Driver interface {
	Send(ctx context.Context, deviceType Type, deviceID string, command Command, args Args) error
}

// Device is a controllable entity with a typed capability set.
//
// Apply validates the command against the capability set and arguments
// before touching the driver. On any error the device state is left
// exactly as it was; state mutation happens only after the driver
// accepts the command.
//
// All implementations in this package are safe for concurrent use.
type Device interface {
	ID() string
	Name() string
	Room() string
	Type() Type

	// Capabilities returns the commands this device accepts.
	Capabilities() []Command

	// Supports reports whether the command is in the capability set.
	Supports(cmd Command) bool

	// Apply executes a command against the device.
	//
	// Errors:
	//   - ErrUnsupportedCommand: command not in the capability set
	//   - ErrInvalidArgs: arguments missing, mistyped, or out of range
	//   - ErrCommandRejected: command not applicable in the current state
	//   - ErrSendFailed: the driver could not deliver the command
	Apply(ctx context.Context, cmd Command, args Args) error

	// State returns an isolated snapshot of the current device state.
	State() State

	// SetState replaces the device state from an external report.
	// Used when hydrating from storage and when a transport reports
	// state that changed outside a dispatch. Unknown fields are kept.
	SetState(s State)
}

// base carries the identity, state, and driver plumbing shared by all
// device implementations.
type base struct {
	id     string
	name   string
	room   string
	typ    Type
	caps   []Command
	driver Driver

	mu    sync.RWMutex
	state State
}

func newBase(cfg Config, typ Type, caps []Command, initial State, drv Driver) base {
	state := initial.DeepCopy()
	for k, v := range cfg.Defaults {
		if _, ok := state[k]; ok {
			state[k] = deepCopyValue(v)
		}
	}
	return base{
		id:     cfg.ID,
		name:   cfg.Name,
		room:   cfg.Room,
		typ:    typ,
		caps:   caps,
		driver: drv,
		state:  state,
	}
}

func (b *base) ID() string   { return b.id }
func (b *base) Name() string { return b.name }
func (b *base) Room() string { return b.room }
func (b *base) Type() Type   { return b.typ }

func (b *base) Capabilities() []Command {
	caps := make([]Command, len(b.caps))
	copy(caps, b.caps)
	return caps
}

func (b *base) Supports(cmd Command) bool {
	for _, c := range b.caps {
		if c == cmd {
			return true
		}
	}
	return false
}

func (b *base) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.DeepCopy()
}

func (b *base) SetState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range s {
		b.state[k] = deepCopyValue(v)
	}
}

// send delivers the command through the driver, wrapping failures so
// callers can check errors.Is(err, ErrSendFailed).
func (b *base) send(ctx context.Context, cmd Command, args Args) error {
	if b.driver == nil {
		return nil
	}
	if err := b.driver.Send(ctx, b.typ, b.id, cmd, args); err != nil {
		return fmt.Errorf("%w: %s on %s: %w", ErrSendFailed, cmd, b.id, err)
	}
	return nil
}

// mutate applies fn to the state under the write lock.
func (b *base) mutate(fn func(State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.state)
}

// stateBool reads a boolean state field under the read lock.
func (b *base) stateBool(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, _ := b.state[key].(bool)
	return v
}

// checkSupported returns ErrUnsupportedCommand for commands outside the
// capability set, naming the device and command.
func (b *base) checkSupported(cmd Command) error {
	if !b.Supports(cmd) {
		return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedCommand, b.id, cmd)
	}
	return nil
}
