package device

import (
	"context"
	"fmt"
)

// Lock is a door lock.
//
// State fields:
//   - locked (bool): whether the bolt is engaged
//
// LOCK and UNLOCK are idempotent. Applying LOCK to an already locked
// door succeeds without contacting the driver, so a schedule that locks
// every door is safe to run against doors in any state.
type Lock struct {
	base
}

// NewLock creates a lock from config. Locks start locked.
func NewLock(cfg Config, drv Driver) (Device, error) {
	return &Lock{
		base: newBase(cfg, TypeLock,
			[]Command{CmdLock, CmdUnlock},
			State{"locked": true},
			drv,
		),
	}, nil
}

// Apply executes a command against the lock.
func (l *Lock) Apply(ctx context.Context, cmd Command, args Args) error {
	if err := l.checkSupported(cmd); err != nil {
		return err
	}

	switch cmd {
	case CmdLock, CmdUnlock:
		want := cmd == CmdLock
		if l.stateBool("locked") == want {
			return nil // Already in the requested state
		}
		if err := l.send(ctx, cmd, args); err != nil {
			return err
		}
		l.mutate(func(s State) {
			s["locked"] = want
		})
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}
}
