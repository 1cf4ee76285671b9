package device

import (
	"context"
	"fmt"
)

// Brightness range for lights.
const (
	minBrightness = 0
	maxBrightness = 100
)

// Light is a dimmable light.
//
// State fields:
//   - on (bool): whether the light is powered
//   - brightness (float64): dim level 0-100
type Light struct {
	base
}

// NewLight creates a light from config. The light starts off at full
// brightness unless config defaults say otherwise.
func NewLight(cfg Config, drv Driver) (Device, error) {
	return &Light{
		base: newBase(cfg, TypeLight,
			[]Command{CmdTurnOn, CmdTurnOff, CmdSetBrightness},
			State{"on": false, "brightness": float64(maxBrightness)},
			drv,
		),
	}, nil
}

// Apply executes a command against the light.
func (l *Light) Apply(ctx context.Context, cmd Command, args Args) error {
	if err := l.checkSupported(cmd); err != nil {
		return err
	}

	switch cmd {
	case CmdTurnOn, CmdTurnOff:
		if err := l.send(ctx, cmd, args); err != nil {
			return err
		}
		l.mutate(func(s State) {
			s["on"] = cmd == CmdTurnOn
		})
		return nil

	case CmdSetBrightness:
		level, ok := numericArg(args, "brightness")
		if !ok {
			return fmt.Errorf("%w: SET_BRIGHTNESS requires numeric %q", ErrInvalidArgs, "brightness")
		}
		if level < minBrightness || level > maxBrightness {
			return fmt.Errorf("%w: brightness %v out of range [%d, %d]", ErrInvalidArgs, level, minBrightness, maxBrightness)
		}
		if err := l.send(ctx, cmd, args); err != nil {
			return err
		}
		l.mutate(func(s State) {
			s["brightness"] = level
		})
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}
}
