package device

import (
	"context"
	"fmt"
)

// Camera is a security camera with recording control.
//
// State fields:
//   - on (bool): whether the camera is powered
//   - recording (bool): whether footage is being recorded
//   - motion_detected (bool): last reported motion sensor state
type Camera struct {
	base
}

// NewCamera creates a camera from config.
func NewCamera(cfg Config, drv Driver) (Device, error) {
	return &Camera{
		base: newBase(cfg, TypeCamera,
			[]Command{CmdTurnOn, CmdTurnOff, CmdStartRecord, CmdStopRecord},
			State{"on": false, "recording": false, "motion_detected": false},
			drv,
		),
	}, nil
}

// Apply executes a command against the camera.
//
// Recording control requires the camera to be powered on. Turning the
// camera off stops any active recording.
func (c *Camera) Apply(ctx context.Context, cmd Command, args Args) error {
	if err := c.checkSupported(cmd); err != nil {
		return err
	}

	switch cmd {
	case CmdTurnOn:
		if err := c.send(ctx, cmd, args); err != nil {
			return err
		}
		c.mutate(func(s State) {
			s["on"] = true
		})
		return nil

	case CmdTurnOff:
		if err := c.send(ctx, cmd, args); err != nil {
			return err
		}
		c.mutate(func(s State) {
			s["on"] = false
			s["recording"] = false
		})
		return nil

	case CmdStartRecord:
		if !c.stateBool("on") {
			return fmt.Errorf("%w: camera %s is powered off", ErrCommandRejected, c.id)
		}
		if err := c.send(ctx, cmd, args); err != nil {
			return err
		}
		c.mutate(func(s State) {
			s["recording"] = true
		})
		return nil

	case CmdStopRecord:
		if err := c.send(ctx, cmd, args); err != nil {
			return err
		}
		c.mutate(func(s State) {
			s["recording"] = false
		})
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}
}
