package device

import (
	"context"
	"fmt"
)

// Target temperature range in degrees Celsius.
const (
	minTargetTemperature = 5.0
	maxTargetTemperature = 35.0

	defaultTargetTemperature = 20.0
)

// Thermostat is a heating/cooling controller.
//
// State fields:
//   - on (bool): whether climate control is active
//   - target_temperature (float64): the setpoint in degrees Celsius
//   - current_temperature (float64): last reported ambient temperature
type Thermostat struct {
	base
}

// NewThermostat creates a thermostat from config.
func NewThermostat(cfg Config, drv Driver) (Device, error) {
	return &Thermostat{
		base: newBase(cfg, TypeThermostat,
			[]Command{CmdTurnOn, CmdTurnOff, CmdSetTemperature},
			State{
				"on":                  false,
				"target_temperature":  defaultTargetTemperature,
				"current_temperature": defaultTargetTemperature,
			},
			drv,
		),
	}, nil
}

// Apply executes a command against the thermostat.
func (t *Thermostat) Apply(ctx context.Context, cmd Command, args Args) error {
	if err := t.checkSupported(cmd); err != nil {
		return err
	}

	switch cmd {
	case CmdTurnOn, CmdTurnOff:
		if err := t.send(ctx, cmd, args); err != nil {
			return err
		}
		t.mutate(func(s State) {
			s["on"] = cmd == CmdTurnOn
		})
		return nil

	case CmdSetTemperature:
		target, ok := numericArg(args, "temperature")
		if !ok {
			return fmt.Errorf("%w: SET_TEMPERATURE requires numeric %q", ErrInvalidArgs, "temperature")
		}
		if target < minTargetTemperature || target > maxTargetTemperature {
			return fmt.Errorf("%w: temperature %v out of range [%.0f, %.0f]",
				ErrInvalidArgs, target, minTargetTemperature, maxTargetTemperature)
		}
		if err := t.send(ctx, cmd, args); err != nil {
			return err
		}
		t.mutate(func(s State) {
			s["target_temperature"] = target
		})
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}
}
