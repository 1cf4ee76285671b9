package schedule

import "github.com/hearthd/hearth-core/internal/device"

// Directors assemble the stock household routines from device IDs.
// They encode the common build recipes so callers don't repeat the
// builder choreography for every site.

// RoutineDevices names the devices the stock routines act on.
// Any slice may be empty; the director skips what it isn't given.
type RoutineDevices struct {
	Lights      []string
	Thermostats []string
	Cameras     []string
	Locks       []string
}

// MorningRoutine wakes the house at 07:00: lights on at full
// brightness, heating on at a comfortable setpoint, cameras off duty.
func MorningRoutine(devices RoutineDevices) (*Schedule, error) {
	b := NewBuilder("Morning Routine").At("0 7 * * *")

	for _, id := range devices.Lights {
		b.AddAction(id, device.CmdTurnOn, nil)
		b.AddAction(id, device.CmdSetBrightness, device.Args{"brightness": 100})
	}
	for _, id := range devices.Thermostats {
		b.AddAction(id, device.CmdTurnOn, nil)
		b.AddAction(id, device.CmdSetTemperature, device.Args{"temperature": 21.0})
	}
	for _, id := range devices.Cameras {
		b.AddAction(id, device.CmdStopRecord, nil)
	}
	for _, id := range devices.Locks {
		b.AddAction(id, device.CmdUnlock, nil)
	}

	return b.Build()
}

// EveningRoutine settles the house at 18:00: lights dimmed, heating
// eased down.
func EveningRoutine(devices RoutineDevices) (*Schedule, error) {
	b := NewBuilder("Evening Routine").At("0 18 * * *")

	for _, id := range devices.Lights {
		b.AddAction(id, device.CmdTurnOn, nil)
		b.AddAction(id, device.CmdSetBrightness, device.Args{"brightness": 40})
	}
	for _, id := range devices.Thermostats {
		b.AddAction(id, device.CmdSetTemperature, device.Args{"temperature": 19.0})
	}

	return b.Build()
}

// NightRoutine secures the house at 23:00: lights off, doors locked,
// cameras recording, heating turned down.
func NightRoutine(devices RoutineDevices) (*Schedule, error) {
	b := NewBuilder("Night Routine").At("0 23 * * *")

	for _, id := range devices.Lights {
		b.AddAction(id, device.CmdTurnOff, nil)
	}
	for _, id := range devices.Locks {
		b.AddAction(id, device.CmdLock, nil)
	}
	for _, id := range devices.Cameras {
		b.AddAction(id, device.CmdTurnOn, nil)
		b.AddAction(id, device.CmdStartRecord, nil)
	}
	for _, id := range devices.Thermostats {
		b.AddAction(id, device.CmdSetTemperature, device.Args{"temperature": 16.0})
	}

	return b.Build()
}
