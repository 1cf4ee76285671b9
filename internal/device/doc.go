// Package device defines the device abstraction at the heart of the
// Hearth core: typed devices (light, thermostat, camera, lock) with a
// shared command vocabulary, a factory for constructing them, and a
// repository for persisting their configuration and state.
//
// # Devices
//
// Every device implements the Device interface. A device owns its
// state and validates commands against its capability set before
// touching the driver:
//
//	light, _ := device.NewLight(device.Config{Name: "Living Room"}, drv)
//	err := light.Apply(ctx, device.CmdSetBrightness, device.Args{"brightness": 60})
//
// Apply is all-or-nothing. Validation failures and driver failures
// leave the state exactly as it was; the state mutates only after the
// driver accepts the command.
//
// # Factory
//
// The Factory maps device types to constructors. The four built-in
// types are registered by NewFactory; integrations can register more:
//
//	factory := device.NewFactory()
//	dev, err := factory.Create(cfg, drv)  // ErrUnknownType if unregistered
//
// # Drivers
//
// Devices never talk to a transport directly. They delegate delivery to
// a Driver, which the driver package implements for MQTT and for
// in-process simulation.
package device
