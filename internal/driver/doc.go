// Package driver implements the device.Driver transport boundary.
//
// Two drivers are provided. MQTTDriver publishes command envelopes to
// the hearth/command/... topics for external device transports to
// consume. MemoryDriver keeps everything in process and is used in
// standalone mode and in tests.
//
// StateIngest is the return path: it subscribes to device state reports
// on hearth/state/+ and merges them into the controller's live devices.
package driver
