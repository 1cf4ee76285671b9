// Package schedule defines schedules (named action sequences bound to
// triggers), the fluent builder that assembles them, and their SQLite
// persistence.
//
// # Building
//
//	sched, err := schedule.NewBuilder("Good Night").
//	    At("0 23 * * *").
//	    AddAction("light-living-room", device.CmdTurnOff, nil).
//	    AddAction("lock-front-door", device.CmdLock, nil).
//	    Build()
//
// Build validates structure (trigger present, at least one action, cron
// parses) but deliberately not device existence. Device references are
// resolved at fire time by the scheduler, so schedules can be defined
// before their devices are registered.
//
// # Triggers
//
// Time triggers use standard five-field cron expressions evaluated in
// the configured timezone. Condition triggers compare one device state
// field against a value and fire on the false-to-true edge.
//
// Stock routines (morning, evening, night) live in directors.go; the
// scheduler package executes whatever this package describes.
package schedule
