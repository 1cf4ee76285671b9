// Package scheduler executes schedules against the controller.
//
// The Executor is event driven on both edges. Time triggers ride a
// cron runner in the configured timezone; condition triggers are
// evaluated on device state change notifications, firing on the
// false-to-true transition of their comparison.
//
// A firing runs its actions strictly in order and keeps going when one
// fails; the outcome lands in a RunResult (completed, partial, or
// failed) recorded through the controller. Overlapping firings of the
// same schedule are dropped while different schedules run concurrently.
package scheduler
