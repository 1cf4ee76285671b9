// Package controller implements the central device and schedule
// registry of the Hearth core.
//
// The Controller is built by plain dependency injection: factory,
// driver, repositories, and logger are passed in at construction, and
// callers that need different wiring (tests, standalone mode) construct
// their own instance. There is deliberately no package-level singleton.
//
// The controller is the write path for everything: commands enter
// through Dispatch, transport state reports through ApplyReport, and
// both end in persisted state plus a fan-out to state listeners (the
// websocket hub, the InfluxDB recorder, the scheduler's condition
// evaluation). Schedule CRUD flows through the controller too, with
// observers notified so the scheduler can keep its triggers in sync.
package controller
