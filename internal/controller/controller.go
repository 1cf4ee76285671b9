package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/schedule"
)

// Logger is the optional logging interface for the controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StateListener receives a state snapshot after every accepted change.
// Listeners are called synchronously; keep them fast.
type StateListener func(deviceID string, state device.State)

// ScheduleObserver is notified of schedule lifecycle changes.
// Implemented by the scheduler so it can arm, disarm, and re-arm
// triggers as schedules change.
type ScheduleObserver interface {
	ScheduleAdded(sched *schedule.Schedule)
	ScheduleUpdated(sched *schedule.Schedule)
	ScheduleRemoved(id string)
}

// Controller is the central registry for devices and schedules.
//
// It owns the live device instances, dispatches commands to them,
// persists configuration and state, and fans out state change
// notifications. Everything it depends on (factory, driver,
// repositories, logger) is injected; there is no package-level
// instance.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Dispatch holds no lock
//     while the device talks to its driver, so slow devices do not
//     block the registry.
type Controller struct {
	factory    *device.Factory
	driver     device.Driver
	deviceRepo device.Repository
	schedRepo  schedule.Repository
	logger     Logger

	mu      sync.RWMutex
	devices map[string]device.Device

	schedMu   sync.RWMutex
	schedules map[string]*schedule.Schedule

	subMu     sync.RWMutex
	listeners []StateListener
	observers []ScheduleObserver
}

// New creates a controller with its dependencies injected.
// Pass nil repositories to run without persistence (tests, ephemeral mode).
func New(factory *device.Factory, drv device.Driver, deviceRepo device.Repository, schedRepo schedule.Repository) *Controller {
	return &Controller{
		factory:    factory,
		driver:     drv,
		deviceRepo: deviceRepo,
		schedRepo:  schedRepo,
		logger:     noopLogger{},
		devices:    make(map[string]device.Device),
		schedules:  make(map[string]*schedule.Schedule),
	}
}

// SetLogger attaches a logger. Safe to call before any traffic.
func (c *Controller) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Hydrate rebuilds live devices and the schedule cache from storage.
// Call once at startup, after migrations and before serving traffic.
func (c *Controller) Hydrate(ctx context.Context) error {
	if c.deviceRepo != nil {
		records, err := c.deviceRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("loading devices: %w", err)
		}
		for _, rec := range records {
			dev, err := c.factory.Create(device.Config{
				ID:   rec.ID,
				Name: rec.Name,
				Room: rec.Room,
				Type: rec.Type,
			}, c.driver)
			if err != nil {
				return fmt.Errorf("rebuilding device %s: %w", rec.ID, err)
			}
			dev.SetState(rec.State)

			c.mu.Lock()
			c.devices[rec.ID] = dev
			c.mu.Unlock()
		}
		c.logger.Info("devices hydrated", "count", len(records))
	}

	if c.schedRepo != nil {
		schedules, err := c.schedRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("loading schedules: %w", err)
		}
		c.schedMu.Lock()
		for i := range schedules {
			sched := schedules[i]
			c.schedules[sched.ID] = &sched
		}
		c.schedMu.Unlock()
		c.logger.Info("schedules hydrated", "count", len(schedules))
	}

	return nil
}

// =============================================================================
// Devices
// =============================================================================

// RegisterDevice creates a device from config and adds it to the registry.
//
// Errors:
//   - device.ErrUnknownType: no constructor for cfg.Type
//   - device.ErrInvalidConfig: config validation failed
//   - device.ErrDuplicateID: the ID is already registered
func (c *Controller) RegisterDevice(ctx context.Context, cfg device.Config) (device.Device, error) {
	dev, err := c.factory.Create(cfg, c.driver)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.devices[dev.ID()]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", device.ErrDuplicateID, dev.ID())
	}
	c.devices[dev.ID()] = dev
	c.mu.Unlock()

	if c.deviceRepo != nil {
		rec := &device.Record{
			ID:    dev.ID(),
			Type:  dev.Type(),
			Name:  dev.Name(),
			Room:  dev.Room(),
			State: dev.State(),
		}
		if err := c.deviceRepo.Create(ctx, rec); err != nil {
			// Roll back the registration so memory and storage agree.
			c.mu.Lock()
			delete(c.devices, dev.ID())
			c.mu.Unlock()
			return nil, fmt.Errorf("persisting device %s: %w", dev.ID(), err)
		}
	}

	c.logger.Info("device registered",
		"device_id", dev.ID(),
		"type", dev.Type(),
		"room", dev.Room(),
	)
	return dev, nil
}

// UnregisterDevice removes a device from the registry and storage.
// Schedules referencing the device are left alone; their actions will
// fail at fire time with device.ErrNotFound, which is the late-binding
// contract.
func (c *Controller) UnregisterDevice(ctx context.Context, id string) error {
	c.mu.Lock()
	_, exists := c.devices[id]
	if exists {
		delete(c.devices, id)
	}
	c.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}

	if c.deviceRepo != nil {
		if err := c.deviceRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting device %s: %w", id, err)
		}
	}

	c.logger.Info("device unregistered", "device_id", id)
	return nil
}

// GetDevice returns the live device with the given ID.
func (c *Controller) GetDevice(id string) (device.Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dev, ok := c.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	return dev, nil
}

// ListDevices returns a snapshot of all registered devices.
func (c *Controller) ListDevices() []device.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summaries := make([]device.Summary, 0, len(c.devices))
	for _, dev := range c.devices {
		summaries = append(summaries, device.Summary{
			ID:    dev.ID(),
			Name:  dev.Name(),
			Room:  dev.Room(),
			Type:  dev.Type(),
			State: dev.State(),
		})
	}
	return summaries
}

// Dispatch sends a command to a device and returns the resulting state.
//
// The device lookup is the only part that holds the registry lock; the
// driver round trip and persistence happen outside it. On success the
// new state is persisted and state listeners are notified.
func (c *Controller) Dispatch(ctx context.Context, deviceID string, cmd device.Command, args device.Args) (device.State, error) {
	dev, err := c.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}

	if err := dev.Apply(ctx, cmd, args); err != nil {
		return nil, err
	}

	state := dev.State()
	c.persistState(ctx, deviceID, state)
	c.notifyState(deviceID, state)

	c.logger.Debug("command dispatched",
		"device_id", deviceID,
		"command", cmd,
	)
	return state, nil
}

// ApplyReport merges externally reported state into a device.
// Used by the MQTT state ingest for sensor fields (current temperature,
// motion) that change without a dispatch.
func (c *Controller) ApplyReport(ctx context.Context, deviceID string, state device.State) error {
	dev, err := c.GetDevice(deviceID)
	if err != nil {
		return err
	}

	dev.SetState(state)

	merged := dev.State()
	c.persistState(ctx, deviceID, merged)
	c.notifyState(deviceID, merged)
	return nil
}

// SubscribeState registers a listener for device state changes.
// Listeners cannot be removed; subscribe once at startup.
func (c *Controller) SubscribeState(listener StateListener) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// persistState writes the state snapshot through the repository.
// Persistence failures are logged, not propagated; the in-memory state
// is already authoritative and the next change retries the write.
func (c *Controller) persistState(ctx context.Context, deviceID string, state device.State) {
	if c.deviceRepo == nil {
		return
	}
	if err := c.deviceRepo.UpdateState(ctx, deviceID, state); err != nil {
		c.logger.Warn("persisting device state failed",
			"device_id", deviceID,
			"error", err,
		)
	}
}

// notifyState delivers a state snapshot to all listeners.
func (c *Controller) notifyState(deviceID string, state device.State) {
	c.subMu.RLock()
	listeners := make([]StateListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.subMu.RUnlock()

	for _, listener := range listeners {
		listener(deviceID, state.DeepCopy())
	}
}

// =============================================================================
// Schedules
// =============================================================================

// AddSchedule validates, persists, and caches a schedule, then notifies
// observers. The schedule keeps whatever Enabled value it carries;
// schedules from the builder start disabled.
func (c *Controller) AddSchedule(ctx context.Context, sched *schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}

	c.schedMu.Lock()
	if _, exists := c.schedules[sched.ID]; exists {
		c.schedMu.Unlock()
		return fmt.Errorf("%w: %s", schedule.ErrDuplicateID, sched.ID)
	}
	c.schedules[sched.ID] = sched.DeepCopy()
	c.schedMu.Unlock()

	if c.schedRepo != nil {
		if err := c.schedRepo.Create(ctx, sched); err != nil {
			c.schedMu.Lock()
			delete(c.schedules, sched.ID)
			c.schedMu.Unlock()
			return fmt.Errorf("persisting schedule %s: %w", sched.ID, err)
		}
	}

	c.notifyScheduleAdded(sched)
	c.logger.Info("schedule added",
		"schedule_id", sched.ID,
		"name", sched.Name,
		"trigger", sched.Trigger.Kind,
	)
	return nil
}

// RemoveSchedule deletes a schedule and its run history.
func (c *Controller) RemoveSchedule(ctx context.Context, id string) error {
	c.schedMu.Lock()
	_, exists := c.schedules[id]
	if exists {
		delete(c.schedules, id)
	}
	c.schedMu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", schedule.ErrNotFound, id)
	}

	if c.schedRepo != nil {
		if err := c.schedRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting schedule %s: %w", id, err)
		}
	}

	c.notifyScheduleRemoved(id)
	c.logger.Info("schedule removed", "schedule_id", id)
	return nil
}

// GetSchedule returns an isolated copy of a schedule.
func (c *Controller) GetSchedule(id string) (*schedule.Schedule, error) {
	c.schedMu.RLock()
	defer c.schedMu.RUnlock()

	sched, ok := c.schedules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schedule.ErrNotFound, id)
	}
	return sched.DeepCopy(), nil
}

// ListSchedules returns isolated copies of all schedules.
func (c *Controller) ListSchedules() []schedule.Schedule {
	c.schedMu.RLock()
	defer c.schedMu.RUnlock()

	out := make([]schedule.Schedule, 0, len(c.schedules))
	for _, sched := range c.schedules {
		out = append(out, *sched.DeepCopy())
	}
	return out
}

// EnableSchedule arms a schedule. The change takes effect from the next
// trigger evaluation.
func (c *Controller) EnableSchedule(ctx context.Context, id string) error {
	return c.setScheduleEnabled(ctx, id, true)
}

// DisableSchedule disarms a schedule. A run already in progress
// completes; the schedule simply stops firing from the next evaluation.
func (c *Controller) DisableSchedule(ctx context.Context, id string) error {
	return c.setScheduleEnabled(ctx, id, false)
}

func (c *Controller) setScheduleEnabled(ctx context.Context, id string, enabled bool) error {
	c.schedMu.Lock()
	sched, ok := c.schedules[id]
	if !ok {
		c.schedMu.Unlock()
		return fmt.Errorf("%w: %s", schedule.ErrNotFound, id)
	}
	sched.Enabled = enabled
	updated := sched.DeepCopy()
	c.schedMu.Unlock()

	if c.schedRepo != nil {
		if err := c.schedRepo.SetEnabled(ctx, id, enabled); err != nil {
			return fmt.Errorf("persisting enabled flag for %s: %w", id, err)
		}
	}

	c.notifyScheduleUpdated(updated)
	c.logger.Info("schedule toggled", "schedule_id", id, "enabled", enabled)
	return nil
}

// RecordRun persists a run result. Called by the scheduler after each
// firing; failures are logged, never propagated into the run path.
func (c *Controller) RecordRun(ctx context.Context, run *schedule.RunResult) {
	if c.schedRepo == nil {
		return
	}
	if err := c.schedRepo.SaveRun(ctx, run); err != nil {
		c.logger.Warn("recording schedule run failed",
			"schedule_id", run.ScheduleID,
			"error", err,
		)
	}
}

// ListRuns returns recent run history for a schedule, newest first.
func (c *Controller) ListRuns(ctx context.Context, scheduleID string, limit int) ([]schedule.RunResult, error) {
	if _, err := c.GetSchedule(scheduleID); err != nil {
		return nil, err
	}
	if c.schedRepo == nil {
		return nil, nil
	}
	return c.schedRepo.ListRuns(ctx, scheduleID, limit)
}

// AddScheduleObserver registers an observer for schedule lifecycle events.
func (c *Controller) AddScheduleObserver(obs ScheduleObserver) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.observers = append(c.observers, obs)
}

func (c *Controller) notifyScheduleAdded(sched *schedule.Schedule) {
	for _, obs := range c.snapshotObservers() {
		obs.ScheduleAdded(sched.DeepCopy())
	}
}

func (c *Controller) notifyScheduleUpdated(sched *schedule.Schedule) {
	for _, obs := range c.snapshotObservers() {
		obs.ScheduleUpdated(sched.DeepCopy())
	}
}

func (c *Controller) notifyScheduleRemoved(id string) {
	for _, obs := range c.snapshotObservers() {
		obs.ScheduleRemoved(id)
	}
}

func (c *Controller) snapshotObservers() []ScheduleObserver {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	observers := make([]ScheduleObserver, len(c.observers))
	copy(observers, c.observers)
	return observers
}
