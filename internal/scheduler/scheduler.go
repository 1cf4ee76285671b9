package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/schedule"
)

// Controller is the subset of the controller the executor needs.
// Narrow by design: the executor dispatches actions, self-disables
// one-shot schedules, and records run history.
type Controller interface {
	Dispatch(ctx context.Context, deviceID string, cmd device.Command, args device.Args) (device.State, error)
	DisableSchedule(ctx context.Context, id string) error
	RecordRun(ctx context.Context, run *schedule.RunResult)
}

// Logger is the optional logging interface for the executor.
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

// Config holds executor settings.
type Config struct {
	// Location is the timezone cron expressions are evaluated in.
	Location *time.Location

	// DispatchTimeout bounds each action's dispatch.
	DispatchTimeout time.Duration
}

// armed is the executor's view of one enabled schedule.
type armed struct {
	sched *schedule.Schedule

	// entryID is set for time triggers.
	entryID cron.EntryID

	// lastMatch tracks the previous condition result for edge detection.
	// Condition triggers fire on the false-to-true transition only.
	lastMatch bool

	// firing guards against overlapping runs of the same schedule.
	firing atomic.Bool
}

// Executor runs schedules.
//
// Time triggers are driven by a cron runner in the configured timezone.
// Condition triggers are driven by device state change notifications
// fed in through OnStateChange (wired to the controller's state
// subscription in main).
//
// Firing semantics:
//   - Actions run sequentially in order; a failed action is recorded
//     and the run continues with the next one.
//   - Device references resolve at fire time. A missing device fails
//     that action, nothing else.
//   - Overlapping firings of the same schedule are dropped; the
//     in-progress run finishes undisturbed. Different schedules fire
//     concurrently.
//   - Disabling takes effect at the next trigger evaluation; a run
//     already started completes.
//
// The executor learns about schedules through the ScheduleObserver
// callbacks (ScheduleAdded/Updated/Removed), which the controller
// invokes on every schedule change.
type Executor struct {
	controller Controller
	cfg        Config
	logger     Logger
	cron       *cron.Cron

	mu    sync.Mutex
	byID  map[string]*armed
	onRun func(run *schedule.RunResult)

	// running tracks in-flight fires for clean shutdown.
	running sync.WaitGroup
}

// New creates an executor. Call Start to begin evaluating time triggers.
func New(controller Controller, cfg Config) *Executor {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 10 * time.Second
	}
	return &Executor{
		controller: controller,
		cfg:        cfg,
		logger:     noopLogger{},
		cron:       cron.New(cron.WithLocation(cfg.Location)),
		byID:       make(map[string]*armed),
	}
}

// SetLogger attaches a logger. Safe to call before Start.
func (e *Executor) SetLogger(logger Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// SetOnRun registers a callback invoked after every completed run.
// Used to publish run events (MQTT, InfluxDB) without coupling the
// executor to those transports. Set before Start.
func (e *Executor) SetOnRun(fn func(run *schedule.RunResult)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRun = fn
}

// Start begins evaluating time triggers.
func (e *Executor) Start() {
	e.cron.Start()
	e.logger.Info("scheduler started", "timezone", e.cfg.Location.String())
}

// Stop halts trigger evaluation and waits for in-flight runs to finish.
func (e *Executor) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
	e.running.Wait()
	e.logger.Info("scheduler stopped")
}

// =============================================================================
// ScheduleObserver
// =============================================================================

// ScheduleAdded arms the schedule if it is enabled.
func (e *Executor) ScheduleAdded(sched *schedule.Schedule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.armLocked(sched)
}

// ScheduleUpdated re-arms the schedule with its new definition.
// Covers enable, disable, and edits alike: the old arming is torn down
// and the new state decides whether it comes back.
func (e *Executor) ScheduleUpdated(sched *schedule.Schedule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarmLocked(sched.ID)
	e.armLocked(sched)
}

// ScheduleRemoved disarms and forgets the schedule.
func (e *Executor) ScheduleRemoved(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarmLocked(id)
}

// armLocked registers triggers for an enabled schedule. Caller holds e.mu.
func (e *Executor) armLocked(sched *schedule.Schedule) {
	if !sched.Enabled {
		return
	}

	a := &armed{sched: sched.DeepCopy()}

	if sched.Trigger.Kind == schedule.TriggerTime {
		id := sched.ID
		entryID, err := e.cron.AddFunc(sched.Trigger.Cron, func() {
			e.fireByID(id)
		})
		if err != nil {
			// Build validated the expression; reaching this means the
			// stored schedule is corrupt. Log and skip.
			e.logger.Error("arming schedule failed",
				"schedule_id", sched.ID,
				"cron", sched.Trigger.Cron,
				"error", err,
			)
			return
		}
		a.entryID = entryID
	}

	e.byID[sched.ID] = a
	e.logger.Debug("schedule armed",
		"schedule_id", sched.ID,
		"trigger", sched.Trigger.Kind,
	)
}

// disarmLocked removes a schedule's triggers. Caller holds e.mu.
func (e *Executor) disarmLocked(id string) {
	a, ok := e.byID[id]
	if !ok {
		return
	}
	if a.entryID != 0 {
		e.cron.Remove(a.entryID)
	}
	delete(e.byID, id)
	e.logger.Debug("schedule disarmed", "schedule_id", id)
}

// =============================================================================
// Triggers
// =============================================================================

// fireByID resolves the armed schedule and fires it in a tracked goroutine.
func (e *Executor) fireByID(id string) {
	e.mu.Lock()
	a, ok := e.byID[id]
	e.mu.Unlock()
	if !ok {
		return // Disarmed between trigger and evaluation
	}

	e.running.Add(1)
	go func() {
		defer e.running.Done()
		e.fire(a)
	}()
}

// OnStateChange evaluates condition triggers against a state change.
// Wire this to the controller's state subscription. Each armed
// condition schedule watching this device fires when its comparison
// transitions from false to true.
func (e *Executor) OnStateChange(deviceID string, state device.State) {
	var due []*armed

	e.mu.Lock()
	for _, a := range e.byID {
		cond := a.sched.Trigger.Condition
		if a.sched.Trigger.Kind != schedule.TriggerCondition || cond == nil {
			continue
		}
		if cond.DeviceID != deviceID {
			continue
		}

		match := evaluate(cond, state)
		if match && !a.lastMatch {
			due = append(due, a)
		}
		a.lastMatch = match
	}
	e.mu.Unlock()

	for _, a := range due {
		e.running.Add(1)
		go func(a *armed) {
			defer e.running.Done()
			e.fire(a)
		}(a)
	}
}

// =============================================================================
// Firing
// =============================================================================

// fire runs all actions of one schedule sequentially.
func (e *Executor) fire(a *armed) {
	// Drop overlapping firings of the same schedule.
	if !a.firing.CompareAndSwap(false, true) {
		e.logger.Warn("dropping overlapping firing",
			"schedule_id", a.sched.ID,
		)
		return
	}
	defer a.firing.Store(false)

	sched := a.sched
	run := &schedule.RunResult{
		ID:           uuid.New().String(),
		ScheduleID:   sched.ID,
		StartedAt:    time.Now().UTC(),
		ActionsTotal: len(sched.Actions),
	}

	e.logger.Info("schedule firing",
		"schedule_id", sched.ID,
		"name", sched.Name,
		"actions", len(sched.Actions),
	)

	for i, action := range sched.Actions {
		if err := e.dispatchAction(action); err != nil {
			run.ActionsFailed++
			run.Failures = append(run.Failures, schedule.ActionFailure{
				Index:    i,
				DeviceID: action.DeviceID,
				Command:  action.Command,
				Error:    err.Error(),
			})
			e.logger.Warn("schedule action failed",
				"schedule_id", sched.ID,
				"device_id", action.DeviceID,
				"command", action.Command,
				"error", err,
			)
			// Continue with the remaining actions.
		}
	}

	run.CompletedAt = time.Now().UTC()
	switch {
	case run.ActionsFailed == 0:
		run.Status = schedule.RunCompleted
	case run.ActionsFailed == run.ActionsTotal:
		run.Status = schedule.RunFailed
	default:
		run.Status = schedule.RunPartial
	}

	e.controller.RecordRun(context.Background(), run)

	e.mu.Lock()
	onRun := e.onRun
	e.mu.Unlock()
	if onRun != nil {
		onRun(run)
	}

	if sched.OneShot {
		if err := e.controller.DisableSchedule(context.Background(), sched.ID); err != nil {
			e.logger.Warn("disabling one-shot schedule failed",
				"schedule_id", sched.ID,
				"error", err,
			)
		}
	}

	e.logger.Info("schedule run finished",
		"schedule_id", sched.ID,
		"status", run.Status,
		"failed", run.ActionsFailed,
	)
}

// dispatchAction dispatches one action with the configured timeout.
func (e *Executor) dispatchAction(action schedule.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.DispatchTimeout)
	defer cancel()

	_, err := e.controller.Dispatch(ctx, action.DeviceID, action.Command, action.Args)
	return err
}
