package schedule

import (
	"time"

	"github.com/hearthd/hearth-core/internal/device"
)

// Action is one device command within a schedule.
//
// Actions reference devices by ID only. The reference is resolved when
// the schedule fires, not when it is built, so a schedule may name a
// device that is registered later (or never).
type Action struct {
	DeviceID string         `json:"device_id"`
	Command  device.Command `json:"command"`
	Args     device.Args    `json:"args,omitempty"`
}

// TriggerKind distinguishes time-based from condition-based triggers.
type TriggerKind string

// Trigger kinds.
const (
	TriggerTime      TriggerKind = "time"
	TriggerCondition TriggerKind = "condition"
)

// Trigger describes when a schedule fires.
//
// Exactly one of Cron or Condition is set, selected by Kind.
type Trigger struct {
	Kind TriggerKind `json:"kind"`

	// Cron is a standard five-field cron expression, evaluated in the
	// scheduler's configured timezone. Set when Kind is TriggerTime.
	Cron string `json:"cron,omitempty"`

	// Condition fires when a device state comparison becomes true.
	// Set when Kind is TriggerCondition.
	Condition *Condition `json:"condition,omitempty"`
}

// Op is a comparison operator for condition triggers.
type Op string

// Comparison operators.
const (
	OpEqual        Op = "eq"
	OpNotEqual     Op = "ne"
	OpGreater      Op = "gt"
	OpGreaterEqual Op = "gte"
	OpLess         Op = "lt"
	OpLessEqual    Op = "lte"
)

// Condition compares one field of one device's state against a value.
//
// The trigger is edge-sensitive: it fires when the comparison goes from
// false to true, not continuously while it stays true.
type Condition struct {
	DeviceID string `json:"device_id"`
	Field    string `json:"field"`
	Op       Op     `json:"op"`
	Value    any    `json:"value"`
}

// Schedule is a named set of actions bound to a trigger.
//
// Schedules are created disabled and must be enabled explicitly.
type Schedule struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Trigger Trigger  `json:"trigger"`
	Actions []Action `json:"actions"`
	Enabled bool     `json:"enabled"`

	// OneShot schedules disable themselves after one run.
	OneShot bool `json:"one_shot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates an independent copy of the schedule.
// Actions and condition values are cloned so callers can mutate the
// copy freely.
func (s *Schedule) DeepCopy() *Schedule {
	if s == nil {
		return nil
	}

	cpy := *s

	if s.Actions != nil {
		cpy.Actions = make([]Action, len(s.Actions))
		for i, a := range s.Actions {
			cpy.Actions[i] = Action{
				DeviceID: a.DeviceID,
				Command:  a.Command,
				Args:     a.Args.DeepCopy(),
			}
		}
	}

	if s.Trigger.Condition != nil {
		cond := *s.Trigger.Condition
		cpy.Trigger.Condition = &cond
	}

	return &cpy
}

// RunStatus is the outcome of one schedule execution.
type RunStatus string

// Run statuses.
const (
	// RunCompleted means every action succeeded.
	RunCompleted RunStatus = "completed"

	// RunPartial means some actions succeeded and some failed.
	RunPartial RunStatus = "partial"

	// RunFailed means every action failed.
	RunFailed RunStatus = "failed"
)

// ActionFailure records why one action in a run failed.
type ActionFailure struct {
	Index    int            `json:"index"`
	DeviceID string         `json:"device_id"`
	Command  device.Command `json:"command"`
	Error    string         `json:"error"`
}

// RunResult records the outcome of one schedule execution.
type RunResult struct {
	ID            string          `json:"id"`
	ScheduleID    string          `json:"schedule_id"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	Status        RunStatus       `json:"status"`
	ActionsTotal  int             `json:"actions_total"`
	ActionsFailed int             `json:"actions_failed"`
	Failures      []ActionFailure `json:"failures,omitempty"`
}
