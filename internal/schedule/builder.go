package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/hearthd/hearth-core/internal/device"
)

// cronParser validates standard five-field cron expressions.
// Same parser the scheduler uses, so an expression that builds will arm.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Builder assembles schedules step by step.
//
// The builder performs structural validation only. Device IDs named in
// actions and conditions are NOT checked for existence; resolution
// happens when the schedule fires, so schedules can be built for
// devices that are registered later.
//
// A builder is reusable: Build copies the accumulated state into the
// returned schedule, and further builder calls do not affect schedules
// already built. Builders are not safe for concurrent use.
type Builder struct {
	name    string
	trigger *Trigger
	actions []Action
	oneShot bool
}

// NewBuilder creates a builder for a schedule with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddAction appends a device command to the schedule.
// Actions run in the order they were added.
func (b *Builder) AddAction(deviceID string, cmd device.Command, args device.Args) *Builder {
	b.actions = append(b.actions, Action{
		DeviceID: deviceID,
		Command:  cmd,
		Args:     args.DeepCopy(),
	})
	return b
}

// At sets a time trigger from a five-field cron expression.
// Replaces any previously set trigger.
func (b *Builder) At(cronExpr string) *Builder {
	b.trigger = &Trigger{Kind: TriggerTime, Cron: cronExpr}
	return b
}

// When sets a condition trigger.
// Replaces any previously set trigger.
func (b *Builder) When(deviceID, field string, op Op, value any) *Builder {
	b.trigger = &Trigger{
		Kind: TriggerCondition,
		Condition: &Condition{
			DeviceID: deviceID,
			Field:    field,
			Op:       op,
			Value:    value,
		},
	}
	return b
}

// OneShot marks the schedule to disable itself after one run.
func (b *Builder) OneShot() *Builder {
	b.oneShot = true
	return b
}

// Build assembles the schedule.
//
// The schedule is returned disabled; enable it through the controller.
// Errors:
//   - ErrIncomplete: no trigger set, or no actions added
//   - ErrInvalidCron: the cron expression does not parse
//   - ErrInvalidCondition: the condition is missing a device, field, or operator
func (b *Builder) Build() (*Schedule, error) {
	if b.trigger == nil || len(b.actions) == 0 {
		return nil, ErrIncomplete
	}

	if err := validateTrigger(b.trigger); err != nil {
		return nil, err
	}

	actions := make([]Action, len(b.actions))
	for i, a := range b.actions {
		actions[i] = Action{
			DeviceID: a.DeviceID,
			Command:  a.Command,
			Args:     a.Args.DeepCopy(),
		}
	}

	trigger := *b.trigger
	if b.trigger.Condition != nil {
		cond := *b.trigger.Condition
		trigger.Condition = &cond
	}

	return &Schedule{
		ID:      uuid.New().String(),
		Name:    b.name,
		Trigger: trigger,
		Actions: actions,
		Enabled: false,
		OneShot: b.oneShot,
	}, nil
}

// validateTrigger checks the structural validity of a trigger.
func validateTrigger(t *Trigger) error {
	switch t.Kind {
	case TriggerTime:
		if _, err := cronParser.Parse(t.Cron); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidCron, t.Cron, err)
		}
		return nil

	case TriggerCondition:
		c := t.Condition
		if c == nil || c.DeviceID == "" || c.Field == "" {
			return fmt.Errorf("%w: device and field are required", ErrInvalidCondition)
		}
		switch c.Op {
		case OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
			return nil
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Op)
		}

	default:
		return fmt.Errorf("%w: unknown trigger kind %q", ErrInvalidCondition, t.Kind)
	}
}

// Validate checks a schedule loaded from storage or received over the
// API. Same rules as Build.
func (s *Schedule) Validate() error {
	if len(s.Actions) == 0 {
		return ErrIncomplete
	}
	return validateTrigger(&s.Trigger)
}
