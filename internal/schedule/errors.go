package schedule

import "errors"

// Domain errors for the schedule package.
var (
	// ErrNotFound is returned when a schedule ID does not exist.
	ErrNotFound = errors.New("schedule: not found")

	// ErrDuplicateID is returned when persisting a schedule with an ID
	// that already exists.
	ErrDuplicateID = errors.New("schedule: duplicate id")

	// ErrIncomplete is returned by Build when the schedule is missing a
	// trigger or has no actions.
	ErrIncomplete = errors.New("schedule: incomplete (needs a trigger and at least one action)")

	// ErrInvalidCron is returned when a cron expression cannot be parsed.
	ErrInvalidCron = errors.New("schedule: invalid cron expression")

	// ErrInvalidCondition is returned when a condition trigger is malformed.
	ErrInvalidCondition = errors.New("schedule: invalid condition")
)
