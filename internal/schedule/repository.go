package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for schedule persistence.
type Repository interface {
	// GetByID retrieves a schedule by its unique identifier.
	// Returns ErrNotFound if the schedule does not exist.
	GetByID(ctx context.Context, id string) (*Schedule, error)

	// List retrieves all schedules ordered by name.
	List(ctx context.Context) ([]Schedule, error)

	// Create inserts a new schedule.
	// Returns ErrDuplicateID if a schedule with the same ID exists.
	Create(ctx context.Context, sched *Schedule) error

	// Update modifies an existing schedule.
	// Returns ErrNotFound if the schedule does not exist.
	Update(ctx context.Context, sched *Schedule) error

	// SetEnabled flips only the enabled flag.
	// Returns ErrNotFound if the schedule does not exist.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Delete removes a schedule and its run history.
	// Returns ErrNotFound if the schedule does not exist.
	Delete(ctx context.Context, id string) error

	// SaveRun records a run result.
	SaveRun(ctx context.Context, run *RunResult) error

	// ListRuns returns the most recent runs for a schedule, newest first.
	ListRuns(ctx context.Context, scheduleID string, limit int) ([]RunResult, error)
}

// defaultRunLimit caps run history queries when the caller passes 0.
const defaultRunLimit = 50

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed schedule repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a schedule by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Schedule, error) {
	query := `
		SELECT id, name, trigger, actions, enabled, one_shot, created_at, updated_at
		FROM schedules
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	sched, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying schedule by id: %w", err)
	}
	return sched, nil
}

// List retrieves all schedules ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Schedule, error) {
	query := `
		SELECT id, name, trigger, actions, enabled, one_shot, created_at, updated_at
		FROM schedules
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}
		schedules = append(schedules, *sched)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new schedule.
func (r *SQLiteRepository) Create(ctx context.Context, sched *Schedule) error {
	triggerJSON, actionsJSON, err := marshalSchedule(sched)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = now
	}
	sched.UpdatedAt = now

	query := `
		INSERT INTO schedules (id, name, trigger, actions, enabled, one_shot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		sched.ID,
		sched.Name,
		triggerJSON,
		actionsJSON,
		boolToInt(sched.Enabled),
		boolToInt(sched.OneShot),
		sched.CreatedAt.Format(time.RFC3339),
		sched.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateID
		}
		return fmt.Errorf("inserting schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule.
func (r *SQLiteRepository) Update(ctx context.Context, sched *Schedule) error {
	triggerJSON, actionsJSON, err := marshalSchedule(sched)
	if err != nil {
		return err
	}

	sched.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE schedules
		SET name = ?, trigger = ?, actions = ?, enabled = ?, one_shot = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		sched.Name,
		triggerJSON,
		actionsJSON,
		boolToInt(sched.Enabled),
		boolToInt(sched.OneShot),
		sched.UpdatedAt.Format(time.RFC3339),
		sched.ID,
	)
	if err != nil {
		return fmt.Errorf("updating schedule: %w", err)
	}
	return checkAffected(result)
}

// SetEnabled flips only the enabled flag.
func (r *SQLiteRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE schedules SET enabled = ?, updated_at = ? WHERE id = ?",
		boolToInt(enabled),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating schedule enabled flag: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a schedule. Run history goes with it via ON DELETE CASCADE.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}
	return checkAffected(result)
}

// SaveRun records a run result.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run *RunResult) error {
	failuresJSON, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("marshalling run failures: %w", err)
	}

	query := `
		INSERT INTO schedule_runs (id, schedule_id, started_at, completed_at, status,
			actions_total, actions_failed, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.ScheduleID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.CompletedAt.UTC().Format(time.RFC3339Nano),
		string(run.Status),
		run.ActionsTotal,
		run.ActionsFailed,
		string(failuresJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs for a schedule, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, scheduleID string, limit int) ([]RunResult, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	query := `
		SELECT id, schedule_id, started_at, completed_at, status,
			actions_total, actions_failed, failures
		FROM schedule_runs
		WHERE schedule_id = ?
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, scheduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying schedule runs: %w", err)
	}
	defer rows.Close()

	var runs []RunResult
	for rows.Next() {
		var run RunResult
		var status, startedAt, completedAt, failuresJSON string

		if err := rows.Scan(&run.ID, &run.ScheduleID, &startedAt, &completedAt,
			&status, &run.ActionsTotal, &run.ActionsFailed, &failuresJSON); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}

		run.Status = RunStatus(status)
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if run.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
		if err := json.Unmarshal([]byte(failuresJSON), &run.Failures); err != nil {
			return nil, fmt.Errorf("unmarshalling failures: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanner abstracts over sql.Row and sql.Rows for shared scanning logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanSchedule scans a schedule row.
func scanSchedule(s scanner) (*Schedule, error) {
	var sched Schedule
	var triggerJSON, actionsJSON, createdAt, updatedAt string
	var enabled, oneShot int

	if err := s.Scan(&sched.ID, &sched.Name, &triggerJSON, &actionsJSON,
		&enabled, &oneShot, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(triggerJSON), &sched.Trigger); err != nil {
		return nil, fmt.Errorf("unmarshalling trigger: %w", err)
	}
	if err := json.Unmarshal([]byte(actionsJSON), &sched.Actions); err != nil {
		return nil, fmt.Errorf("unmarshalling actions: %w", err)
	}

	sched.Enabled = enabled != 0
	sched.OneShot = oneShot != 0

	var err error
	if sched.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if sched.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &sched, nil
}

// marshalSchedule serialises the trigger and actions columns.
func marshalSchedule(sched *Schedule) (triggerJSON, actionsJSON string, err error) {
	t, err := json.Marshal(sched.Trigger)
	if err != nil {
		return "", "", fmt.Errorf("marshalling trigger: %w", err)
	}
	a, err := json.Marshal(sched.Actions)
	if err != nil {
		return "", "", fmt.Errorf("marshalling actions: %w", err)
	}
	return string(t), string(a), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
