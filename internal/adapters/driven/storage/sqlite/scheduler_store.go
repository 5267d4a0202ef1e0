package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	selectTask = `SELECT id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks`

	upsertTask = `INSERT INTO scheduled_tasks
		(id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run, next_run = excluded.next_run,
			last_error = excluded.last_error, last_success = excluded.last_success,
			enabled = excluded.enabled`

	insertRun = `INSERT INTO task_results
		(run_id, task_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	// Newest first; id breaks ties between runs started in the same
	// instant. LIMIT -1 is unbounded in SQLite.
	selectRuns = `SELECT run_id, task_id, started_at, ended_at, success, error, items_processed
		FROM task_results WHERE task_id = ?
		ORDER BY started_at DESC, id DESC LIMIT ?`

	pruneRuns = `DELETE FROM task_results WHERE id NOT IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS n
			FROM task_results
		) WHERE n <= ?)`
)

// schedulerStore keeps the refresh task and its run history in the
// Store's database.
type schedulerStore struct {
	store *Store
}

func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	task, err := scanTask(s.store.db.QueryRowContext(ctx, selectTask+` WHERE id = ?`, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, selectTask+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled tasks: %w", err)
	}
	return collect(rows, scanTask)
}

func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, upsertTask,
		task.ID, task.Name, int64(task.Interval/time.Second),
		stamp(task.LastRun), stamp(task.NextRun), text(task.LastError), stamp(task.LastSuccess),
		task.Enabled)
	if err != nil {
		return fmt.Errorf("saving scheduled task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask drops the task together with its runs.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting scheduled task %s: %w", taskID, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM task_results WHERE task_id = ?`,
		`DELETE FROM scheduled_tasks WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, taskID); err != nil {
			return fmt.Errorf("deleting scheduled task %s: %w", taskID, err)
		}
	}
	return tx.Commit()
}

func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, insertRun,
		result.RunID, result.TaskID, stamp(result.StartedAt), stamp(result.EndedAt),
		result.Success, text(result.Error), result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", result.RunID, err)
	}
	return nil
}

// GetTaskHistory returns every run when limit is not positive.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, selectRuns, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	return collect(rows, scanRun)
}

func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	if _, err := s.store.db.ExecContext(ctx, pruneRuns, keep); err != nil {
		return fmt.Errorf("pruning run history: %w", err)
	}
	return nil
}

// row is satisfied by *sql.Row and *sql.Rows.
type row interface {
	Scan(dest ...any) error
}

// collect scans and closes rows.
func collect[T any](rows *sql.Rows, scan func(row) (*T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanTask(r row) (*domain.ScheduledTask, error) {
	var (
		t                             domain.ScheduledTask
		seconds                       int64
		lastRun, nextRun, lastSuccess timestamp
		lastError                     sql.NullString
	)
	err := r.Scan(&t.ID, &t.Name, &seconds, &lastRun, &nextRun, &lastError, &lastSuccess, &t.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}
	t.Interval = time.Duration(seconds) * time.Second
	t.LastRun, t.NextRun, t.LastSuccess = lastRun.Time, nextRun.Time, lastSuccess.Time
	t.LastError = lastError.String
	return &t, nil
}

func scanRun(r row) (*domain.TaskResult, error) {
	var (
		res          domain.TaskResult
		started, end timestamp
		msg          sql.NullString
	)
	if err := r.Scan(&res.RunID, &res.TaskID, &started, &end, &res.Success, &msg, &res.ItemsProcessed); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	res.StartedAt, res.EndedAt = started.Time, end.Time
	res.Error = msg.String
	return &res, nil
}

// timeLayout has fixed-width fractions so UTC values sort lexically,
// which ORDER BY started_at relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestamp stores a time as UTC text. The zero time is NULL.
type timestamp struct {
	time.Time
}

func stamp(t time.Time) timestamp { return timestamp{t} }

// Value implements driver.Valuer.
func (ts timestamp) Value() (driver.Value, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.UTC().Format(timeLayout), nil
}

// Scan implements sql.Scanner. Unparsable text reads as the zero time.
func (ts *timestamp) Scan(src any) error {
	ts.Time = time.Time{}
	var s string
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		ts.Time = v.UTC()
		return nil
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t.UTC()
	}
	return nil
}

// text stores "" as NULL.
func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
