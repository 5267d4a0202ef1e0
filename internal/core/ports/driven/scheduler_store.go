package driven

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// SchedulerStore keeps background task state across restarts together
// with the refresh history operators read back.
type SchedulerStore interface {
	// GetTask returns nil without error for an unknown task.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
	// SaveTask upserts by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
	// DeleteTask drops the task and every result recorded for it.
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error
	// GetTaskHistory lists up to limit results for taskID, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
	// PruneHistory trims every task's history to its newest keep results.
	PruneHistory(ctx context.Context, keep int) error
}
