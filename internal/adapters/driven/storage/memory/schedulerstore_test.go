package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func TestSchedulerStore_Tasks(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	got, err := store.GetTask(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	task := &domain.ScheduledTask{ID: "b", Name: "B", Interval: time.Minute, Enabled: true}
	require.NoError(t, store.SaveTask(ctx, task))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "a", Name: "A"}))

	// The store keeps a copy.
	task.Name = "mutated"
	got, err = store.GetTask(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)

	require.NoError(t, store.DeleteTask(ctx, "a"))
	tasks, err = store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	assert.ErrorIs(t, store.SaveTask(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_History(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Recorded out of order.
	for _, i := range []int{1, 3, 0, 2} {
		require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
			RunID:     fmt.Sprintf("run-%d", i),
			TaskID:    "t1",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := store.GetTaskHistory(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, want := range []string{"run-3", "run-2", "run-1", "run-0"} {
		assert.Equal(t, want, history[i].RunID)
	}

	limited, err := store.GetTaskHistory(ctx, "t1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, store.PruneHistory(ctx, 1))
	history, err = store.GetTaskHistory(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-3", history[0].RunID)

	assert.ErrorIs(t, store.RecordResult(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.RecordResult(ctx, &domain.TaskResult{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_DeleteTaskClearsHistory(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "t1"}))
	require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{TaskID: "t1", StartedAt: time.Now()}))
	require.NoError(t, store.DeleteTask(ctx, "t1"))

	history, err := store.GetTaskHistory(ctx, "t1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_Concurrency(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.RecordResult(ctx, &domain.TaskResult{
				TaskID: "t1", StartedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
			})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.GetTaskHistory(ctx, "t1", 5)
		}()
	}
	wg.Wait()

	history, err := store.GetTaskHistory(ctx, "t1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}
