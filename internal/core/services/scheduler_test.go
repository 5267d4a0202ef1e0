package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	pruned   int
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Newest first, matching the real stores.
	m.results[result.TaskID] = append([]domain.TaskResult{*result}, m.results[result.TaskID]...)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[:limit]
	}
	return append([]domain.TaskResult(nil), results...), nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = keep
	return m.pruneErr
}

func (m *mockSchedulerStore) task(id string) *domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tasks[id]
}

// mockRefresher implements Refresher for testing.
type mockRefresher struct {
	calls  atomic.Int32
	report domain.RefreshReport
	err    error
}

func (m *mockRefresher) RefreshAll(context.Context) (domain.RefreshReport, error) {
	m.calls.Add(1)
	return m.report, m.err
}

var (
	_ driven.SchedulerStore = (*mockSchedulerStore)(nil)
	_ Refresher             = (*mockRefresher)(nil)
	_ Refresher             = (*Orchestrator)(nil)
)

func TestNewScheduler(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	scheduler := NewScheduler(config, newMockSchedulerStore(), &mockRefresher{})

	require.NotNil(t, scheduler)
	assert.Equal(t, config.Enabled, scheduler.config.Enabled)
	assert.Equal(t, time.Minute, scheduler.tick)
}

func TestScheduler_StartStop(t *testing.T) {
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockRefresher{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return store.task(domain.TaskIDSourceRefresh) != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	task := store.task(domain.TaskIDSourceRefresh)
	assert.Equal(t, "Source Refresh", task.Name)
	assert.Equal(t, 15*time.Minute, task.Interval)
	assert.True(t, task.NextRun.After(time.Now()))
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), &mockRefresher{})
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_Disabled(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.Enabled = false
	store := newMockSchedulerStore()
	scheduler := NewScheduler(config, store, &mockRefresher{})

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Nil(t, store.task(domain.TaskIDSourceRefresh))
}

func TestScheduler_RunsDueTasks(t *testing.T) {
	store := newMockSchedulerStore()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDSourceRefresh,
		Name:     "Source Refresh",
		Interval: 15 * time.Minute,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}))
	refresher := &mockRefresher{report: domain.RefreshReport{ID: "run-1", Emails: 3}}
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, scheduler.Stop())

	history, err := scheduler.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-1", history[0].RunID)
	assert.Equal(t, 3, history[0].ItemsProcessed)
	assert.True(t, history[0].Success)
}

func TestScheduler_RunNow(t *testing.T) {
	tests := []struct {
		name        string
		report      domain.RefreshReport
		err         error
		wantSuccess bool
		wantError   string
	}{
		{
			name:        "clean refresh",
			report:      domain.RefreshReport{ID: "a", Messages: 1, Emails: 2, Notes: 3},
			wantSuccess: true,
		},
		{
			name:        "degraded refresh still succeeds",
			report:      domain.RefreshReport{ID: "b", Emails: 2, Failed: []domain.SourceType{domain.SourceGmail, domain.SourceTeams}},
			wantSuccess: true,
			wantError:   "degraded: gmail,teams",
		},
		{
			name:      "failed refresh",
			err:       domain.ErrAllSourcesFailed,
			wantError: domain.ErrAllSourcesFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockSchedulerStore()
			refresher := &mockRefresher{report: tt.report, err: tt.err}
			scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher)

			result, err := scheduler.RunNow(context.Background(), domain.TaskIDSourceRefresh)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, result)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantError, result.Error)
			assert.Equal(t, tt.report.ID, result.RunID)
			assert.Equal(t, tt.report.Total(), result.ItemsProcessed)
			assert.Equal(t, historyRetention, store.pruned)

			task := store.task(domain.TaskIDSourceRefresh)
			require.NotNil(t, task)
			assert.Equal(t, tt.wantError != "" && !tt.wantSuccess, task.LastError != "")
			assert.True(t, task.NextRun.After(result.EndedAt) || task.Interval == 0)
		})
	}
}

func TestScheduler_RunNowUnknownTask(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), &mockRefresher{})

	_, err := scheduler.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduler_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockSchedulerStore()
	store.saveErr = errors.New("disk full")
	store.pruneErr = errors.New("disk full")
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockRefresher{report: domain.RefreshReport{ID: "x"}})

	result, err := scheduler.RunNow(context.Background(), domain.TaskIDSourceRefresh)

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestScheduler_HistoryNewestFirst(t *testing.T) {
	store := newMockSchedulerStore()
	refresher := &mockRefresher{}
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher)

	for _, id := range []string{"first", "second", "third"} {
		refresher.report = domain.RefreshReport{ID: id}
		_, err := scheduler.RunNow(context.Background(), domain.TaskIDSourceRefresh)
		require.NoError(t, err)
	}

	history, err := scheduler.History(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "third", history[0].RunID)
	assert.Equal(t, "second", history[1].RunID)
}

func TestScheduler_RefreshesThroughOrchestrator(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a")))
	store := newMockSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, NewOrchestrator(r, OrchestratorConfig{}))

	result, err := scheduler.RunNow(context.Background(), domain.TaskIDSourceRefresh)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ItemsProcessed)
	assert.NotEmpty(t, result.RunID)
}
