package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure Scheduler implements the interfaces.
var (
	_ driving.Scheduler      = (*Scheduler)(nil)
	_ driving.RefreshHistory = (*Scheduler)(nil)
)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Refresher re-fetches every capability.
type Refresher interface {
	RefreshAll(ctx context.Context) (domain.RefreshReport, error)
}

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config    domain.SchedulerConfig
	store     driven.SchedulerStore
	refresher Refresher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// tick is how often due tasks are checked.
	tick time.Duration
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	refresher Refresher,
) *Scheduler {
	return &Scheduler{
		config:    config,
		store:     store,
		refresher: refresher,
		tick:      time.Minute,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Debug("scheduler: disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDSourceRefresh); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDSourceRefresh, "Source Refresh", taskCfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if task.Due(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task in the background.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.execute(ctx, task); err != nil {
			logger.Warn("scheduler: task %s failed: %v", task.ID, err)
		}
	}()
}

// RunNow runs a task synchronously, records its result and reschedules it.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: taskID, Interval: cfg.Interval, Enabled: cfg.Enabled}
	}
	return s.execute(ctx, task)
}

// execute runs task, persists its new state and records the result.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) (*domain.TaskResult, error) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDSourceRefresh:
		err = s.runSourceRefresh(ctx, result)
	default:
		return nil, fmt.Errorf("scheduler: unknown task ID %q: %w", task.ID, domain.ErrNotFound)
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Success = false
		if result.Error == "" {
			result.Error = err.Error()
		}
		task.LastError = result.Error
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	if task.Interval > 0 {
		task.NextRun = result.EndedAt.Add(task.Interval)
	}

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}

	return result, err
}

// runSourceRefresh refreshes every source. Degraded providers do not fail
// the run but are listed in the result's Error.
func (s *Scheduler) runSourceRefresh(ctx context.Context, result *domain.TaskResult) error {
	if s.refresher == nil {
		return nil
	}

	report, err := s.refresher.RefreshAll(ctx)
	result.RunID = report.ID
	result.ItemsProcessed = report.Total()
	result.Error = domain.DegradedMessage(report.Failed)
	return err
}

// History returns the most recent refresh runs, newest first.
func (s *Scheduler) History(ctx context.Context, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.GetTaskHistory(ctx, domain.TaskIDSourceRefresh, limit)
}
