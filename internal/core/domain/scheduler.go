package domain

import (
	"strings"
	"time"
)

// TaskIDSourceRefresh is the periodic RefreshAll task.
const TaskIDSourceRefresh = "source-refresh"

// DefaultRefreshInterval is how often sources are refreshed in the
// background.
const DefaultRefreshInterval = 15 * time.Minute

// degradedPrefix starts TaskResult.Error for a refresh that succeeded with
// some providers failing.
const degradedPrefix = "degraded: "

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	LastSuccess time.Time
	// NextRun is zero until the first run is planned.
	NextRun   time.Time
	LastError string
}

// Due reports whether the task should run at now. Disabled tasks are
// never due; an unplanned task is due immediately.
func (t *ScheduledTask) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult is one recorded task run. For source refreshes this is the
// operator-visible record of which providers were degraded.
type TaskResult struct {
	RunID     string
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool

	// Error is the failure message, or the degraded providers of an
	// otherwise successful refresh.
	Error string

	// ItemsProcessed is the number of items refreshed.
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Degraded returns the providers that failed during a successful refresh.
func (r TaskResult) Degraded() []SourceType {
	rest, ok := strings.CutPrefix(r.Error, degradedPrefix)
	if !ok || rest == "" {
		return nil
	}
	var out []SourceType
	for _, name := range strings.Split(rest, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, SourceType(name))
		}
	}
	return out
}

// DegradedMessage formats failed providers for TaskResult.Error.
func DegradedMessage(failed []SourceType) string {
	if len(failed) == 0 {
		return ""
	}
	names := make([]string, len(failed))
	for i, st := range failed {
		names[i] = string(st)
	}
	return degradedPrefix + strings.Join(names, ",")
}

// SchedulerConfig configures background tasks.
type SchedulerConfig struct {
	// Enabled switches every task off when false.
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for taskID, or the zero value
// when the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig refreshes every source every
// DefaultRefreshInterval.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDSourceRefresh: {Enabled: true, Interval: DefaultRefreshInterval},
		},
	}
}
