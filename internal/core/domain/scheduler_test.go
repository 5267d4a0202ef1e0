package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.True(t, cfg.Enabled)
	task := cfg.GetTaskConfig(TaskIDSourceRefresh)
	assert.True(t, task.Enabled)
	assert.Equal(t, 15*time.Minute, task.Interval)
}

func TestSchedulerConfig_GetTaskConfig_Missing(t *testing.T) {
	cfg := SchedulerConfig{}
	assert.Equal(t, TaskConfig{}, cfg.GetTaskConfig("unknown"))
}

func TestRefreshReport_Total(t *testing.T) {
	r := RefreshReport{Messages: 2, Emails: 3, Notes: 4}
	assert.Equal(t, 9, r.Total())
}

func TestInitReport_OK(t *testing.T) {
	assert.False(t, InitReport{}.OK())
	assert.True(t, InitReport{Connected: []SourceType{SourceGmail}}.OK())
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{name: "unplanned", task: ScheduledTask{Enabled: true}, want: true},
		{name: "past", task: ScheduledTask{Enabled: true, NextRun: now.Add(-time.Second)}, want: true},
		{name: "exactly now", task: ScheduledTask{Enabled: true, NextRun: now}, want: true},
		{name: "future", task: ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, want: false},
		{name: "disabled", task: ScheduledTask{NextRun: now.Add(-time.Hour)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestTaskResult_Duration(t *testing.T) {
	start := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1500*time.Millisecond, TaskResult{StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond)}.Duration())
	assert.Zero(t, TaskResult{StartedAt: start}.Duration())
}

func TestTaskResult_Degraded(t *testing.T) {
	msg := DegradedMessage([]SourceType{SourceNotion, SourceTeams})
	assert.Equal(t, "degraded: notion,teams", msg)
	assert.Equal(t, []SourceType{SourceNotion, SourceTeams}, TaskResult{Success: true, Error: msg}.Degraded())

	assert.Empty(t, DegradedMessage(nil))
	assert.Nil(t, TaskResult{Error: "boom"}.Degraded())
	assert.Nil(t, TaskResult{}.Degraded())
}
