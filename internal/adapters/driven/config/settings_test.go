package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/adapters/driven/config"
	"github.com/him6ul/AIAssistant/internal/adapters/driven/storage/memory"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := config.LoadSettings(memory.NewConfigStore())
	require.NoError(t, err)

	assert.Empty(t, s.LogFormat)
	assert.Zero(t, s.CacheTTL)
	assert.Equal(t, domain.DefaultRankingConfig(), s.Ranking)
	assert.Equal(t, domain.DefaultSchedulerConfig(), s.Scheduler)
	assert.Equal(t, config.StorageSQLite, s.Storage.Driver)
	assert.Empty(t, s.HTTP.Addr)
}

func TestLoadSettings_Values(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"log.format":                 "JSON",
		"cache.ttl":                  "45s",
		"cache.connect_timeout":      int64(10),
		"ranking.importance_weight":  int64(20),
		"ranking.recency_weight":     2.5,
		"ranking.half_life":          "12h",
		"ranking.priority":           []any{"note", "Mail", "message"},
		"scheduler.enabled":          false,
		"scheduler.refresh_interval": "5m",
		"storage.driver":             "postgres",
		"storage.postgres.dsn":       "postgres://hub@localhost/hub",
		"http.addr":                  ":9000",
		"http.max_body_bytes":        int64(4096),
		"http.shutdown_timeout":      "3s",
	})

	s, err := config.LoadSettings(store)
	require.NoError(t, err)

	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 45*time.Second, s.CacheTTL)
	assert.Equal(t, 10*time.Second, s.ConnectTimeout)
	assert.InDelta(t, 20, s.Ranking.ImportanceWeight, 0.001)
	assert.InDelta(t, 2.5, s.Ranking.RecencyWeight, 0.001)
	assert.Equal(t, 12*time.Hour, s.Ranking.HalfLife)
	assert.Equal(t, 72*time.Hour, s.Ranking.NoteWindow)
	assert.Equal(t, domain.CapabilityPriority{domain.CapabilityNote, domain.CapabilityMail, domain.CapabilityMessage}, s.Ranking.Priority)
	assert.False(t, s.Scheduler.Enabled)
	assert.Equal(t, 5*time.Minute, s.Scheduler.GetTaskConfig(domain.TaskIDSourceRefresh).Interval)
	assert.Equal(t, config.StorageSettings{Driver: "postgres", PostgresDSN: "postgres://hub@localhost/hub"}, s.Storage)
	assert.Equal(t, config.HTTPSettings{Addr: ":9000", MaxBodyBytes: 4096, ShutdownTimeout: 3 * time.Second}, s.HTTP)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
		check   func(t *testing.T, s config.Settings)
	}{
		{
			name:    "unknown log format",
			values:  map[string]any{"log.format": "xml"},
			wantErr: domain.ErrInvalidInput,
			check:   func(t *testing.T, s config.Settings) { assert.Empty(t, s.LogFormat) },
		},
		{
			name:    "importance must exceed recency",
			values:  map[string]any{"ranking.importance_weight": 1.0, "ranking.recency_weight": 2.0},
			wantErr: domain.ErrInvalidInput,
			check: func(t *testing.T, s config.Settings) {
				assert.InDelta(t, 10, s.Ranking.ImportanceWeight, 0.001)
				assert.InDelta(t, 1, s.Ranking.RecencyWeight, 0.001)
			},
		},
		{
			name:    "unknown capability in priority",
			values:  map[string]any{"ranking.priority": "mail,calendar"},
			wantErr: domain.ErrInvalidInput,
			check: func(t *testing.T, s config.Settings) {
				assert.Equal(t, domain.DefaultCapabilityPriority(), s.Ranking.Priority)
			},
		},
		{
			name:    "non positive refresh interval",
			values:  map[string]any{"scheduler.refresh_interval": "0s"},
			wantErr: domain.ErrInvalidInput,
			check: func(t *testing.T, s config.Settings) {
				assert.Equal(t, 15*time.Minute, s.Scheduler.GetTaskConfig(domain.TaskIDSourceRefresh).Interval)
			},
		},
		{
			name:    "unknown storage driver falls back to sqlite",
			values:  map[string]any{"storage.driver": "mongo"},
			wantErr: domain.ErrUnsupportedType,
			check:   func(t *testing.T, s config.Settings) { assert.Equal(t, config.StorageSQLite, s.Storage.Driver) },
		},
		{
			name:    "postgres needs dsn",
			values:  map[string]any{"storage.driver": "postgres"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := config.LoadSettings(memory.NewConfigStoreFrom(tt.values))
			require.ErrorIs(t, err, tt.wantErr)
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}
