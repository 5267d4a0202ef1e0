package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// Storage drivers for the refresh-run history.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Settings are the hub-wide values outside the provider sections.
type Settings struct {
	// LogFormat is "text" or "json"; empty leaves the logger default.
	LogFormat string

	CacheTTL       time.Duration
	ConnectTimeout time.Duration
	Ranking        domain.RankingConfig
	Scheduler      domain.SchedulerConfig
	Storage        StorageSettings
	HTTP           HTTPSettings
}

// StorageSettings select the scheduler store.
type StorageSettings struct {
	Driver string
	// DataDir holds the SQLite database. Empty means ~/.hub/data.
	DataDir     string
	PostgresDSN string
}

// HTTPSettings tune the serve command.
type HTTPSettings struct {
	Addr              string
	MaxBodyBytes      int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// LoadSettings reads the hub settings from store. Zero durations and
// sizes in the result mean "use the consumer's default".
//
//	[cache]     ttl, connect_timeout
//	[ranking]   importance_weight, recency_weight, half_life, note_window, priority
//	[scheduler] enabled, refresh_interval
//	[storage]   driver, data_dir, postgres.dsn
//	[http]      addr, max_body_bytes, read_header_timeout, shutdown_timeout
//	[log]       format
//
// Invalid values are reported joined; the rest of the settings still load.
func LoadSettings(store driven.ConfigStore) (Settings, error) {
	var errs []error
	s := Settings{
		LogFormat:      strings.ToLower(store.GetString("log.format")),
		CacheTTL:       store.GetDuration("cache.ttl", 0),
		ConnectTimeout: store.GetDuration("cache.connect_timeout", 0),
		Ranking:        domain.DefaultRankingConfig(),
		Scheduler:      domain.DefaultSchedulerConfig(),
	}

	switch s.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", domain.ErrInvalidInput, s.LogFormat))
		s.LogFormat = ""
	}

	if err := loadRanking(store, &s.Ranking); err != nil {
		errs = append(errs, err)
	}

	if v, ok := store.Get("scheduler.enabled"); ok {
		s.Scheduler.Enabled = Bool(v)
	}
	refresh := s.Scheduler.GetTaskConfig(domain.TaskIDSourceRefresh)
	refresh.Interval = store.GetDuration("scheduler.refresh_interval", refresh.Interval)
	if refresh.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: scheduler.refresh_interval must be positive", domain.ErrInvalidInput))
		defaults := domain.DefaultSchedulerConfig()
		refresh.Interval = defaults.GetTaskConfig(domain.TaskIDSourceRefresh).Interval
	}
	s.Scheduler.TaskConfigs[domain.TaskIDSourceRefresh] = refresh

	s.Storage = StorageSettings{
		Driver:      strings.ToLower(store.GetString("storage.driver")),
		DataDir:     store.GetString("storage.data_dir"),
		PostgresDSN: store.GetString("storage.postgres.dsn"),
	}
	switch s.Storage.Driver {
	case "":
		s.Storage.Driver = StorageSQLite
	case StorageSQLite, StorageMemory:
	case StoragePostgres:
		if s.Storage.PostgresDSN == "" {
			errs = append(errs, fmt.Errorf("%w: storage.postgres.dsn is required for the postgres driver", domain.ErrInvalidInput))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: storage.driver %q", domain.ErrUnsupportedType, s.Storage.Driver))
		s.Storage.Driver = StorageSQLite
	}

	s.HTTP = HTTPSettings{
		Addr:              store.GetString("http.addr"),
		MaxBodyBytes:      int64(store.GetInt("http.max_body_bytes")),
		ReadHeaderTimeout: store.GetDuration("http.read_header_timeout", 0),
		ShutdownTimeout:   store.GetDuration("http.shutdown_timeout", 0),
	}

	return s, errors.Join(errs...)
}

func loadRanking(store driven.ConfigStore, r *domain.RankingConfig) error {
	if _, ok := store.Get("ranking.importance_weight"); ok {
		r.ImportanceWeight = store.GetFloat("ranking.importance_weight")
	}
	if _, ok := store.Get("ranking.recency_weight"); ok {
		r.RecencyWeight = store.GetFloat("ranking.recency_weight")
	}
	r.HalfLife = store.GetDuration("ranking.half_life", r.HalfLife)
	r.NoteWindow = store.GetDuration("ranking.note_window", r.NoteWindow)

	if r.ImportanceWeight <= r.RecencyWeight {
		d := domain.DefaultRankingConfig()
		r.ImportanceWeight, r.RecencyWeight = d.ImportanceWeight, d.RecencyWeight
		return fmt.Errorf("%w: ranking.importance_weight must exceed ranking.recency_weight", domain.ErrInvalidInput)
	}

	names := store.GetStringSlice("ranking.priority")
	if len(names) == 0 {
		return nil
	}
	priority := make(domain.CapabilityPriority, 0, len(names))
	for _, name := range names {
		c := domain.Capability(strings.ToLower(strings.TrimSpace(name)))
		switch c {
		case domain.CapabilityMail, domain.CapabilityMessage, domain.CapabilityNote:
			priority = append(priority, c)
		default:
			return fmt.Errorf("%w: ranking.priority capability %q", domain.ErrInvalidInput, name)
		}
	}
	r.Priority = priority
	return nil
}
