package driven

import "time"

// ConfigStore reads and writes the hub configuration as flat dot-notation
// keys such as "providers.gmail.client_id" or "cache.ttl". Typed getters
// return the zero value for a missing or mistyped key; string values have
// ${VAR} references expanded from the environment.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	// GetFloat widens integers.
	GetFloat(key string) float64
	// GetDuration accepts "30s" style strings or whole seconds and returns
	// def otherwise.
	GetDuration(key string, def time.Duration) time.Duration
	GetStringSlice(key string) []string

	// Keys lists the keys below prefix with the prefix removed, which is
	// how adapters discover their providers.<id> sections.
	Keys(prefix string) []string

	// Set writes through to storage.
	Set(key string, value any) error
	Save() error
	Load() error
	Path() string
}
