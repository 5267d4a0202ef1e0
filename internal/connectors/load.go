package connectors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/him6ul/AIAssistant/internal/adapters/driven/config"
	"github.com/him6ul/AIAssistant/internal/connectors/middleware"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Registrar receives wrapped adapters by capability.
type Registrar interface {
	RegisterMessageSource(src driven.MessageSource)
	RegisterMailSource(src driven.MailSource)
	RegisterNoteSource(src driven.NoteSource)
}

// Validator checks a provider section against the adapter catalogue.
type Validator interface {
	ValidateConfig(connectorID string, config map[string]string) error
}

// Provider section keys that configure the hub rather than the adapter.
const (
	keyEnabled   = "enabled"
	keyRateLimit = "rate_limit."
	keyRetry     = "retry."
)

// Loaded describes one registered provider.
type Loaded struct {
	ID           string
	SourceType   domain.SourceType
	Capabilities []domain.Capability
}

// Load builds every enabled provider in store, wraps it in the middleware
// and registers it with reg. A provider that fails to build is skipped;
// the failures are returned joined alongside the providers that loaded.
// validator may be nil.
func Load(store driven.ConfigStore, f *Factory, reg Registrar, validator Validator) ([]Loaded, error) {
	var loaded []Loaded
	var errs []error

	for _, id := range ProviderIDs(store) {
		prefix := "providers." + id + "."
		if v, ok := store.Get(prefix + keyEnabled); ok && !config.Bool(v) {
			logger.Debug("connectors: %s disabled", id)
			continue
		}

		values := ProviderValues(store, id)
		if validator != nil {
			if err := validator.ValidateConfig(id, values); err != nil && !errors.Is(err, domain.ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				logger.Warn("connectors: %s: invalid config: %v", id, err)
				continue
			}
		}

		src, err := f.Create(id, values)
		if err != nil {
			errs = append(errs, err)
			logger.Warn("connectors: skipping %v", err)
			continue
		}

		cfg := middleware.DefaultConfig()
		cfg.RateLimit = f.RateLimit(id)
		cfg = MiddlewareConfig(store, "middleware.", cfg)
		cfg = MiddlewareConfig(store, prefix, cfg)

		caps := register(reg, src, cfg)
		if len(caps) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w: no capability interface", id, domain.ErrUnsupportedType))
			continue
		}
		loaded = append(loaded, Loaded{ID: id, SourceType: src.SourceType(), Capabilities: caps})
		logger.Info("connectors: registered %s (%s)", id, capabilityList(caps))
	}

	return loaded, errors.Join(errs...)
}

func register(reg Registrar, src driven.Source, cfg middleware.Config) []domain.Capability {
	var caps []domain.Capability
	if s, ok := src.(driven.MessageSource); ok {
		reg.RegisterMessageSource(middleware.WrapMessageSource(s, cfg))
		caps = append(caps, domain.CapabilityMessage)
	}
	if s, ok := src.(driven.MailSource); ok {
		reg.RegisterMailSource(middleware.WrapMailSource(s, cfg))
		caps = append(caps, domain.CapabilityMail)
	}
	if s, ok := src.(driven.NoteSource); ok {
		reg.RegisterNoteSource(middleware.WrapNoteSource(s, cfg))
		caps = append(caps, domain.CapabilityNote)
	}
	return caps
}

func capabilityList(caps []domain.Capability) string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

// ProviderIDs returns the IDs of every [providers.<id>] section, sorted.
func ProviderIDs(store driven.ConfigStore) []string {
	seen := make(map[string]bool)
	for _, key := range store.Keys("providers.") {
		id, _, _ := strings.Cut(key, ".")
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProviderValues returns the adapter settings of a provider section as
// strings, without the hub's own keys.
func ProviderValues(store driven.ConfigStore, id string) map[string]string {
	prefix := "providers." + id + "."
	values := make(map[string]string)
	for _, key := range store.Keys(prefix) {
		if key == keyEnabled || strings.HasPrefix(key, keyRateLimit) || strings.HasPrefix(key, keyRetry) {
			continue
		}
		val, _ := store.Get(prefix + key)
		values[key] = config.Text(val)
	}
	return values
}

// MiddlewareConfig overlays the retry.* and rate_limit.* keys under
// prefix onto cfg.
func MiddlewareConfig(store driven.ConfigStore, prefix string, cfg middleware.Config) middleware.Config {
	r := prefix + keyRetry
	if _, ok := store.Get(r + "max_retries"); ok {
		cfg.Retry.MaxRetries = store.GetInt(r + "max_retries")
	}
	cfg.Retry.InitialDelay = store.GetDuration(r+"initial_delay", cfg.Retry.InitialDelay)
	cfg.Retry.MaxDelay = store.GetDuration(r+"max_delay", cfg.Retry.MaxDelay)
	if _, ok := store.Get(r + "multiplier"); ok {
		cfg.Retry.Multiplier = store.GetFloat(r + "multiplier")
	}
	cfg.Retry.AttemptTimeout = store.GetDuration(r+"attempt_timeout", cfg.Retry.AttemptTimeout)
	cfg.Retry.Ceiling = store.GetDuration(r+"ceiling", cfg.Retry.Ceiling)

	l := prefix + keyRateLimit
	if _, ok := store.Get(l + "rps"); ok {
		cfg.RateLimit.RequestsPerSecond = store.GetFloat(l + "rps")
	}
	if _, ok := store.Get(l + "burst"); ok {
		cfg.RateLimit.Burst = store.GetInt(l + "burst")
	}
	switch mode := middleware.LimitMode(strings.ToLower(store.GetString(l + "mode"))); mode {
	case "":
	case middleware.ModeBlock, middleware.ModeReject:
		cfg.RateLimit.Mode = mode
	default:
		logger.Warn("connectors: %smode %q is not block or reject, keeping %s", l, mode, cfg.RateLimit.Mode)
	}
	return cfg
}
