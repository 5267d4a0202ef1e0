package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/him6ul/AIAssistant/internal/adapters/driven/config"
	"github.com/him6ul/AIAssistant/internal/adapters/driven/config/file"
	"github.com/him6ul/AIAssistant/internal/adapters/driven/storage/memory"
	"github.com/him6ul/AIAssistant/internal/adapters/driven/storage/postgres"
	"github.com/him6ul/AIAssistant/internal/adapters/driven/storage/sqlite"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/cli"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/httpapi"
	"github.com/him6ul/AIAssistant/internal/connectors"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/core/services"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// openConfig opens the config file at path, or the default one.
func openConfig(path string) (driven.ConfigStore, error) {
	if path == "" {
		return file.NewConfigStore("")
	}
	return file.Open(path)
}

// bootstrap wires the config, adapters, orchestrator and scheduler.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	store, err := openConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	settings, err := config.LoadSettings(store)
	if err != nil {
		logger.Warn("config: %v", err)
	}
	if opts.LogFormat == "" && settings.LogFormat != "" {
		logger.SetFormat(settings.LogFormat)
	}
	logger.Debug("config: %s", store.Path())

	registry := services.NewConnectorRegistry()
	loaded, err := connectors.Load(store, connectors.NewDefaultFactory(), registry, registry)
	if err != nil {
		logger.Warn("connectors: %v", err)
	}
	logger.Debug("connectors: %d providers loaded", len(loaded))

	orch := services.NewOrchestrator(registry, services.OrchestratorConfig{
		CacheTTL:       settings.CacheTTL,
		ConnectTimeout: settings.ConnectTimeout,
		Ranking:        settings.Ranking,
	})
	if _, err := orch.Initialize(ctx); err != nil {
		return nil, err
	}

	schedulerStore, closeStore, err := openSchedulerStore(settings.Storage)
	if err != nil {
		_ = orch.Shutdown(context.Background())
		return nil, err
	}
	scheduler := services.NewScheduler(settings.Scheduler, schedulerStore, orch)

	return &cli.Services{
		Orchestrator:    orch,
		Catalogue:       registry,
		History:         scheduler,
		Runner:          scheduler,
		Scheduler:       scheduler,
		SchedulerConfig: settings.Scheduler,
		Events:          orch.Events(),
		HTTP: httpapi.ServerConfig{
			Addr:              settings.HTTP.Addr,
			MaxBodyBytes:      settings.HTTP.MaxBodyBytes,
			ReadHeaderTimeout: settings.HTTP.ReadHeaderTimeout,
			ShutdownTimeout:   settings.HTTP.ShutdownTimeout,
		},
		Close: func(ctx context.Context) error {
			return errors.Join(orch.Shutdown(ctx), closeStore())
		},
	}, nil
}

// openSchedulerStore opens the refresh-run history for the configured
// driver and returns a function closing it.
func openSchedulerStore(cfg config.StorageSettings) (driven.SchedulerStore, func() error, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewSchedulerStore(), func() error { return nil }, nil
	case config.StoragePostgres:
		s, err := postgres.NewSchedulerStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("history store: %w", err)
		}
		return s.SchedulerStore(), s.Close, nil
	}
}
