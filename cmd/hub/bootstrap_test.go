package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/adapters/driven/config"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/cli"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestBootstrap_FilesystemNotebook(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes")
	writeFile(t, filepath.Join(notes, "plan.md"), "# Plan\n\nship it\n")

	cfgPath := filepath.Join(dir, "config.toml")
	writeFile(t, cfgPath, `
[cache]
ttl = "10s"

[scheduler]
enabled = false

[storage]
driver = "memory"

[http]
addr = "127.0.0.1:0"

[providers.filesystem]
path = "`+filepath.ToSlash(notes)+`"
`)

	s, err := bootstrap(t.Context(), cli.Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close(t.Context())) })

	require.NotNil(t, s.Orchestrator)
	assert.NotNil(t, s.Catalogue)
	assert.NotNil(t, s.Runner)
	assert.NotNil(t, s.Events)
	assert.False(t, s.SchedulerConfig.Enabled)
	assert.Equal(t, "127.0.0.1:0", s.HTTP.Addr)

	status := s.Orchestrator.Status()
	require.Len(t, status, 1)
	assert.Equal(t, domain.SourceFilesystem, status[0].SourceType)
	assert.True(t, status[0].Connected)

	notesList, err := s.Orchestrator.GetAllNotes(t.Context(), domain.NoteQuery{})
	require.NoError(t, err)
	require.Len(t, notesList, 1)
	assert.Equal(t, "Plan", notesList[0].Title)
}

func TestBootstrap_SkipsBrokenProvider(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
storage:
  driver: sqlite
  data_dir: `+filepath.ToSlash(filepath.Join(dir, "data"))+`
providers:
  gmail:
    client_id: only-an-id
`)

	s, err := bootstrap(t.Context(), cli.Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close(t.Context())) })

	assert.Empty(t, s.Orchestrator.Status())
	_, err = os.Stat(filepath.Join(dir, "data", "hub.db"))
	assert.NoError(t, err)
}

func TestOpenSchedulerStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageSettings
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageSettings{Driver: config.StorageMemory}},
		{name: "sqlite", cfg: config.StorageSettings{Driver: config.StorageSQLite, DataDir: t.TempDir()}},
		{name: "postgres is lazy", cfg: config.StorageSettings{Driver: config.StoragePostgres, PostgresDSN: "postgres://hub@127.0.0.1:1/hub"}},
		{name: "postgres without dsn", cfg: config.StorageSettings{Driver: config.StoragePostgres}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeStore, err := openSchedulerStore(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, store)
			assert.NoError(t, closeStore())
		})
	}
}

func TestOpenConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.toml")
	store, err := openConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
}
