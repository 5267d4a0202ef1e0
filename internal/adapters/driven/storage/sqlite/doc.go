// Package sqlite stores scheduler state and refresh-run history in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The schema is managed through versioned migrations in the
// migrations/ directory, embedded at compile time; each applied version is
// recorded in schema_migrations.
//
// By default, the database is stored at ~/.hub/data/hub.db in WAL mode.
package sqlite
