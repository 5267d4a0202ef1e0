// Package memory provides in-memory ConfigStore and SchedulerStore
// implementations for tests and for running without a database.
package memory
