// Package connectors builds provider adapters from configuration.
//
// Each adapter lives in its own sub-package and implements one or more of
// the driven capability interfaces (MessageSource, MailSource,
// NoteSource). The Factory maps adapter IDs to builders, and Load reads
// the [providers.<id>] sections of the config store, builds each enabled
// adapter, wraps it in the resilience middleware and registers it by
// capability.
package connectors
