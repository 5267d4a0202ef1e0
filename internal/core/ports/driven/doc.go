// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and provider adapters and
// storage adapters implement them.
//
// # Provider Interfaces
//
// Every adapter implements Source plus at least one capability interface:
//
//   - MessageSource: Chat messages (Teams, GitHub notifications)
//   - MailSource: Email (Gmail, IMAP, Outlook)
//   - NoteSource: Notes (OneNote, Notion, local notebook)
//
// Watcher is optional and only implemented by adapters that advertise
// CanSubscribe.
//
// # Infrastructure Interfaces
//
//   - ConfigStore: Application configuration
//   - SchedulerStore: Background task state and refresh history
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
