// Package domain holds the provider-neutral model of the hub.
//
// Every adapter converts its payloads into UnifiedMessage, UnifiedEmail or
// UnifiedNote, keyed by UnifiedID ("<source>:<native id>") and stamped in
// UTC. Capabilities describe what an adapter can do; NextAction is the
// ranked view over unread and flagged items; ProviderError and the
// sentinel errors carry the transient or permanent classification the
// middleware acts on.
//
// The package imports only the standard library.
package domain
