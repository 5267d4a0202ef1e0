package domain

import "time"

// DefaultFetchLimit applies when a query does not set a limit.
const DefaultFetchLimit = 50

// Window bounds a fetch.
type Window struct {
	// Limit is a positive upper bound on returned items.
	// Zero means DefaultFetchLimit.
	Limit int

	// Since is an inclusive lower bound on the item timestamp.
	Since *time.Time

	// SourceTypes restricts aggregation to the listed providers.
	// Empty means every registered provider.
	SourceTypes []SourceType
}

// EffectiveLimit returns Limit or the default when unset.
func (w Window) EffectiveLimit() int {
	if w.Limit <= 0 {
		return DefaultFetchLimit
	}
	return w.Limit
}

// Includes reports whether t falls inside the window.
func (w Window) Includes(t time.Time) bool {
	return w.Since == nil || !t.Before(*w.Since)
}

// WantsSource reports whether st passes the source type filter.
func (w Window) WantsSource(st SourceType) bool {
	if len(w.SourceTypes) == 0 {
		return true
	}
	for _, s := range w.SourceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// MessageQuery filters a message fetch.
type MessageQuery struct {
	Window
	UnreadOnly bool
	ThreadID   string
}

// EmailQuery filters an email fetch.
type EmailQuery struct {
	Window
	UnreadOnly bool
	Folder     string
}

// NoteQuery filters a note fetch.
type NoteQuery struct {
	Window
	NotebookID string
}

// OutgoingMessage is a chat message to send.
type OutgoingMessage struct {
	SourceType SourceType
	// To is a provider-native recipient or chat ID.
	To       string
	Content  string
	ThreadID string
}

// OutgoingEmail is an email to send.
type OutgoingEmail struct {
	SourceType SourceType
	To         []string
	Cc         []string
	Subject    string
	Body       string
	HTML       bool
}

// NewNote is a note to create.
type NewNote struct {
	SourceType SourceType
	Title      string
	Content    string
	NotebookID string
}

// FilterMessages applies a message query client-side.
// Adapters use it when the provider cannot filter natively.
func FilterMessages(items []UnifiedMessage, q MessageQuery) []UnifiedMessage {
	out := make([]UnifiedMessage, 0, len(items))
	for i := range items {
		m := items[i]
		if !q.Includes(m.Timestamp) {
			continue
		}
		if q.UnreadOnly && m.IsRead {
			continue
		}
		if q.ThreadID != "" && m.ThreadID != q.ThreadID {
			continue
		}
		out = append(out, m)
		if len(out) == q.EffectiveLimit() {
			break
		}
	}
	return out
}

// FilterEmails applies an email query client-side.
func FilterEmails(items []UnifiedEmail, q EmailQuery) []UnifiedEmail {
	out := make([]UnifiedEmail, 0, len(items))
	for i := range items {
		e := items[i]
		if !q.Includes(e.Timestamp) {
			continue
		}
		if q.UnreadOnly && e.IsRead {
			continue
		}
		out = append(out, e)
		if len(out) == q.EffectiveLimit() {
			break
		}
	}
	return out
}

// FilterNotes applies a note query client-side.
func FilterNotes(items []UnifiedNote, q NoteQuery) []UnifiedNote {
	out := make([]UnifiedNote, 0, len(items))
	for i := range items {
		n := items[i]
		if !q.Includes(n.LastModified) {
			continue
		}
		if q.NotebookID != "" && n.NotebookID != q.NotebookID {
			continue
		}
		out = append(out, n)
		if len(out) == q.EffectiveLimit() {
			break
		}
	}
	return out
}
