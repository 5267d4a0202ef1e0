package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Identity is a participant in a conversation or email.
// Any field may be empty when the provider does not expose it.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// String renders the identity for display.
func (i Identity) String() string {
	switch {
	case i.Name != "" && i.Email != "":
		return i.Name + " <" + i.Email + ">"
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return i.ID
	}
}

// UnifiedID builds the globally unique ID for a provider-native ID.
// Every adapter derives entity IDs through this function so that
// IDs from different providers never collide.
func UnifiedID(sourceType SourceType, nativeID string) string {
	return string(sourceType) + ":" + nativeID
}

// Importance is the provider-reported priority of an email.
type Importance string

const (
	ImportanceNone   Importance = ""
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
	ImportanceUrgent Importance = "urgent"
)

// UnifiedMessage is a chat message normalised from any messaging provider.
type UnifiedMessage struct {
	// ID is globally unique, built with UnifiedID.
	ID string

	// SourceType identifies the provider.
	SourceType SourceType

	// SourceID is the provider-native message ID.
	SourceID string

	// Content is the plain text body.
	Content string

	FromUser Identity
	ToUsers  []Identity

	// Timestamp is when the message was sent, in UTC.
	Timestamp time.Time

	// ThreadID groups replies when the provider supports threading.
	ThreadID string

	IsRead      bool
	IsImportant bool

	// RawData is the provider payload this entity was built from.
	RawData json.RawMessage
}

// Valid reports whether the adapter populated the mandatory fields.
func (m *UnifiedMessage) Valid() bool {
	return m.ID != "" && m.SourceType != "" && m.RawData != nil
}

// Matches reports whether the content contains query, ignoring case.
func (m *UnifiedMessage) Matches(query string) bool {
	return containsFold(m.Content, query)
}

// UnifiedEmail is an email normalised from any mail provider.
type UnifiedEmail struct {
	ID         string
	SourceType SourceType
	SourceID   string

	Subject  string
	BodyText string
	BodyHTML string

	FromAddress Identity
	ToAddresses []Identity

	// Timestamp is when the email was received, in UTC.
	Timestamp time.Time

	IsRead     bool
	Importance Importance
	ThreadID   string
	Labels     []string

	RawData json.RawMessage
}

// IsFlagged reports whether the provider marked the email high priority.
func (e *UnifiedEmail) IsFlagged() bool {
	return e.Importance == ImportanceHigh || e.Importance == ImportanceUrgent
}

// Valid reports whether the adapter populated the mandatory fields.
func (e *UnifiedEmail) Valid() bool {
	return e.ID != "" && e.SourceType != "" && e.RawData != nil
}

// Matches reports whether the subject or body contains query, ignoring case.
func (e *UnifiedEmail) Matches(query string) bool {
	return containsFold(e.Subject, query) || containsFold(e.BodyText, query)
}

// UnifiedNote is a note normalised from any note-taking provider.
type UnifiedNote struct {
	ID         string
	SourceType SourceType
	SourceID   string

	Title   string
	Content string

	// NotebookID identifies the containing notebook, section or parent page.
	NotebookID string

	// LastModified is the last edit time, in UTC.
	LastModified time.Time

	RawData json.RawMessage
}

// Valid reports whether the adapter populated the mandatory fields.
func (n *UnifiedNote) Valid() bool {
	return n.ID != "" && n.SourceType != "" && n.RawData != nil
}

// Matches reports whether the title or content contains query, ignoring case.
func (n *UnifiedNote) Matches(query string) bool {
	return containsFold(n.Title, query) || containsFold(n.Content, query)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RawJSON marshals a provider payload for RawData.
// Marshalling failures yield an empty JSON object so RawData is never nil.
func RawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 {
		return json.RawMessage("{}")
	}
	return data
}
