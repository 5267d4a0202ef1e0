package domain

import "strings"

// SourceType identifies the provider an entity came from.
type SourceType string

const (
	SourceWhatsApp   SourceType = "whatsapp"
	SourceTeams      SourceType = "teams"
	SourceSlack      SourceType = "slack"
	SourceOutlook    SourceType = "outlook"
	SourceGmail      SourceType = "gmail"
	SourceIMAP       SourceType = "imap"
	SourceOneNote    SourceType = "onenote"
	SourceNotion     SourceType = "notion"
	SourceGitHub     SourceType = "github"
	SourceFilesystem SourceType = "filesystem"
	SourceTelegram   SourceType = "telegram"
	SourceSMS        SourceType = "sms"
	SourceAppleMail  SourceType = "apple_mail"
	SourceCustom     SourceType = "custom"
)

// String returns the source type identifier.
func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType normalises a user supplied source type.
// Returns ErrUnsupportedType for unknown identifiers.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case SourceWhatsApp, SourceTeams, SourceSlack, SourceOutlook, SourceGmail,
		SourceIMAP, SourceOneNote, SourceNotion, SourceGitHub, SourceFilesystem,
		SourceTelegram, SourceSMS, SourceAppleMail, SourceCustom:
		return st, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Capability is one of the three provider roles the hub aggregates.
type Capability string

const (
	// CapabilityMessage covers chat and instant messaging providers.
	CapabilityMessage Capability = "message"
	// CapabilityMail covers email providers.
	CapabilityMail Capability = "mail"
	// CapabilityNote covers note-taking providers.
	CapabilityNote Capability = "note"
)

// AllCapabilities lists every capability in default priority order.
var AllCapabilities = []Capability{CapabilityMail, CapabilityNote, CapabilityMessage}

// CapabilityPriority orders capabilities when ranking otherwise equal items.
// A lower index wins.
type CapabilityPriority []Capability

// DefaultCapabilityPriority ranks mail above notes above messages.
func DefaultCapabilityPriority() CapabilityPriority {
	return CapabilityPriority{CapabilityMail, CapabilityNote, CapabilityMessage}
}

// Rank returns the position of c in the priority list.
// Capabilities not present rank after all listed ones.
func (p CapabilityPriority) Rank(c Capability) int {
	for i, pc := range p {
		if pc == c {
			return i
		}
	}
	return len(p)
}

// Capabilities describes what an adapter supports.
// The flags are fixed for the lifetime of an adapter instance.
type Capabilities struct {
	// === Operations ===

	// CanSend indicates the adapter can send messages or emails, or create notes.
	CanSend bool

	// CanReceive indicates the adapter can fetch items.
	CanReceive bool

	// CanSearch indicates the provider supports server-side search.
	// Without it the unified service filters fetched items locally.
	CanSearch bool

	// CanSubscribe indicates the adapter can push change events via Watch.
	CanSubscribe bool

	// === Content ===

	// SupportsThreading indicates items carry a provider thread ID.
	SupportsThreading bool

	// SupportsAttachments indicates the provider exposes attachments.
	SupportsAttachments bool

	// === Concurrency ===

	// ConcurrentSafe indicates the adapter tolerates concurrent calls.
	// When false the middleware serialises calls to the instance.
	ConcurrentSafe bool
}
