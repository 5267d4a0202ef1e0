package domain

import "time"

// ActionType is the kind of follow-up a NextAction suggests.
type ActionType string

const (
	ActionReplyEmail   ActionType = "reply_email"
	ActionReplyMessage ActionType = "reply_message"
	ActionReviewNote   ActionType = "review_note"
)

// ActionPriority is a coarse label derived from the item's importance.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// NextAction is a ranked suggestion of what to attend to next.
type NextAction struct {
	Type        ActionType
	Priority    ActionPriority
	Description string

	Capability Capability
	SourceType SourceType

	// ItemID is the unified ID of the underlying item.
	ItemID string

	// Flagged is true for important messages and high priority emails.
	Flagged bool

	// Score is the combined ranking score. Higher ranks first.
	Score float64

	Timestamp time.Time
}

// RankingConfig tunes GetNextActions.
type RankingConfig struct {
	// ImportanceWeight is added for flagged items. It must exceed
	// RecencyWeight so flagged items always rank above unflagged ones.
	ImportanceWeight float64

	// RecencyWeight scales the exponential recency decay in [0, 1].
	RecencyWeight float64

	// HalfLife is the age at which the recency term halves.
	HalfLife time.Duration

	// NoteWindow limits note candidates to recently modified notes.
	NoteWindow time.Duration

	// Priority breaks ties between capabilities.
	Priority CapabilityPriority
}

// DefaultRankingConfig returns the default ranking weights.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		ImportanceWeight: 10,
		RecencyWeight:    1,
		HalfLife:         24 * time.Hour,
		NoteWindow:       72 * time.Hour,
		Priority:         DefaultCapabilityPriority(),
	}
}
