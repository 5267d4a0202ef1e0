package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// actionCandidates are the items next-action ranking draws from.
type actionCandidates struct {
	Emails   []domain.UnifiedEmail
	Messages []domain.UnifiedMessage
	Notes    []domain.UnifiedNote
}

// rankActions turns unread and recently edited items into ranked suggestions.
//
// Flagged items always rank above unflagged ones. Within each group items
// are ordered by a recency score that halves every cfg.HalfLife; equal
// scores fall back to capability priority, then timestamp, then ID.
func rankActions(c actionCandidates, cfg domain.RankingConfig, now time.Time, limit int) []domain.NextAction {
	actions := make([]domain.NextAction, 0, len(c.Emails)+len(c.Messages)+len(c.Notes))

	for i := range c.Emails {
		e := &c.Emails[i]
		if e.IsRead {
			continue
		}
		actions = append(actions, newAction(cfg, now, domain.NextAction{
			Type:        domain.ActionReplyEmail,
			Description: describeEmail(e),
			Capability:  domain.CapabilityMail,
			SourceType:  e.SourceType,
			ItemID:      e.ID,
			Flagged:     e.IsFlagged(),
			Timestamp:   e.Timestamp,
		}))
	}

	for i := range c.Messages {
		m := &c.Messages[i]
		if m.IsRead {
			continue
		}
		actions = append(actions, newAction(cfg, now, domain.NextAction{
			Type:        domain.ActionReplyMessage,
			Description: describeMessage(m),
			Capability:  domain.CapabilityMessage,
			SourceType:  m.SourceType,
			ItemID:      m.ID,
			Flagged:     m.IsImportant,
			Timestamp:   m.Timestamp,
		}))
	}

	for i := range c.Notes {
		n := &c.Notes[i]
		if cfg.NoteWindow > 0 && now.Sub(n.LastModified) > cfg.NoteWindow {
			continue
		}
		actions = append(actions, newAction(cfg, now, domain.NextAction{
			Type:        domain.ActionReviewNote,
			Description: "Review note: " + orDefault(n.Title, "(untitled)"),
			Capability:  domain.CapabilityNote,
			SourceType:  n.SourceType,
			ItemID:      n.ID,
			Timestamp:   n.LastModified,
		}))
	}

	sort.SliceStable(actions, func(i, j int) bool {
		a, b := &actions[i], &actions[j]
		if a.Flagged != b.Flagged {
			return a.Flagged
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ra, rb := cfg.Priority.Rank(a.Capability), cfg.Priority.Rank(b.Capability); ra != rb {
			return ra < rb
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ItemID < b.ItemID
	})

	if limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}
	return actions
}

func newAction(cfg domain.RankingConfig, now time.Time, a domain.NextAction) domain.NextAction {
	recency := recencyScore(now.Sub(a.Timestamp), cfg.HalfLife)
	a.Score = cfg.RecencyWeight * recency
	if a.Flagged {
		a.Score += cfg.ImportanceWeight
	}

	switch {
	case a.Flagged:
		a.Priority = domain.PriorityHigh
	case recency >= 0.5:
		a.Priority = domain.PriorityMedium
	default:
		a.Priority = domain.PriorityLow
	}
	return a
}

// recencyScore decays from 1 for brand-new items towards 0.
func recencyScore(age, halfLife time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	if halfLife <= 0 {
		halfLife = 24 * time.Hour
	}
	return math.Exp(-math.Ln2 * age.Seconds() / halfLife.Seconds())
}

func describeEmail(e *domain.UnifiedEmail) string {
	from := e.FromAddress.String()
	if from == "" {
		from = "unknown sender"
	}
	return fmt.Sprintf("Reply to %s: %s", from, orDefault(e.Subject, "(no subject)"))
}

func describeMessage(m *domain.UnifiedMessage) string {
	from := m.FromUser.String()
	if from == "" {
		from = "unknown sender"
	}
	return fmt.Sprintf("Reply to %s on %s: %s", from, m.SourceType, truncate(m.Content, 80))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
