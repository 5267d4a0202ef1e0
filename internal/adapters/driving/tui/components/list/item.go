package list

import (
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// Kind is what an item was built from.
type Kind string

const (
	KindAction  Kind = "action"
	KindEmail   Kind = "email"
	KindMessage Kind = "message"
	KindNote    Kind = "note"
)

// Field is a labelled value shown in the detail view.
type Field struct {
	Label string
	Value string
}

// Item is one row of any list, flattened from a unified entity.
type Item struct {
	ID      string
	Kind    Kind
	Source  domain.SourceType
	Title   string
	Preview string
	Body    string
	When    time.Time
	Unread  bool
	Flagged bool
	Fields  []Field
}

// Selected is sent when an item is opened.
type Selected struct {
	Item Item
}

// FromActions converts ranked next actions.
func FromActions(actions []domain.NextAction) []Item {
	items := make([]Item, 0, len(actions))
	for i := range actions {
		a := &actions[i]
		items = append(items, Item{
			ID:      a.ItemID,
			Kind:    KindAction,
			Source:  a.SourceType,
			Title:   a.Description,
			Preview: string(a.Priority) + " priority",
			Body:    a.Description,
			When:    a.Timestamp,
			Flagged: a.Flagged,
			Fields: []Field{
				{Label: "Action", Value: string(a.Type)},
				{Label: "Priority", Value: string(a.Priority)},
				{Label: "Item", Value: a.ItemID},
			},
		})
	}
	return items
}

// FromEmails converts unified emails.
func FromEmails(emails []domain.UnifiedEmail) []Item {
	items := make([]Item, 0, len(emails))
	for i := range emails {
		e := &emails[i]
		subject := e.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		items = append(items, Item{
			ID:      e.ID,
			Kind:    KindEmail,
			Source:  e.SourceType,
			Title:   subject,
			Preview: e.FromAddress.String(),
			Body:    e.BodyText,
			When:    e.Timestamp,
			Unread:  !e.IsRead,
			Flagged: e.IsFlagged(),
			Fields: []Field{
				{Label: "From", Value: e.FromAddress.String()},
				{Label: "To", Value: identities(e.ToAddresses)},
				{Label: "Labels", Value: strings.Join(e.Labels, ", ")},
			},
		})
	}
	return items
}

// FromMessages converts unified chat messages.
func FromMessages(msgs []domain.UnifiedMessage) []Item {
	items := make([]Item, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		items = append(items, Item{
			ID:      m.ID,
			Kind:    KindMessage,
			Source:  m.SourceType,
			Title:   m.Content,
			Preview: m.FromUser.String(),
			Body:    m.Content,
			When:    m.Timestamp,
			Unread:  !m.IsRead,
			Flagged: m.IsImportant,
			Fields: []Field{
				{Label: "From", Value: m.FromUser.String()},
				{Label: "To", Value: identities(m.ToUsers)},
				{Label: "Thread", Value: m.ThreadID},
			},
		})
	}
	return items
}

// FromNotes converts unified notes.
func FromNotes(notes []domain.UnifiedNote) []Item {
	items := make([]Item, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		items = append(items, Item{
			ID:      n.ID,
			Kind:    KindNote,
			Source:  n.SourceType,
			Title:   title,
			Preview: n.Content,
			Body:    n.Content,
			When:    n.LastModified,
			Fields: []Field{
				{Label: "Notebook", Value: n.NotebookID},
			},
		})
	}
	return items
}

// FromSearch flattens search results: emails, then messages, then notes.
func FromSearch(r *driving.SearchResults) []Item {
	if r == nil {
		return nil
	}
	items := FromEmails(r.Emails)
	items = append(items, FromMessages(r.Messages)...)
	return append(items, FromNotes(r.Notes)...)
}

func identities(ids []domain.Identity) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if s := id.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
