package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// at returns baseTime shifted by n minutes.
func at(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Minute)
}

// fakeSource implements the lifecycle half of driven.Source.
type fakeSource struct {
	st   domain.SourceType
	caps domain.Capabilities

	mu            sync.Mutex
	connected     bool
	connects      int
	disconnects   int
	connectErr    error
	disconnectErr error
}

func (f *fakeSource) SourceType() domain.SourceType     { return f.st }
func (f *fakeSource) Capabilities() domain.Capabilities { return f.caps }

func (f *fakeSource) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected {
		return nil
	}
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connects++
	f.connected = true
	return nil
}

func (f *fakeSource) Disconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.connected = false
	return f.disconnectErr
}

func (f *fakeSource) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// mockMessages implements driven.MessageSource.
type mockMessages struct {
	fakeSource
	items    []domain.UnifiedMessage
	fetchErr error
	fetches  atomic.Int32
	searches atomic.Int32
	sent     []domain.OutgoingMessage
}

func newMockMessages(st domain.SourceType, items ...domain.UnifiedMessage) *mockMessages {
	return &mockMessages{
		fakeSource: fakeSource{st: st, caps: domain.Capabilities{CanReceive: true, ConcurrentSafe: true}, connected: true},
		items:      items,
	}
}

func (m *mockMessages) FetchMessages(_ context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	m.fetches.Add(1)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return domain.FilterMessages(m.items, q), nil
}

func (m *mockMessages) SearchMessages(_ context.Context, query string, limit int) ([]domain.UnifiedMessage, error) {
	m.searches.Add(1)
	var out []domain.UnifiedMessage
	for i := range m.items {
		if m.items[i].Matches(query) && len(out) < limit {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockMessages) SendMessage(_ context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	sent := message(m.st, "sent", baseTime, msg.Content)
	return &sent, nil
}

// mockMail implements driven.MailSource.
type mockMail struct {
	fakeSource
	items    []domain.UnifiedEmail
	fetchErr error
	delay    time.Duration
	fetches  atomic.Int32
	searches atomic.Int32
	sent     []domain.OutgoingEmail
}

func newMockMail(st domain.SourceType, items ...domain.UnifiedEmail) *mockMail {
	return &mockMail{
		fakeSource: fakeSource{st: st, caps: domain.Capabilities{CanReceive: true, ConcurrentSafe: true}, connected: true},
		items:      items,
	}
}

func (m *mockMail) FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	m.fetches.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return domain.FilterEmails(m.items, q), nil
}

func (m *mockMail) SearchEmails(_ context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	m.searches.Add(1)
	var out []domain.UnifiedEmail
	for i := range m.items {
		if m.items[i].Matches(query) && len(out) < limit {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockMail) SendEmail(_ context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	sent := mail(m.st, "sent", baseTime, email.Subject)
	return &sent, nil
}

// mockNotes implements driven.NoteSource and driven.Watcher.
type mockNotes struct {
	fakeSource
	items    []domain.UnifiedNote
	fetchErr error
	fetches  atomic.Int32
	created  []domain.NewNote
	events   chan domain.SourceEvent
}

func newMockNotes(st domain.SourceType, items ...domain.UnifiedNote) *mockNotes {
	return &mockNotes{
		fakeSource: fakeSource{st: st, caps: domain.Capabilities{CanReceive: true, ConcurrentSafe: true}, connected: true},
		items:      items,
	}
}

func (m *mockNotes) FetchNotes(_ context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	m.fetches.Add(1)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return domain.FilterNotes(m.items, q), nil
}

func (m *mockNotes) SearchNotes(context.Context, string, int) ([]domain.UnifiedNote, error) {
	return nil, errors.New("not supported")
}

func (m *mockNotes) CreateNote(_ context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, note)
	created := noteAt(m.st, "new", baseTime, note.Title)
	return &created, nil
}

func (m *mockNotes) Watch(ctx context.Context) (<-chan domain.SourceEvent, error) {
	out := make(chan domain.SourceEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-m.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ensure mocks implement interfaces
var (
	_ driven.MessageSource = (*mockMessages)(nil)
	_ driven.MailSource    = (*mockMail)(nil)
	_ driven.NoteSource    = (*mockNotes)(nil)
	_ driven.Watcher       = (*mockNotes)(nil)
)

// --- Entity builders ---

func message(st domain.SourceType, id string, ts time.Time, content string) domain.UnifiedMessage {
	return domain.UnifiedMessage{
		ID:         domain.UnifiedID(st, id),
		SourceType: st,
		SourceID:   id,
		Content:    content,
		FromUser:   domain.Identity{ID: "u1", Name: "Ana"},
		Timestamp:  ts,
		RawData:    []byte(`{"id":"` + id + `"}`),
	}
}

func mail(st domain.SourceType, id string, ts time.Time, subject string) domain.UnifiedEmail {
	return domain.UnifiedEmail{
		ID:          domain.UnifiedID(st, id),
		SourceType:  st,
		SourceID:    id,
		Subject:     subject,
		BodyText:    "body of " + subject,
		FromAddress: domain.Identity{Name: "Bob", Email: "bob@example.com"},
		Timestamp:   ts,
		Importance:  domain.ImportanceNormal,
		RawData:     []byte(`{"id":"` + id + `"}`),
	}
}

func noteAt(st domain.SourceType, id string, ts time.Time, title string) domain.UnifiedNote {
	return domain.UnifiedNote{
		ID:           domain.UnifiedID(st, id),
		SourceType:   st,
		SourceID:     id,
		Title:        title,
		Content:      "content of " + title,
		LastModified: ts,
		RawData:      []byte(`{"id":"` + id + `"}`),
	}
}

func ids[T any](items []T, id func(*T) string) []string {
	out := make([]string, 0, len(items))
	for i := range items {
		out = append(out, id(&items[i]))
	}
	return out
}

func emailIDs(items []domain.UnifiedEmail) []string {
	return ids(items, emailEntity.id)
}

func messageIDs(items []domain.UnifiedMessage) []string {
	return ids(items, messageEntity.id)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
