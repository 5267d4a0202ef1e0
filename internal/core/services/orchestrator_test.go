package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func TestOrchestrator_InitializeSurvivesFailingAdapter(t *testing.T) {
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail)
	gmail.connected = false
	gmail.connectErr = domain.Permanent(domain.ErrAuthInvalid)
	outlook := newMockMail(domain.SourceOutlook, mail(domain.SourceOutlook, "1", at(1), "a"))
	outlook.connected = false
	notion := newMockNotes(domain.SourceNotion)
	notion.connected = false
	r.RegisterMailSource(gmail)
	r.RegisterMailSource(outlook)
	r.RegisterNoteSource(notion)

	o := NewOrchestrator(r, OrchestratorConfig{})
	report, err := o.Initialize(context.Background())

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.ElementsMatch(t, []domain.SourceType{domain.SourceOutlook, domain.SourceNotion}, report.Connected)
	assert.Contains(t, report.Failed, domain.SourceGmail)

	status := o.Status()
	require.Len(t, status, 3)
	byType := map[domain.SourceType]domain.SourceStatus{}
	for _, s := range status {
		byType[s.SourceType] = s
	}
	assert.False(t, byType[domain.SourceGmail].Available)
	assert.False(t, byType[domain.SourceGmail].Connected)
	assert.NotEmpty(t, byType[domain.SourceGmail].LastError)
	assert.True(t, byType[domain.SourceOutlook].Available)
	assert.True(t, byType[domain.SourceOutlook].Connected)
	assert.Equal(t, []domain.Capability{domain.CapabilityNote}, byType[domain.SourceNotion].Capabilities)

	got, err := o.GetAllEmails(context.Background(), domain.EmailQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outlook:1"}, emailIDs(got))
}

func TestOrchestrator_InitializeIsIdempotent(t *testing.T) {
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail)
	gmail.connected = false
	r.RegisterMailSource(gmail)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)
	_, err = o.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, gmail.connects)
}

func TestOrchestrator_InitializeCancelled(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail))
	o := NewOrchestrator(r, OrchestratorConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Initialize(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_StatusMergesCapabilitiesPerSourceType(t *testing.T) {
	r := NewConnectorRegistry()
	outlookMail := newMockMail(domain.SourceOutlook)
	outlookMail.caps.CanSend = true
	r.RegisterMailSource(outlookMail)
	outlookNotes := newMockNotes(domain.SourceOutlook)
	outlookNotes.caps.CanSearch = true
	r.RegisterNoteSource(outlookNotes)

	status := NewOrchestrator(r, OrchestratorConfig{}).Status()

	require.Len(t, status, 1)
	assert.Equal(t, []domain.Capability{domain.CapabilityMail, domain.CapabilityNote}, status[0].Capabilities)
	assert.True(t, status[0].Flags.CanSend)
	assert.True(t, status[0].Flags.CanSearch)
	assert.True(t, status[0].Available)
}

func TestOrchestrator_SearchAcrossSources(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail,
		mail(domain.SourceGmail, "1", at(1), "Invoice #42"),
		mail(domain.SourceGmail, "2", at(2), "Lunch"),
	))
	r.RegisterMessageSource(newMockMessages(domain.SourceTeams,
		message(domain.SourceTeams, "1", at(3), "did you pay the invoice?"),
	))
	broken := newMockNotes(domain.SourceNotion)
	broken.fetchErr = domain.Transient(errors.New("503"))
	r.RegisterNoteSource(broken)

	o := NewOrchestrator(r, OrchestratorConfig{})
	res, err := o.SearchAcrossSources(context.Background(), "invoice", 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"gmail:1"}, emailIDs(res.Emails))
	assert.Equal(t, []string{"teams:1"}, messageIDs(res.Messages))
	assert.NotNil(t, res.Notes)
	assert.Empty(t, res.Notes)

	_, err = o.SearchAcrossSources(context.Background(), "", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrchestrator_SearchFailsWhenEveryCapabilityFailed(t *testing.T) {
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail)
	gmail.fetchErr = domain.Permanent(domain.ErrAuthInvalid)
	r.RegisterMailSource(gmail)

	_, err := NewOrchestrator(r, OrchestratorConfig{}).SearchAcrossSources(context.Background(), "x", 10)

	assert.ErrorIs(t, err, domain.ErrAllSourcesFailed)
}

func TestOrchestrator_GetNextActions(t *testing.T) {
	clock := newFakeClock(at(0))
	r := NewConnectorRegistry()

	urgent := mail(domain.SourceGmail, "urgent", at(-300), "Contract")
	urgent.Importance = domain.ImportanceHigh
	read := mail(domain.SourceGmail, "read", at(-1), "Old news")
	read.IsRead = true
	r.RegisterMailSource(newMockMail(domain.SourceGmail, urgent, read, mail(domain.SourceGmail, "new", at(-2), "Hi")))
	r.RegisterMessageSource(newMockMessages(domain.SourceTeams, message(domain.SourceTeams, "m", at(-10), "ping")))
	r.RegisterNoteSource(newMockNotes(domain.SourceNotion,
		noteAt(domain.SourceNotion, "fresh", at(-60), "Plan"),
		noteAt(domain.SourceNotion, "stale", at(-60*24*10), "Archive"),
	))

	o := NewOrchestrator(r, OrchestratorConfig{Now: clock.Now})
	got, err := o.GetNextActions(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"gmail:urgent", "gmail:new", "teams:m", "notion:fresh"}, itemIDs(got))
	assert.Equal(t, domain.PriorityHigh, got[0].Priority)

	limited, err := o.GetNextActions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"gmail:urgent"}, itemIDs(limited))
}

func TestOrchestrator_GetNextActionsToleratesPartialFailure(t *testing.T) {
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail)
	gmail.fetchErr = domain.Permanent(domain.ErrAuthInvalid)
	r.RegisterMailSource(gmail)
	r.RegisterMessageSource(newMockMessages(domain.SourceTeams, message(domain.SourceTeams, "m", at(-1), "ping")))

	o := NewOrchestrator(r, OrchestratorConfig{Now: newFakeClock(at(0)).Now})
	got, err := o.GetNextActions(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"teams:m"}, itemIDs(got))
}

func TestOrchestrator_SendInvalidatesCapabilityCache(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a"))
	gmail.caps.CanSend = true
	notion := newMockNotes(domain.SourceNotion, noteAt(domain.SourceNotion, "1", at(1), "n"))
	notion.caps.CanSend = true
	r.RegisterMailSource(gmail)
	r.RegisterNoteSource(notion)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	_, _ = o.GetAllNotes(ctx, domain.NoteQuery{})
	require.Equal(t, 1, o.Cache().Len(domain.CapabilityMail))
	require.Equal(t, 1, o.Cache().Len(domain.CapabilityNote))

	_, err := o.SendEmail(ctx, domain.OutgoingEmail{SourceType: domain.SourceGmail, To: []string{"a@b"}, Subject: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 0, o.Cache().Len(domain.CapabilityMail))
	assert.Equal(t, 1, o.Cache().Len(domain.CapabilityNote), "other capabilities keep their entries")

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	assert.Equal(t, int32(2), gmail.fetches.Load())

	_, err = o.CreateNote(ctx, domain.NewNote{SourceType: domain.SourceNotion, Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, 0, o.Cache().Len(domain.CapabilityNote))
}

func TestOrchestrator_FailedSendKeepsCache(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a")))
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	_, err := o.SendEmail(ctx, domain.OutgoingEmail{SourceType: domain.SourceGmail, To: []string{"a@b"}})

	require.Error(t, err)
	assert.True(t, domain.IsCapabilityMisuse(err))
	assert.Equal(t, 1, o.Cache().Len(domain.CapabilityMail))
}

func TestOrchestrator_RefreshAll(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a"), mail(domain.SourceGmail, "2", at(2), "b"))
	outlook := newMockMail(domain.SourceOutlook)
	outlook.fetchErr = domain.Transient(errors.New("503"))
	teams := newMockMessages(domain.SourceTeams, message(domain.SourceTeams, "1", at(1), "x"))
	r.RegisterMailSource(gmail)
	r.RegisterMailSource(outlook)
	r.RegisterMessageSource(teams)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	report, err := o.RefreshAll(ctx)

	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 2, report.Emails)
	assert.Equal(t, 1, report.Messages)
	assert.Equal(t, 0, report.Notes)
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, []domain.SourceType{domain.SourceOutlook}, report.Failed)
	assert.Equal(t, int32(2), gmail.fetches.Load(), "refresh bypasses the cached entry")

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	assert.Equal(t, int32(2), gmail.fetches.Load(), "refresh repopulates the cache")

	var outlookStatus domain.SourceStatus
	for _, s := range o.Status() {
		if s.SourceType == domain.SourceOutlook {
			outlookStatus = s
		}
	}
	assert.Contains(t, outlookStatus.LastError, "503")
}

func TestOrchestrator_RefreshInvalidates(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a"))
	r.RegisterMailSource(gmail)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	o.Refresh(domain.CapabilityMail)
	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})

	assert.Equal(t, int32(2), gmail.fetches.Load())
}

func TestOrchestrator_WatchEventsInvalidateNoteCache(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	notes := newMockNotes(domain.SourceFilesystem, noteAt(domain.SourceFilesystem, "a.md", at(1), "a"))
	notes.caps.CanSubscribe = true
	notes.events = make(chan domain.SourceEvent)
	r.RegisterNoteSource(notes)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, err := o.Initialize(ctx)
	require.NoError(t, err)
	_, _ = o.GetAllNotes(ctx, domain.NoteQuery{})
	require.Equal(t, 1, o.Cache().Len(domain.CapabilityNote))

	notes.events <- domain.SourceEvent{
		Type:       domain.ChangeUpdated,
		Capability: domain.CapabilityNote,
		SourceType: domain.SourceFilesystem,
		ItemID:     "filesystem:a.md",
	}

	select {
	case ev := <-o.Events():
		assert.Equal(t, "filesystem:a.md", ev.ItemID)
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded")
	}
	assert.Equal(t, 0, o.Cache().Len(domain.CapabilityNote))

	require.NoError(t, o.Shutdown(ctx))
}

func TestOrchestrator_ShutdownIsBestEffort(t *testing.T) {
	ctx := context.Background()
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail, mail(domain.SourceGmail, "1", at(1), "a"))
	gmail.disconnectErr = errors.New("socket closed")
	outlook := newMockMail(domain.SourceOutlook)
	notion := newMockNotes(domain.SourceNotion)
	r.RegisterMailSource(gmail)
	r.RegisterMailSource(outlook)
	r.RegisterNoteSource(notion)
	o := NewOrchestrator(r, OrchestratorConfig{})

	_, _ = o.GetAllEmails(ctx, domain.EmailQuery{})
	err := o.Shutdown(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gmail")
	assert.Equal(t, 1, outlook.disconnects)
	assert.Equal(t, 1, notion.disconnects)
	assert.False(t, outlook.IsConnected())
	assert.Equal(t, 0, o.Cache().Len(domain.CapabilityMail))
}
