package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func TestConnectorRegistry_RegisterAndGet(t *testing.T) {
	r := NewConnectorRegistry()
	gmail := newMockMail(domain.SourceGmail)
	teams := newMockMessages(domain.SourceTeams)
	notion := newMockNotes(domain.SourceNotion)

	r.RegisterMailSource(gmail)
	r.RegisterMessageSource(teams)
	r.RegisterNoteSource(notion)

	got, ok := r.GetMailSource(domain.SourceGmail)
	require.True(t, ok)
	assert.Same(t, gmail, got)

	_, ok = r.GetMailSource(domain.SourceOutlook)
	assert.False(t, ok)

	_, ok = r.GetMessageSource(domain.SourceGmail)
	assert.False(t, ok, "lookup is keyed by capability and source type")

	assert.Equal(t, 3, r.Len())
	assert.True(t, r.IsRegistered(domain.CapabilityNote, domain.SourceNotion))
	assert.False(t, r.IsRegistered(domain.CapabilityMail, domain.SourceNotion))
}

func TestConnectorRegistry_LastWriteWins(t *testing.T) {
	r := NewConnectorRegistry()
	first := newMockMail(domain.SourceGmail)
	second := newMockMail(domain.SourceGmail)

	r.RegisterMailSource(first)
	r.RegisterMailSource(second)

	got, ok := r.GetMailSource(domain.SourceGmail)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Len(t, r.MailSources(), 1)
}

func TestConnectorRegistry_SortedEnumeration(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceOutlook))
	r.RegisterMailSource(newMockMail(domain.SourceGmail))
	r.RegisterMailSource(newMockMail(domain.SourceIMAP))
	r.RegisterMessageSource(newMockMessages(domain.SourceTeams))
	r.RegisterNoteSource(newMockNotes(domain.SourceNotion))

	assert.Equal(t,
		[]domain.SourceType{domain.SourceGmail, domain.SourceIMAP, domain.SourceOutlook},
		r.Types(domain.CapabilityMail))

	var order []domain.SourceType
	for _, src := range r.MailSources() {
		order = append(order, src.SourceType())
	}
	assert.Equal(t, r.Types(domain.CapabilityMail), order)

	all := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, domain.CapabilityMail, all[0].Capability)
	assert.Equal(t, domain.CapabilityNote, all[3].Capability)
	assert.Equal(t, domain.CapabilityMessage, all[4].Capability)
}

func TestConnectorRegistry_UnregisterAndClear(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail))
	r.RegisterNoteSource(newMockNotes(domain.SourceNotion))

	r.Unregister(domain.CapabilityMail, domain.SourceGmail)
	r.Unregister(domain.CapabilityMail, domain.SourceOutlook) // absent is a no-op
	assert.Empty(t, r.MailSources())
	assert.Equal(t, 1, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.NotEmpty(t, r.List(), "catalogue survives Clear")
}

func TestConnectorRegistry_ConcurrentAccess(t *testing.T) {
	r := NewConnectorRegistry()
	r.RegisterMailSource(newMockMail(domain.SourceGmail))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.MailSources()
			_, _ = r.GetMailSource(domain.SourceGmail)
		}()
		go func() {
			defer wg.Done()
			r.RegisterMessageSource(newMockMessages(domain.SourceTeams))
		}()
	}
	wg.Wait()

	assert.Len(t, r.MessageSources(), 1)
}

func TestConnectorRegistry_Catalogue(t *testing.T) {
	r := NewConnectorRegistry()

	list := r.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}

	tests := []struct {
		id         string
		capability domain.Capability
		auth       domain.AuthMethod
	}{
		{"gmail", domain.CapabilityMail, domain.AuthMethodOAuth},
		{"imap", domain.CapabilityMail, domain.AuthMethodPassword},
		{"outlook", domain.CapabilityMail, domain.AuthMethodOAuth},
		{"teams", domain.CapabilityMessage, domain.AuthMethodOAuth},
		{"onenote", domain.CapabilityNote, domain.AuthMethodOAuth},
		{"github", domain.CapabilityMessage, domain.AuthMethodToken},
		{"notion", domain.CapabilityNote, domain.AuthMethodToken},
		{"filesystem", domain.CapabilityNote, domain.AuthMethodNone},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ct, err := r.Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.capability, ct.Capability)
			assert.Equal(t, tt.auth, ct.AuthMethod)
			assert.Equal(t, tt.auth != domain.AuthMethodNone, ct.RequiresAuth())
		})
	}

	_, err := r.Get("whatsapp")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnectorRegistry_ValidateConfig(t *testing.T) {
	r := NewConnectorRegistry()

	assert.NoError(t, r.ValidateConfig("filesystem", map[string]string{"path": "/notes"}))
	assert.ErrorIs(t, r.ValidateConfig("filesystem", map[string]string{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.ValidateConfig("nope", nil), domain.ErrNotFound)
}
