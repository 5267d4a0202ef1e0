package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedID(t *testing.T) {
	assert.Equal(t, "gmail:18c2f", UnifiedID(SourceGmail, "18c2f"))
	assert.NotEqual(t, UnifiedID(SourceGmail, "1"), UnifiedID(SourceOutlook, "1"))
}

func TestIdentity_String(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		expected string
	}{
		{"name and email", Identity{Name: "Ada", Email: "ada@example.com"}, "Ada <ada@example.com>"},
		{"name only", Identity{Name: "Ada"}, "Ada"},
		{"email only", Identity{Email: "ada@example.com"}, "ada@example.com"},
		{"id only", Identity{ID: "U123"}, "U123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.identity.String())
		})
	}
}

func TestUnifiedEmail_Matches(t *testing.T) {
	email := UnifiedEmail{Subject: "Invoice #42", BodyText: "Please pay by Friday"}

	assert.True(t, email.Matches("invoice"))
	assert.True(t, email.Matches("FRIDAY"))
	assert.False(t, email.Matches("receipt"))
}

func TestUnifiedMessage_Matches(t *testing.T) {
	msg := UnifiedMessage{Content: "Lunch at Noon?"}

	assert.True(t, msg.Matches("noon"))
	assert.False(t, msg.Matches("dinner"))
}

func TestUnifiedNote_Matches(t *testing.T) {
	note := UnifiedNote{Title: "Groceries", Content: "milk, eggs"}

	assert.True(t, note.Matches("GROC"))
	assert.True(t, note.Matches("Eggs"))
	assert.False(t, note.Matches("bread"))
}

func TestUnifiedEmail_IsFlagged(t *testing.T) {
	tests := []struct {
		importance Importance
		flagged    bool
	}{
		{ImportanceNone, false},
		{ImportanceLow, false},
		{ImportanceNormal, false},
		{ImportanceHigh, true},
		{ImportanceUrgent, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.importance), func(t *testing.T) {
			e := UnifiedEmail{Importance: tt.importance}
			assert.Equal(t, tt.flagged, e.IsFlagged())
		})
	}
}

func TestValid(t *testing.T) {
	raw := json.RawMessage(`{}`)

	assert.True(t, (&UnifiedMessage{ID: "x:1", SourceType: SourceTeams, RawData: raw}).Valid())
	assert.False(t, (&UnifiedMessage{ID: "x:1", SourceType: SourceTeams}).Valid())
	assert.False(t, (&UnifiedEmail{SourceType: SourceGmail, RawData: raw}).Valid())
	assert.True(t, (&UnifiedNote{ID: "n:1", SourceType: SourceNotion, RawData: raw}).Valid())
}

func TestRawJSON(t *testing.T) {
	raw := RawJSON(map[string]any{"id": "abc", "ts": time.Unix(0, 0).UTC()})
	require.NotNil(t, raw)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "abc", decoded["id"])

	// Channels cannot be marshalled; RawData must still be non-nil.
	assert.Equal(t, json.RawMessage("{}"), RawJSON(make(chan int)))
}

func TestParseSourceType(t *testing.T) {
	st, err := ParseSourceType(" Gmail ")
	require.NoError(t, err)
	assert.Equal(t, SourceGmail, st)

	_, err = ParseSourceType("myspace")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCapabilityPriority_Rank(t *testing.T) {
	p := DefaultCapabilityPriority()

	assert.Equal(t, 0, p.Rank(CapabilityMail))
	assert.Equal(t, 1, p.Rank(CapabilityNote))
	assert.Equal(t, 2, p.Rank(CapabilityMessage))
	assert.Equal(t, 3, p.Rank(Capability("calendar")))
}
