package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
)

func TestNewSearchInput(t *testing.T) {
	in := NewSearchInput(styles.DefaultStyles())

	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 50, in.Width())
}

func TestNewSearchInput_NilStyles(t *testing.T) {
	assert.NotNil(t, NewSearchInput(nil))
}

func TestSearchInput_Typing(t *testing.T) {
	in := NewSearchInput(nil)

	for _, r := range "invoice" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "invoice", in.Value())

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "invoic", in.Value())
}

func TestSearchInput_View(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("standup")

	assert.Contains(t, in.View(), "Search:")
	assert.Contains(t, in.View(), "standup")
}

func TestSearchInput_FocusBlur(t *testing.T) {
	in := NewSearchInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestSearchInput_SetWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: 100, want: 90},
		{width: 15, want: 20},
	}
	for _, tt := range tests {
		in := NewSearchInput(nil)
		in.SetWidth(tt.width)
		assert.Equal(t, tt.width, in.Width())
		assert.Equal(t, tt.want, in.field.Width)
	}
}

func TestSearchInput_Reset(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("x")

	in.Reset()

	assert.Empty(t, in.Value())
}

func TestSearchInput_Query(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("  budget review  ")

	assert.Equal(t, "budget review", in.Query())
	assert.Equal(t, "  budget review  ", in.Value())
}

func TestSearchInput_Submit(t *testing.T) {
	in := NewSearchInput(nil)

	in.SetValue("   ")
	assert.Empty(t, in.Submit())
	assert.Empty(t, in.History())

	in.SetValue("  invoice ")
	assert.Equal(t, "invoice", in.Submit())
	in.SetValue("standup")
	in.Submit()
	in.SetValue("invoice")
	in.Submit()

	assert.Equal(t, []string{"standup", "invoice"}, in.History())
}

func TestSearchInput_HistoryCapped(t *testing.T) {
	in := NewSearchInput(nil)
	for i := 0; i < historySize+5; i++ {
		in.SetValue(string(rune('a' + i)))
		in.Submit()
	}

	h := in.History()
	assert.Len(t, h, historySize)
	assert.Equal(t, string(rune('a'+historySize+4)), h[len(h)-1])
}

func TestSearchInput_Recall(t *testing.T) {
	in := NewSearchInput(nil)
	for _, q := range []string{"invoice", "standup"} {
		in.SetValue(q)
		in.Submit()
	}
	in.Reset()

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	in, _ = in.Update(up)
	assert.Equal(t, "standup", in.Value())
	in, _ = in.Update(up)
	assert.Equal(t, "invoice", in.Value())
	in, _ = in.Update(up)
	assert.Equal(t, "invoice", in.Value(), "stops at the oldest query")

	in, _ = in.Update(down)
	assert.Equal(t, "standup", in.Value())
	in, _ = in.Update(down)
	assert.Empty(t, in.Value())
	in, _ = in.Update(down)
	assert.Empty(t, in.Value())
}

func TestSearchInput_RecallNeedsFocus(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("invoice")
	in.Submit()
	in.Reset()
	in.Blur()

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Empty(t, in.Value())
}
