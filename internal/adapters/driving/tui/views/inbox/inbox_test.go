package inbox

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/list"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

func newTestView() (*View, *mockOrchestrator) {
	orch := &mockOrchestrator{
		actions: []domain.NextAction{{Description: "Reply to Ana", SourceType: domain.SourceGmail, ItemID: "gmail:1"}},
		emails:  []domain.UnifiedEmail{{ID: "gmail:1", SourceType: domain.SourceGmail, Subject: "Invoice 42"}},
		messages: []domain.UnifiedMessage{
			{ID: "teams:1", SourceType: domain.SourceTeams, Content: "standup"},
			{ID: "teams:2", SourceType: domain.SourceTeams, Content: "lunch?"},
		},
		notes: []domain.UnifiedNote{{ID: "notion:1", SourceType: domain.SourceNotion, Title: "Roadmap"}},
	}
	v := NewView(nil, nil, orch)
	v.SetDimensions(100, 30)
	return v, orch
}

// runBatch executes every command in a batch and feeds the results back.
func runBatch(v *View, cmd tea.Cmd) *View {
	if cmd == nil {
		return v
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			v = runBatch(v, c)
		}
	default:
		v, _ = v.Update(msg)
	}
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNewView(t *testing.T) {
	v, _ := newTestView()

	assert.Equal(t, messages.TabActions, v.ActiveTab())
	for _, tab := range messages.Tabs {
		assert.NotNil(t, v.List(tab))
	}
}

func TestView_InitLoadsEveryTab(t *testing.T) {
	v, orch := newTestView()

	v = runBatch(v, v.Init())

	assert.Equal(t, 1, v.List(messages.TabActions).Count())
	assert.Equal(t, 1, v.List(messages.TabEmails).Count())
	assert.Equal(t, 2, v.List(messages.TabMessages).Count())
	assert.Equal(t, 1, v.List(messages.TabNotes).Count())
	assert.Equal(t, DefaultLimit, orch.lastLimit)
}

func TestView_TabSwitching(t *testing.T) {
	v, _ := newTestView()

	tests := []struct {
		key  string
		want messages.Tab
	}{
		{key: "tab", want: messages.TabEmails},
		{key: "tab", want: messages.TabMessages},
		{key: "4", want: messages.TabNotes},
		{key: "tab", want: messages.TabActions},
		{key: "shift+tab", want: messages.TabNotes},
		{key: "2", want: messages.TabEmails},
		{key: "h", want: messages.TabActions},
		{key: "l", want: messages.TabEmails},
	}
	for _, tt := range tests {
		v, _ = v.Update(key(tt.key))
		assert.Equal(t, tt.want, v.ActiveTab(), "after %s", tt.key)
	}
}

func TestView_NavigatesActiveList(t *testing.T) {
	v, _ := newTestView()
	v = runBatch(v, v.Init())
	v.SetTab(messages.TabMessages)

	v, _ = v.Update(key("j"))

	assert.Equal(t, 1, v.List(messages.TabMessages).Selected())
	assert.Equal(t, 0, v.List(messages.TabEmails).Selected())
}

func TestView_EnterSelectsItem(t *testing.T) {
	v, _ := newTestView()
	v = runBatch(v, v.Init())
	v.SetTab(messages.TabEmails)

	_, cmd := v.Update(key("enter"))

	require.NotNil(t, cmd)
	sel, ok := cmd().(list.Selected)
	require.True(t, ok)
	assert.Equal(t, "gmail:1", sel.Item.ID)
}

func TestView_LoadError(t *testing.T) {
	v, orch := newTestView()
	orch.err = domain.ErrAllSourcesFailed
	orch.emails = nil

	v = runBatch(v, v.ReloadTab(messages.TabEmails))
	v.SetTab(messages.TabEmails)

	assert.ErrorIs(t, v.Err(), domain.ErrAllSourcesFailed)
	assert.Contains(t, v.View(), "all sources failed")
}

func TestView_LoadErrorKeepsPreviousItems(t *testing.T) {
	v, orch := newTestView()
	v = runBatch(v, v.Init())
	orch.err = errors.New("timeout")

	v = runBatch(v, v.ReloadTab(messages.TabNotes))

	assert.Equal(t, 1, v.List(messages.TabNotes).Count())
}

func TestView_Render(t *testing.T) {
	v, _ := newTestView()
	v = runBatch(v, v.Init())
	v.SetTab(messages.TabMessages)

	view := v.View()

	assert.Contains(t, view, "1 Next actions (1)")
	assert.Contains(t, view, "3 Messages (2)")
	assert.Contains(t, view, "standup")
	assert.Contains(t, view, "2 items")
}

func TestView_SetTabOutOfRange(t *testing.T) {
	v, _ := newTestView()

	v.SetTab(messages.Tab(9))

	assert.Equal(t, messages.TabActions, v.ActiveTab())
}

func TestView_NoticeSurvivesReloadUntilKeyPress(t *testing.T) {
	v, _ := newTestView()
	v.SetNotice("Refreshed 5 items")

	v = runBatch(v, v.Reload())
	assert.Contains(t, v.View(), "Refreshed 5 items")

	v, _ = v.Update(key("j"))
	assert.NotContains(t, v.View(), "Refreshed 5 items")
}
