// Package inbox provides the tabbed inbox view: next actions, emails,
// messages and notes from every source.
package inbox

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/list"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/status"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// DefaultLimit is how many items each tab loads.
const DefaultLimit = 50

// View is the tabbed inbox.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	lists     map[messages.Tab]*list.ItemList
	errs      map[messages.Tab]error
	loading   map[messages.Tab]bool

	orchestrator driving.Orchestrator
	ctx          context.Context

	active messages.Tab
	notice string
	limit  int
	width  int
	height int
}

// NewView creates the inbox view.
func NewView(s *styles.Styles, km *keymap.KeyMap, orch driving.Orchestrator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:       s,
		keymap:       km,
		statusbar:    status.NewBar(s, km),
		lists:        make(map[messages.Tab]*list.ItemList, len(messages.Tabs)),
		errs:         make(map[messages.Tab]error),
		loading:      make(map[messages.Tab]bool),
		orchestrator: orch,
		ctx:          context.Background(),
		active:       messages.TabActions,
		limit:        DefaultLimit,
		width:        80,
		height:       24,
	}
	empty := map[messages.Tab]string{
		messages.TabActions:  "Nothing needs attention.",
		messages.TabEmails:   "No emails.",
		messages.TabMessages: "No messages.",
		messages.TabNotes:    "No notes.",
	}
	for _, tab := range messages.Tabs {
		l := list.NewItemList(s)
		l.SetEmptyText(empty[tab])
		v.lists[tab] = l
	}
	return v
}

// WithContext sets the context used for orchestrator calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads every tab.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload re-fetches every tab concurrently.
func (v *View) Reload() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(messages.Tabs))
	for _, tab := range messages.Tabs {
		cmds = append(cmds, v.load(tab))
	}
	v.statusbar.SetState(status.StateLoading)
	return tea.Batch(cmds...)
}

// ReloadTab re-fetches one tab.
func (v *View) ReloadTab(tab messages.Tab) tea.Cmd {
	return v.load(tab)
}

func (v *View) load(tab messages.Tab) tea.Cmd {
	v.loading[tab] = true
	orch, ctx, limit := v.orchestrator, v.ctx, v.limit
	window := domain.Window{Limit: limit}

	switch tab {
	case messages.TabActions:
		return func() tea.Msg {
			actions, err := orch.GetNextActions(ctx, limit)
			return messages.ActionsLoaded{Actions: actions, Err: err}
		}
	case messages.TabEmails:
		return func() tea.Msg {
			emails, err := orch.GetAllEmails(ctx, domain.EmailQuery{Window: window})
			return messages.EmailsLoaded{Emails: emails, Err: err}
		}
	case messages.TabMessages:
		return func() tea.Msg {
			msgs, err := orch.GetAllMessages(ctx, domain.MessageQuery{Window: window})
			return messages.MessagesLoaded{Messages: msgs, Err: err}
		}
	case messages.TabNotes:
		return func() tea.Msg {
			notes, err := orch.GetAllNotes(ctx, domain.NoteQuery{Window: window})
			return messages.NotesLoaded{Notes: notes, Err: err}
		}
	}
	return nil
}

// Update handles messages for the inbox.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ActionsLoaded:
		v.loaded(messages.TabActions, list.FromActions(msg.Actions), msg.Err)
	case messages.EmailsLoaded:
		v.loaded(messages.TabEmails, list.FromEmails(msg.Emails), msg.Err)
	case messages.MessagesLoaded:
		v.loaded(messages.TabMessages, list.FromMessages(msg.Messages), msg.Err)
	case messages.NotesLoaded:
		v.loaded(messages.TabNotes, list.FromNotes(msg.Notes), msg.Err)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.notice != "" {
		v.notice = ""
		v.syncStatus()
	}
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.NextTab):
		v.SetTab((v.active + 1) % messages.Tab(len(messages.Tabs)))
		return v, nil
	case keymap.Matches(k, v.keymap.PrevTab):
		v.SetTab((v.active + messages.Tab(len(messages.Tabs)) - 1) % messages.Tab(len(messages.Tabs)))
		return v, nil
	case v.keymap.TabIndex(k) >= 0:
		v.SetTab(messages.Tab(v.keymap.TabIndex(k)))
		return v, nil
	}

	var cmd tea.Cmd
	v.lists[v.active], cmd = v.lists[v.active].Update(msg)
	return v, cmd
}

func (v *View) loaded(tab messages.Tab, items []list.Item, err error) {
	v.loading[tab] = false
	v.errs[tab] = err
	if err == nil {
		v.lists[tab].SetItems(items)
	}
	v.syncStatus()
}

func (v *View) syncStatus() {
	if v.loading[v.active] {
		v.statusbar.SetState(status.StateLoading)
		return
	}
	if err := v.errs[v.active]; err != nil {
		v.statusbar.Set(status.StateError, err.Error())
		return
	}
	v.statusbar.Set(status.StateResults, v.notice)
	v.statusbar.SetResultCount(v.lists[v.active].Count())
}

// SetTab switches the active tab.
func (v *View) SetTab(tab messages.Tab) {
	if tab < 0 || int(tab) >= len(messages.Tabs) {
		return
	}
	v.active = tab
	v.syncStatus()
}

// ActiveTab returns the active tab.
func (v *View) ActiveTab() messages.Tab {
	return v.active
}

// List returns the item list of a tab.
func (v *View) List(tab messages.Tab) *list.ItemList {
	return v.lists[tab]
}

// Err returns the load error of the active tab.
func (v *View) Err() error {
	return v.errs[v.active]
}

// SetStatus shows a state in the status bar until the next load.
func (v *View) SetStatus(state status.State, message string) {
	v.statusbar.Set(state, message)
}

// SetNotice shows message in place of the item count until the next
// key press.
func (v *View) SetNotice(message string) {
	v.notice = message
	v.syncStatus()
}

// View renders the tab bar, the active list and the status bar.
func (v *View) View() string {
	sections := []string{v.renderTabs(), ""}

	if err := v.errs[v.active]; err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+err.Error()), "")
	}
	sections = append(sections, v.lists[v.active].View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTabs() string {
	tabs := make([]string, 0, len(messages.Tabs))
	for i, tab := range messages.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if n := v.lists[tab].Count(); n > 0 {
			label += fmt.Sprintf(" (%d)", n)
		}
		if tab == v.active {
			tabs = append(tabs, v.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, v.styles.Tab.Render(label))
		}
	}
	title := v.styles.Title.Render("hub") + "  "
	return title + strings.Join(tabs, " ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	for _, l := range v.lists {
		l.SetDimensions(width, height-6)
	}
	v.statusbar.SetWidth(width)
}
