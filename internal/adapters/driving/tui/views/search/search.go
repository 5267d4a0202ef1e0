// Package search provides the cross-source search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/input"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/list"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/status"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// ErrNoOrchestrator indicates that no orchestrator was provided.
var ErrNoOrchestrator = errors.New("search: orchestrator is required")

// DefaultLimit caps results per capability.
const DefaultLimit = 20

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ItemList
	statusbar *status.Bar

	orchestrator driving.Orchestrator
	ctx          context.Context

	query      string
	width      int
	height     int
	err        error
	focusInput bool // true = typing, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, orch driving.Orchestrator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	l := list.NewItemList(s)
	l.SetEmptyText("No results")

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewSearchInput(s),
		list:         l,
		statusbar:    status.NewBar(s, km),
		orchestrator: orch,
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewInbox}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := v.input.Submit()
			if query == "" {
				return v, nil
			}
			v.query = query
			v.statusbar.SetState(status.StateSearching)
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewSearch) || keymap.Matches(msg.String(), v.keymap.Search) {
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// performSearch runs the query against every capability.
func (v *View) performSearch(query string) tea.Cmd {
	orch, ctx := v.orchestrator, v.ctx
	return func() tea.Msg {
		if orch == nil {
			return messages.SearchCompleted{Query: query, Err: ErrNoOrchestrator}
		}
		results, err := orch.SearchAcrossSources(ctx, query, DefaultLimit)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

// handleSearchCompleted shows results. Stale results for an older query
// are dropped.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Query != v.query {
		return
	}
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return
	}

	v.err = nil
	items := list.FromSearch(msg.Results)
	v.list.SetItems(items)
	v.list.SetSelected(0)
	v.statusbar.Set(status.StateResults, fmt.Sprintf("%d results for %q", len(items), v.query))
	v.statusbar.SetResultCount(len(items))
}

// View renders the search view.
func (v *View) View() string {
	sections := []string{v.styles.Title.Render("Search"), "", v.input.View(), ""}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// Results returns the current results.
func (v *View) Results() []list.Item {
	return v.list.Items()
}

// SelectedItem returns the highlighted result.
func (v *View) SelectedItem() *list.Item {
	return v.list.SelectedItem()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.query = ""
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetItems(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
