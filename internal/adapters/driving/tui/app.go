package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/list"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/status"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/views/detail"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/views/inbox"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/views/search"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/views/sources"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	inboxView   *inbox.View
	searchView  *search.View
	detailView  *detail.View
	sourcesView *sources.View

	currentView messages.ViewType
	previous    messages.ViewType
	refreshing  bool
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		inboxView:   inbox.NewView(s, km, ports.Orchestrator),
		searchView:  search.NewView(s, km, ports.Orchestrator),
		detailView:  detail.NewView(s, km),
		sourcesView: sources.NewView(s, km, ports.Orchestrator, ports.History),
		currentView: messages.ViewInbox,
		previous:    messages.ViewInbox,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.inboxView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	a.sourcesView.WithContext(ctx)
	return a
}

// Init loads the inbox and starts listening for source events.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("hub"),
		a.inboxView.Init(),
		a.waitForEvent(),
	)
}

// waitForEvent blocks on the next source event. It returns nil when the
// app has no event channel.
func (a *App) waitForEvent() tea.Cmd {
	events := a.ports.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return messages.SourceChanged{Event: ev}
	}
}

// refresh re-fetches every source in the background.
func (a *App) refresh() tea.Cmd {
	orch, ctx := a.ports.Orchestrator, a.ctx
	return func() tea.Msg {
		report, err := orch.RefreshAll(ctx)
		return messages.RefreshCompleted{Report: report, Err: err}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.sourcesView, _ = a.sourcesView.Update(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case list.Selected:
		a.detailView.SetItem(msg.Item, a.currentView)
		a.previous = a.currentView
		a.currentView = messages.ViewDetail
		return a, nil

	case messages.ActionsLoaded, messages.EmailsLoaded, messages.MessagesLoaded, messages.NotesLoaded:
		a.inboxView, cmd = a.inboxView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.StatusLoaded:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		return a, cmd

	case messages.RefreshCompleted:
		a.refreshing = false
		a.err = msg.Err
		reload := a.inboxView.Reload()
		if msg.Err != nil {
			a.inboxView.SetNotice("Refresh failed: " + msg.Err.Error())
		} else {
			a.inboxView.SetNotice(refreshSummary(msg.Report))
		}
		var sourcesCmd tea.Cmd
		a.sourcesView, sourcesCmd = a.sourcesView.Update(msg)
		return a, tea.Batch(reload, sourcesCmd)

	case messages.SourceChanged:
		return a, tea.Batch(a.inboxView.ReloadTab(tabFor(msg.Event.Capability)), a.inboxView.ReloadTab(messages.TabActions), a.waitForEvent())

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.inboxView.SetStatus(status.StateError, msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewInbox:
		switch {
		case keymap.Matches(k, a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(k, a.keymap.Search):
			return a, a.switchTo(messages.ViewSearch)
		case keymap.Matches(k, a.keymap.Sources):
			return a, a.switchTo(messages.ViewSources)
		case keymap.Matches(k, a.keymap.Help):
			return a, a.switchTo(messages.ViewHelp)
		case keymap.Matches(k, a.keymap.Refresh):
			return a, a.startRefresh()
		}
		a.inboxView, cmd = a.inboxView.Update(msg)

	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)

	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)

	case messages.ViewSources:
		if keymap.Matches(k, a.keymap.Refresh) {
			return a, a.startRefresh()
		}
		a.sourcesView, cmd = a.sourcesView.Update(msg)

	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			return a, a.switchTo(messages.ViewInbox)
		}
	}
	return a, cmd
}

func (a *App) startRefresh() tea.Cmd {
	if a.refreshing {
		return nil
	}
	a.refreshing = true
	a.inboxView.SetStatus(status.StateRefreshing, "")
	return a.refresh()
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.previous = a.currentView
	a.currentView = view
	switch view {
	case messages.ViewSearch:
		if a.previous != messages.ViewDetail {
			a.searchView.Reset()
		}
		return a.searchView.Init()
	case messages.ViewSources:
		return a.sourcesView.Init()
	case messages.ViewInbox, messages.ViewDetail, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDetail:
		return a.detailView.View()
	case messages.ViewSources:
		return a.sourcesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.inboxView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-12s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("[esc] back to inbox"))
	return b.String()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// Refreshing reports whether a refresh is in flight.
func (a *App) Refreshing() bool {
	return a.refreshing
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.inboxView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}

func tabFor(c domain.Capability) messages.Tab {
	switch c {
	case domain.CapabilityMail:
		return messages.TabEmails
	case domain.CapabilityMessage:
		return messages.TabMessages
	default:
		return messages.TabNotes
	}
}

func refreshSummary(r domain.RefreshReport) string {
	s := fmt.Sprintf("Refreshed %d items", r.Total())
	if len(r.Failed) > 0 {
		names := make([]string, 0, len(r.Failed))
		for _, st := range r.Failed {
			names = append(names, st.String())
		}
		s += " (degraded: " + strings.Join(names, ", ") + ")"
	}
	return s
}
