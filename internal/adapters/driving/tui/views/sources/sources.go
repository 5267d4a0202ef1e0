// Package sources shows each registered source's state and the recent
// refresh runs.
package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/status"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
)

// historyLimit is the number of refresh runs shown.
const historyLimit = 5

// View is the source status view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	orchestrator driving.Orchestrator
	history      driving.RefreshHistory
	ctx          context.Context

	statuses []domain.SourceStatus
	runs     []domain.TaskResult
	selected int
	err      error
	width    int
	height   int
}

// NewView creates a new sources view. history may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	orch driving.Orchestrator,
	history driving.RefreshHistory,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings([]key.Binding{km.Up, km.Refresh, km.Back})

	return &View{
		styles:       s,
		keymap:       km,
		statusbar:    bar,
		orchestrator: orch,
		history:      history,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads statuses and history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	orch, history, ctx := v.orchestrator, v.history, v.ctx
	return func() tea.Msg {
		msg := messages.StatusLoaded{}
		if orch != nil {
			msg.Statuses = orch.Status()
		}
		if history != nil {
			msg.Runs, msg.Err = history.History(ctx, historyLimit)
		}
		return msg
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.statusbar.SetWidth(msg.Width)
		return v, nil

	case messages.StatusLoaded:
		v.statuses = msg.Statuses
		v.runs = msg.Runs
		v.err = msg.Err
		if v.selected >= len(v.statuses) {
			v.selected = max(len(v.statuses)-1, 0)
		}
		return v, nil

	case messages.RefreshCompleted:
		return v, v.load()

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewInbox} }
		case keymap.Matches(k, v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(k, v.keymap.Down):
			if v.selected < len(v.statuses)-1 {
				v.selected++
			}
		}
	}
	return v, nil
}

// View renders the sources table and history.
func (v *View) View() string {
	sections := []string{v.styles.Title.Render("Sources"), ""}

	if len(v.statuses) == 0 {
		sections = append(sections, v.styles.Muted.Render("No sources configured."))
	}
	for i := range v.statuses {
		sections = append(sections, v.renderStatus(i, &v.statuses[i]))
	}

	sections = append(sections, "", v.styles.Subtitle.Render("Recent refreshes"))
	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case len(v.runs) == 0:
		sections = append(sections, v.styles.Muted.Render("No refresh runs recorded."))
	default:
		for i := range v.runs {
			sections = append(sections, v.renderRun(&v.runs[i]))
		}
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderStatus(index int, s *domain.SourceStatus) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	var state string
	switch {
	case !s.Available:
		state = v.styles.Error.Render("unavailable")
	case !s.Connected:
		state = v.styles.Warning.Render("disconnected")
	default:
		state = v.styles.Success.Render("connected")
	}

	caps := make([]string, 0, len(s.Capabilities))
	for _, c := range s.Capabilities {
		caps = append(caps, string(c))
	}

	line := fmt.Sprintf("%s%-12s %-10s ", indicator, s.SourceType, strings.Join(caps, ","))
	if index == v.selected {
		line = v.styles.Selected.Render(line)
	} else {
		line = v.styles.Normal.Render(line)
	}
	line += state
	if s.LastError != "" {
		line += "\n" + v.styles.Muted.Render("    "+s.LastError)
	}
	return line
}

func (v *View) renderRun(r *domain.TaskResult) string {
	outcome := v.styles.Success.Render("ok")
	if !r.Success {
		outcome = v.styles.Error.Render("failed")
	}
	line := fmt.Sprintf("  %s  %s  %d items  %s",
		r.StartedAt.Local().Format("Jan 02 15:04"), outcome, r.ItemsProcessed,
		r.Duration().Round(time.Millisecond))
	if r.Error != "" {
		line += "  " + v.styles.Muted.Render(r.Error)
	}
	return line
}

// Statuses returns the loaded statuses.
func (v *View) Statuses() []domain.SourceStatus {
	return v.statuses
}

// Selected returns the highlighted row.
func (v *View) Selected() int {
	return v.selected
}
