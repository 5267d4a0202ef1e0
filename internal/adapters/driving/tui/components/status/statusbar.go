// Package status renders the one-line status bar at the bottom of every
// view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady      State = "ready"
	StateLoading    State = "loading"
	StateSearching  State = "searching"
	StateRefreshing State = "refreshing"
	StateError      State = "error"
	StateHelp       State = "help"
	StateResults    State = "results"
)

// busy labels the states that wait on the orchestrator.
var busy = map[State]string{
	StateLoading:    "Loading...",
	StateSearching:  "Searching...",
	StateRefreshing: "Refreshing sources...",
}

// Bar shows the current state on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	width  int

	state       State
	message     string
	resultCount int
	// bindings replaces the keymap hints when non-nil.
	bindings []key.Binding
}

// NewBar returns a ready bar, 80 columns wide.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// Init implements tea.Model.
func (s *Bar) Init() tea.Cmd { return nil }

// Update implements tea.Model. The bar is driven by its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) { return s, nil }

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left, right := s.left(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) left() string {
	if label, ok := busy[s.state]; ok {
		return s.styles.Muted.Render(label)
	}
	switch s.state {
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateHelp:
		return s.styles.Normal.Render("Help")
	}

	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.resultCount == 1:
		return s.styles.Normal.Render("1 item")
	case s.resultCount > 1:
		return s.styles.Normal.Render(fmt.Sprintf("%d items", s.resultCount))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	bindings := s.bindings
	if bindings == nil {
		bindings = s.keymap.ShortHelp()
		if s.state == StateResults && s.resultCount > 0 {
			bindings = s.keymap.ResultsHelp()
		}
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return s.styles.Muted.Render(strings.Join(parts, " • "))
}

// Set changes state and message together.
func (s *Bar) Set(state State, message string) {
	s.state = state
	s.message = message
}

func (s *Bar) SetState(state State) { s.state = state }
func (s *Bar) State() State         { return s.state }

func (s *Bar) SetMessage(message string) { s.message = message }
func (s *Bar) Message() string           { return s.message }

func (s *Bar) SetResultCount(count int) { s.resultCount = count }
func (s *Bar) ResultCount() int         { return s.resultCount }

// SetBindings overrides the key hints. Nil restores the keymap's.
func (s *Bar) SetBindings(bindings []key.Binding) { s.bindings = bindings }

func (s *Bar) SetWidth(width int) { s.width = width }
func (s *Bar) Width() int         { return s.width }

// Clear returns the bar to StateReady with no message or count.
func (s *Bar) Clear() {
	s.Set(StateReady, "")
	s.resultCount = 0
}
