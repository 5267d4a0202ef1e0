// Package input holds the query field of the search view.
package input

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
)

const (
	charLimit = 256
	// historySize is how many submitted queries Up and Down can recall.
	historySize = 20
)

// SearchInput is a single-line query field that remembers submitted
// queries for the session.
type SearchInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string
	// recall indexes history while browsing it and equals len(history)
	// otherwise.
	recall int
}

// NewSearchInput returns a focused, empty field.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	f := textinput.New()
	f.Placeholder = "Search messages, emails and notes..."
	f.Prompt = "/ "
	f.CharLimit = charLimit
	f.Width = 50
	f.Focus()
	return &SearchInput{field: f, styles: s, width: 50}
}

func (s *SearchInput) Init() tea.Cmd { return textinput.Blink }

// Update edits the field. Up and Down step through earlier queries.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && s.field.Focused() {
		switch k.Type {
		case tea.KeyUp:
			s.step(-1)
			return s, nil
		case tea.KeyDown:
			s.step(1)
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd
}

func (s *SearchInput) step(delta int) {
	next := s.recall + delta
	if next < 0 || next > len(s.history) {
		return
	}
	s.recall = next
	if next == len(s.history) {
		s.field.SetValue("")
		return
	}
	s.field.SetValue(s.history[next])
	s.field.CursorEnd()
}

// Submit returns the trimmed query and records it in the history. Blank
// queries return "" and are not recorded.
func (s *SearchInput) Submit() string {
	q := s.Query()
	if q == "" {
		return ""
	}
	s.history = slices.DeleteFunc(s.history, func(h string) bool { return h == q })
	s.history = append(s.history, q)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	s.recall = len(s.history)
	return q
}

// History returns submitted queries, oldest first.
func (s *SearchInput) History() []string { return slices.Clone(s.history) }

func (s *SearchInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.styles.Title.Render("Search: "),
		s.styles.InputField.Render(s.field.View()),
	)
}

func (s *SearchInput) Value() string { return s.field.Value() }

// Query is the field value without surrounding whitespace.
func (s *SearchInput) Query() string { return strings.TrimSpace(s.field.Value()) }

func (s *SearchInput) SetValue(value string) { s.field.SetValue(value) }

func (s *SearchInput) Focus() tea.Cmd { return s.field.Focus() }
func (s *SearchInput) Blur()          { s.field.Blur() }
func (s *SearchInput) Focused() bool  { return s.field.Focused() }

// SetWidth sizes the field, leaving room for the label.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.field.Width = max(width-10, 20)
}

func (s *SearchInput) Width() int { return s.width }

// Reset clears the field and stops browsing the history.
func (s *SearchInput) Reset() {
	s.field.Reset()
	s.recall = len(s.history)
}
