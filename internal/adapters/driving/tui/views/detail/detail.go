// Package detail shows one message, email, note or action in full.
package detail

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/list"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/components/status"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/keymap"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/messages"
	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// headerLines is the space taken by title, metadata and status bar.
const headerLines = 8

// View renders an item with a scrollable body.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	viewport  viewport.Model

	item *list.Item
	back messages.ViewType

	width  int
	height int
}

// NewView creates the detail view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.DetailHelp())

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		viewport:  viewport.New(80, 24-headerLines),
		back:      messages.ViewInbox,
		width:     80,
		height:    24,
	}
}

// SetItem shows item. Esc returns to back.
func (v *View) SetItem(item list.Item, back messages.ViewType) {
	v.item = &item
	v.back = back
	v.viewport.SetContent(v.wrap(item.Body))
	v.viewport.GotoTop()
	v.statusbar.SetMessage(string(item.Kind) + " from " + item.Source.String())
}

// Item returns the shown item, or nil.
func (v *View) Item() *list.Item {
	return v.item
}

// Update scrolls the body or leaves the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		if keymap.Matches(msg.String(), v.keymap.Back) {
			back := v.back
			return v, func() tea.Msg { return messages.ViewChanged{View: back} }
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the item.
func (v *View) View() string {
	if v.item == nil {
		return v.styles.Muted.Render("Nothing selected")
	}

	sections := []string{v.styles.Title.Render(oneLine(v.item.Title)), v.renderMeta(), "", v.viewport.View()}
	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderMeta() string {
	lines := []string{
		v.styles.Muted.Render("Source: ") + v.styles.Source(v.item.Source).Render(v.item.Source.String()),
	}
	if !v.item.When.IsZero() {
		lines = append(lines, v.styles.Muted.Render("When:   ")+
			v.styles.Normal.Render(v.item.When.Local().Format("Mon 02 Jan 2006 15:04")))
	}
	for _, f := range v.item.Fields {
		if f.Value == "" {
			continue
		}
		value := v.styles.Normal
		if f.Label == "Priority" {
			value = v.styles.Priority(domain.ActionPriority(f.Value))
		}
		lines = append(lines, v.styles.Muted.Render(padLabel(f.Label))+value.Render(f.Value))
	}
	if v.item.Flagged {
		lines = append(lines, v.styles.Flagged.Render("Flagged"))
	}
	return strings.Join(lines, "\n")
}

func (v *View) wrap(body string) string {
	if strings.TrimSpace(body) == "" {
		return v.styles.Muted.Render("(empty)")
	}
	return lipgloss.NewStyle().Width(max(v.width-2, 20)).Render(body)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-headerLines, 3)
	v.statusbar.SetWidth(width)
	if v.item != nil {
		v.viewport.SetContent(v.wrap(v.item.Body))
	}
}

func padLabel(label string) string {
	label += ":"
	if len(label) < 8 {
		label += strings.Repeat(" ", 8-len(label))
	}
	return label
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
