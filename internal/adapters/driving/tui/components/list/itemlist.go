// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/tui/styles"
)

// linesPerItem is the height of one rendered item.
const linesPerItem = 2

// ItemList displays items in a navigable list.
type ItemList struct {
	items    []Item
	selected int
	styles   *styles.Styles
	empty    string
	now      func() time.Time
	width    int
	height   int
}

// NewItemList creates a new item list component.
func NewItemList(s *styles.Styles) *ItemList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ItemList{
		styles: s,
		empty:  "Nothing here",
		now:    time.Now,
		width:  80,
		height: 10,
	}
}

// Init initialises the item list.
func (l *ItemList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys. Enter emits Selected.
func (l *ItemList) Update(msg tea.Msg) (*ItemList, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch key.String() {
	case "up", "k":
		l.MoveUp()
	case "down", "j":
		l.MoveDown()
	case "home", "g":
		l.selected = 0
	case "end", "G":
		l.selected = max(len(l.items)-1, 0)
	case "enter":
		if item := l.SelectedItem(); item != nil {
			selected := *item
			return l, func() tea.Msg { return Selected{Item: selected} }
		}
	}
	return l, nil
}

// View renders the visible window of items.
func (l *ItemList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render(l.empty)
	}

	visible := max(l.height/linesPerItem, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *ItemList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	marks := " "
	switch {
	case item.Flagged:
		marks = l.styles.Flagged.Render("!")
	case item.Unread:
		marks = l.styles.Unread.Render("●")
	}

	meta := fmt.Sprintf("%-10s %s", item.Source, FormatWhen(item.When, l.now()))
	titleWidth := max(l.width-len(meta)-8, 10)
	title := ansi.Truncate(oneLine(item.Title), titleWidth, "…")

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%-*s", indicator, titleWidth, title))
	} else {
		titleLine = l.styles.Normal.Render(fmt.Sprintf("%s%-*s", indicator, titleWidth, title))
	}

	preview := ansi.Truncate(oneLine(item.Preview), max(l.width-6, 20), "…")
	return marks + titleLine + " " + l.styles.Muted.Render(meta) + "\n" +
		l.styles.Muted.Render("    "+preview)
}

// SetItems replaces the items and keeps the selection in range.
func (l *ItemList) SetItems(items []Item) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = max(len(items)-1, 0)
	}
}

// Items returns the current items.
func (l *ItemList) Items() []Item {
	return l.items
}

// SetEmptyText sets what is shown when there are no items.
func (l *ItemList) SetEmptyText(s string) {
	l.empty = s
}

// SetClock overrides the clock used for timestamps.
func (l *ItemList) SetClock(now func() time.Time) {
	l.now = now
}

// Selected returns the index of the selected item.
func (l *ItemList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *ItemList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the currently selected item, or nil if none.
func (l *ItemList) SelectedItem() *Item {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves selection up.
func (l *ItemList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ItemList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ItemList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *ItemList) Count() int {
	return len(l.items)
}

// FormatWhen renders t relative to now: clock time today, day and month
// this year, full date otherwise.
func FormatWhen(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t, now = t.Local(), now.Local()
	switch {
	case t.YearDay() == now.YearDay() && t.Year() == now.Year():
		return t.Format("15:04")
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("2006-01-02")
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
