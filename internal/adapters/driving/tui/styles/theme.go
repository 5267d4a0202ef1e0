// Package styles holds the palette and lipgloss styles shared by the TUI
// views.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// Theme is the colour palette. Accents are picked from the Catppuccin
// Mocha set.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Mail, Chat, Notes and Code tint the source label of an item by the
	// kind of provider it came from.
	Mail  lipgloss.Color
	Chat  lipgloss.Color
	Notes lipgloss.Color
	Code  lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#7C3AED",
		Secondary:  "#06B6D4",
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Border:     "#45475A",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Mail:       "#89B4FA",
		Chat:       "#CBA6F7",
		Notes:      "#94E2D5",
		Code:       "#FAB387",
	}
}

// Styles are the rendered styles of a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// ActiveTab and Tab draw the inbox tab bar.
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style

	Unread lipgloss.Style
	// Flagged marks important messages and high priority emails.
	Flagged lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	rounded := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	highlight := lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground).Background(theme.Primary)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Help:     fg(theme.Muted),
		Selected: highlight,

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: rounded.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(lipgloss.Color("#181825")).Padding(0, 1),
		Border:     rounded,

		ActiveTab: highlight.Padding(0, 2),
		Tab:       fg(theme.Muted).Padding(0, 2),

		Unread:  fg(theme.Secondary),
		Flagged: fg(theme.Warning).Bold(true),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Source styles the label of a provider by its kind.
func (s *Styles) Source(st domain.SourceType) lipgloss.Style {
	switch st {
	case domain.SourceGmail, domain.SourceOutlook, domain.SourceIMAP, domain.SourceAppleMail:
		return lipgloss.NewStyle().Foreground(s.theme.Mail)
	case domain.SourceTeams, domain.SourceSlack, domain.SourceWhatsApp, domain.SourceTelegram, domain.SourceSMS:
		return lipgloss.NewStyle().Foreground(s.theme.Chat)
	case domain.SourceOneNote, domain.SourceNotion, domain.SourceFilesystem:
		return lipgloss.NewStyle().Foreground(s.theme.Notes)
	case domain.SourceGitHub:
		return lipgloss.NewStyle().Foreground(s.theme.Code)
	}
	return s.Normal
}

// Priority styles a next-action priority label.
func (s *Styles) Priority(p domain.ActionPriority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return s.Error.Bold(true)
	case domain.PriorityMedium:
		return s.Warning
	}
	return s.Muted
}
