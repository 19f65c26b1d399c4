// Package styles holds the chat palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color // titles, selection
	Secondary  lipgloss.Color // questions, source headers
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Bar        lipgloss.Color // status bar background
	Border     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is a dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2563EB"),
		Secondary:  lipgloss.Color("#14B8A6"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Bar:        lipgloss.Color("#181825"),
		Border:     lipgloss.Color("#45475A"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered styles the views share.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style
	Fallback lipgloss.Style // no-context replies
	Citation lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),

		Question: fg(theme.Secondary).Bold(true),
		Answer:   fg(theme.Foreground).PaddingLeft(2),
		Fallback: fg(theme.Warning).Italic(true).PaddingLeft(2),
		Citation: fg(theme.Muted).PaddingLeft(4),
	}
}

// ForStatus picks the transcript style for an answer. Generation failures
// render as errors; anything else that is not an answer is a fallback.
func (s *Styles) ForStatus(status domain.AnswerStatus) lipgloss.Style {
	switch status {
	case domain.AnswerStatusAnswered:
		return s.Answer
	case domain.AnswerStatusGenerationFailed:
		return s.Error.PaddingLeft(2)
	default:
		return s.Fallback
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
