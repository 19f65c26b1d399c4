// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateAnswered State = "answered"
	StateSources  State = "sources"
	StateHistory  State = "history"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	answer  domain.AnswerStatus
	sources int
	index   *domain.IndexInfo
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateAnswered, StateSources:
		text := fmt.Sprintf("%s · %d sources", s.answer, s.sources)
		if s.answer == domain.AnswerStatusAnswered {
			return s.styles.Success.Render(text)
		}
		return s.styles.Warning.Render(text)
	case StateHistory:
		return s.styles.Normal.Render("History")
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	if s.index == nil {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Muted.Render(fmt.Sprintf("%d chunks from %d documents · %s",
		s.index.Count, s.index.Documents, s.index.Model))
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateSources:
		bindings = s.keymap.SourcesHelp()
	case StateHistory:
		bindings = s.keymap.HistoryHelp()
	case StateReady, StateThinking, StateError, StateAnswered:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetAnswer records the status and source count of the latest answer.
func (s *Bar) SetAnswer(a domain.Answer) {
	s.state = StateAnswered
	s.answer = a.Status
	s.sources = len(a.Results)
	s.message = ""
}

// Sources returns the source count of the latest answer.
func (s *Bar) Sources() int {
	return s.sources
}

// SetIndex sets the index description shown while idle.
func (s *Bar) SetIndex(info domain.IndexInfo) {
	s.index = &info
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.answer = ""
	s.sources = 0
}
