// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
)

const (
	label       = "Ask: "
	placeholder = "Ask a question about your documents..."
	charLimit   = 1000
	minWidth    = 20
)

// QuestionInput wraps a bubbles textinput for typing questions.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQuestionInput creates a focused question input.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 60

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the input.
func (q *QuestionInput) View() string {
	prefix := q.styles.Title.Render(label)
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, prefix, field)
}

// Submit returns the trimmed question and clears the input.
// A blank question leaves the input untouched and returns "".
func (q *QuestionInput) Submit() string {
	question := strings.TrimSpace(q.textinput.Value())
	if question == "" {
		return ""
	}
	q.textinput.Reset()
	return question
}

// Value returns the current input value.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label and border.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.textinput.Width = max(width-len(label)-6, minWidth)
}

// Width returns the current width.
func (q *QuestionInput) Width() int {
	return q.width
}
