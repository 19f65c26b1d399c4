// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// AnswerCompleted carries the outcome of a question back to the model.
// Answer is populated even when Err is set for generation failures.
type AnswerCompleted struct {
	Question string
	Answer   domain.Answer
	Err      error
}

// HistoryLoaded carries recent interactions from the audit log.
type HistoryLoaded struct {
	Interactions []domain.Interaction
	Err          error
}

// IndexStatusLoaded carries the persisted index description.
type IndexStatusLoaded struct {
	Info domain.IndexInfo
	Err  error
}

// QuestionSelected is sent when a past question is picked for asking again.
type QuestionSelected struct {
	Question string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question input and transcript view.
	ViewChat ViewType = iota
	// ViewHistory lists previously answered questions.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
