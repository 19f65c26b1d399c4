// Package tui provides the interactive chat interface over the document index.
package tui

import (
	"errors"

	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

var (
	// ErrInvalidPorts is returned for a nil Ports.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")

	// ErrMissingAnswerService is returned when no answer service is wired.
	ErrMissingAnswerService = errors.New("tui: answer service is required")
)

// Ports holds the driving ports the TUI talks to.
// Answer is required; the rest unlock optional views.
type Ports struct {
	// Answer answers questions against the index.
	Answer driving.AnswerService

	// History lists recorded interactions for the history view.
	History driving.HistoryService

	// Index reports the loaded build in the header.
	Index driving.IndexService
}

// Validate checks that the required ports are present.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
