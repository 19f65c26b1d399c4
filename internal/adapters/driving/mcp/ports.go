// Package mcp serves the Model Context Protocol so AI assistants can
// retrieve document passages and ask grounded questions.
package mcp

import (
	"errors"

	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// ErrMissingRetrievalService is returned when no retrieval service is wired.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// Ports are the services the MCP tools and resources call into.
type Ports struct {
	// Retrieval ranks indexed chunks against a query.
	Retrieval driving.RetrievalService

	// Answer answers questions; the ask tool is only offered when set.
	Answer driving.AnswerService

	// Index reports the state of the persisted index.
	Index driving.IndexService

	// History exposes the audit log.
	History driving.HistoryService
}

// Validate reports the first required port that is missing.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
