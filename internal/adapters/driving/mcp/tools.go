package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// defaultTopK is used when a tool call does not set top_k.
const defaultTopK = 3

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to find passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is a single retrieved chunk.
type PassageOutput struct {
	Document string  `json:"document"`
	Page     int     `json:"page"`
	ChunkID  int     `json:"chunk_id"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Status  string          `json:"status"`
	Sources []PassageOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the document passages most relevant to a query",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using passages retrieved from the indexed documents",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, topK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Results: passages(results),
		Count:   len(results),
	}, nil
}

// handleAsk handles the ask tool invocation. A failed generation is
// reported in the output status rather than as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil && !errors.Is(err, domain.ErrGenerationService) {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Status:  string(answer.Status),
		Sources: passages(answer.Results),
	}, nil
}

func passages(results []domain.RetrievalResult) []PassageOutput {
	out := make([]PassageOutput, len(results))
	for i, r := range results {
		out[i] = PassageOutput{
			Document: r.Document,
			Page:     r.Page,
			ChunkID:  r.ChunkID,
			Score:    r.Score,
			Text:     r.Text,
		}
	}
	return out
}
