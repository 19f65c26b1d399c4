package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docintel resources.
	uriScheme = "docintel://"

	// historyLimit caps the interactions returned by the history resource.
	historyLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Build ID, model, dimension and size of the current index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Most recent questions and answers",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleIndexResource describes the persisted index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}
	return jsonResource(req.Params.URI, info)
}

// handleHistoryResource returns the most recent interactions.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return textResource(req.Params.URI, "application/json", "[]"), nil
	}

	interactions, err := s.ports.History.RecentInteractions(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}

	type entry struct {
		ID        int64   `json:"id"`
		Timestamp string  `json:"timestamp"`
		Question  string  `json:"question"`
		Answer    string  `json:"answer"`
		Status    string  `json:"status"`
		Seconds   float64 `json:"execution_seconds"`
	}

	entries := make([]entry, len(interactions))
	for i, in := range interactions {
		entries[i] = entry{
			ID:        in.ID,
			Timestamp: in.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Question:  in.Question,
			Answer:    in.Answer,
			Status:    string(in.Status),
			Seconds:   in.ExecutionTime.Seconds(),
		}
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return textResource(uri, "application/json", string(data)), nil
}

func textResource(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}
