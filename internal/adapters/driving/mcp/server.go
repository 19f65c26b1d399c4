package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docintel/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes retrieval and question answering to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: "docintel", Version: Version}, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr, with a /healthz
// endpoint reporting the index state. It blocks until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: serving on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler returns the HTTP handler serving MCP and the health endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil))
	return mux
}

type healthResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	code := http.StatusOK

	if s.ports.Index != nil {
		info, err := s.ports.Index.Status(r.Context())
		if err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			resp.Chunks = info.Count
			resp.Model = info.Model
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Debug("mcp: writing health response: %v", err)
	}
}
