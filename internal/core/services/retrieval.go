package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService ranks indexed chunks against a query.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	audit    driven.AuditLog

	loadMu sync.Mutex
}

// NewRetrievalService creates a retrieval service over index.
func NewRetrievalService(embedder driven.EmbeddingService, index driven.VectorIndex) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
	}
}

// SetAuditLog sets the audit log that receives retrieval timings.
func (s *RetrievalService) SetAuditLog(audit driven.AuditLog) {
	s.audit = audit
}

// Retrieve embeds query and returns the topK nearest chunks, most relevant
// first. The index is loaded from disk on first use.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}

	start := time.Now()
	info, err := s.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if model := s.embedder.ModelName(); info.Model != "" && model != info.Model {
		return nil, fmt.Errorf("%w: index built with %q but embedding model is %q; rebuild the index",
			domain.ErrIndexCorrupt, info.Model, model)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, received %d", domain.ErrEmbeddingService, len(vectors))
	}

	neighbors, err := s.index.Search(ctx, vectors[0], topK)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievalResult, len(neighbors))
	for i, n := range neighbors {
		results[i] = domain.RetrievalResult{
			Chunk:    n.Chunk,
			Score:    domain.Score(n.Distance),
			Distance: n.Distance,
		}
		logger.Debug("  %d. %s p.%d #%d (score %.4f)", i+1, n.Chunk.Document, n.Chunk.Page, n.Chunk.ChunkID, results[i].Score)
	}

	s.recordTiming(ctx, time.Since(start), len(results))
	return results, nil
}

func (s *RetrievalService) ensureLoaded(ctx context.Context) (domain.IndexInfo, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if info, ok := s.index.Info(); ok {
		return info, nil
	}
	logger.Debug("Loading index")
	if err := s.index.Load(ctx); err != nil {
		return domain.IndexInfo{}, err
	}
	info, _ := s.index.Info()
	return info, nil
}

func (s *RetrievalService) recordTiming(ctx context.Context, elapsed time.Duration, results int) {
	if s.audit == nil {
		return
	}
	err := s.audit.LogMetric(context.WithoutCancel(ctx), domain.Metric{
		Name:     domain.MetricRetrievalSeconds,
		Value:    elapsed.Seconds(),
		Metadata: map[string]any{"results": results},
	})
	if err != nil {
		logger.Warn("Failed to record retrieval timing: %v", err)
	}
}
