package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService builds the vector index from the documents directory.
type IndexService struct {
	corpus    *CorpusService
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	audit     driven.AuditLog
	docsDir   string
	batchSize int
}

// NewIndexService creates an index service. A batchSize below 1 uses
// domain.DefaultBatchSize.
func NewIndexService(
	corpus *CorpusService,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docsDir string,
	batchSize int,
) *IndexService {
	if batchSize < 1 {
		batchSize = domain.DefaultBatchSize
	}
	return &IndexService{
		corpus:    corpus,
		embedder:  embedder,
		index:     index,
		docsDir:   docsDir,
		batchSize: batchSize,
	}
}

// SetAuditLog sets the audit log that receives build metrics.
func (s *IndexService) SetAuditLog(audit driven.AuditLog) {
	s.audit = audit
}

// Build processes the corpus, embeds every chunk and replaces the index.
// The previous index stays in place if any step fails.
func (s *IndexService) Build(ctx context.Context) (domain.BuildReport, error) {
	start := time.Now()
	report := domain.BuildReport{}

	result, err := s.corpus.Process(ctx, s.docsDir)
	report.Documents = result.Documents
	if err != nil {
		return report, err
	}

	logger.Section("Embedding")
	vectors, err := s.embedAll(ctx, result.Chunks)
	if err != nil {
		return report, err
	}

	info := domain.IndexInfo{
		Model:     s.embedder.ModelName(),
		Documents: result.ChunkedDocuments(),
	}
	if err := s.index.Build(ctx, result.Chunks, vectors, info); err != nil {
		return report, fmt.Errorf("building index: %w", err)
	}

	built, _ := s.index.Info()
	report.Info = built
	report.Duration = time.Since(start)

	logger.Info("Indexed %d chunks from %d documents in %s", built.Count, built.Documents, report.Duration)
	s.recordBuild(ctx, report)
	return report, nil
}

// embedAll embeds chunks in batches and checks every vector shares one dimension.
func (s *IndexService) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	dim := 0

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: requested %d embeddings, received %d",
				domain.ErrEmbeddingService, len(texts), len(batch))
		}
		for _, v := range batch {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("%w: inconsistent embedding dimension %d (expected %d)",
					domain.ErrEmbeddingService, len(v), dim)
			}
			vectors = append(vectors, v)
		}
		logger.Debug("Embedded %d/%d chunks", end, len(chunks))
	}
	return vectors, nil
}

func (s *IndexService) recordBuild(ctx context.Context, report domain.BuildReport) {
	if s.audit == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	meta := map[string]any{"build_id": report.Info.BuildID, "model": report.Info.Model}
	for name, value := range map[string]float64{
		domain.MetricIndexBuildSeconds: report.Duration.Seconds(),
		domain.MetricIndexChunks:       float64(report.Info.Count),
		domain.MetricIndexDocuments:    float64(report.Info.Documents),
	} {
		if err := s.audit.LogMetric(ctx, domain.Metric{Name: name, Value: value, Metadata: meta}); err != nil {
			logger.Warn("Failed to record %s: %v", name, err)
		}
	}
}

// Status loads the persisted index and describes it.
func (s *IndexService) Status(ctx context.Context) (domain.IndexInfo, error) {
	if err := s.index.Load(ctx); err != nil {
		return domain.IndexInfo{}, err
	}
	info, _ := s.index.Info()
	return info, nil
}
