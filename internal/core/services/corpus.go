package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// CorpusResult is the outcome of processing a document directory.
type CorpusResult struct {
	// Chunks holds every chunk in document name order, then page order.
	Chunks []domain.Chunk

	// Documents reports each supported file, including failures.
	Documents []domain.DocumentReport
}

// ChunkedDocuments counts documents that contributed at least one chunk.
func (r CorpusResult) ChunkedDocuments() int {
	n := 0
	for _, d := range r.Documents {
		if d.Chunks > 0 {
			n++
		}
	}
	return n
}

// CorpusService turns a directory of documents into chunks.
type CorpusService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.PostProcessor
}

// NewCorpusService creates a corpus service.
func NewCorpusService(extractors driven.ExtractorRegistry, chunker driven.PostProcessor) *CorpusService {
	return &CorpusService{
		extractors: extractors,
		chunker:    chunker,
	}
}

// Process extracts and chunks every supported file directly inside dir, in
// file name order. Subdirectories and unsupported files are skipped. A
// document that fails extraction is reported and contributes nothing; the
// rest of the corpus is still processed. Cancellation aborts the run.
func (s *CorpusService) Process(ctx context.Context, dir string) (CorpusResult, error) {
	logger.Section("Corpus Processing")
	logger.Debug("Documents directory: %s", dir)

	var result CorpusResult

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("%w: documents directory %s", domain.ErrNotFound, dir)
	}
	if err != nil {
		return result, fmt.Errorf("reading documents directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || !s.extractors.Supports(path) {
			logger.Debug("Skipping %s", entry.Name())
			continue
		}

		report, chunks, err := s.processDocument(ctx, entry.Name(), path)
		if err != nil {
			return result, err
		}
		result.Documents = append(result.Documents, report)
		result.Chunks = append(result.Chunks, chunks...)
	}

	logger.Info("Processed %d documents into %d chunks", len(result.Documents), len(result.Chunks))

	if len(result.Chunks) == 0 {
		return result, fmt.Errorf("%w: no text found in %s", domain.ErrEmptyCorpus, dir)
	}
	return result, nil
}

// processDocument returns a non-nil error only when the run must abort.
func (s *CorpusService) processDocument(
	ctx context.Context, name, path string,
) (domain.DocumentReport, []domain.Chunk, error) {
	report := domain.DocumentReport{Name: name}

	extractor, err := s.extractors.For(path)
	if err != nil {
		report.Err = err
		logger.Warn("Skipping %s: %v", name, err)
		return report, nil, nil
	}

	doc := domain.Document{Name: name, Path: path}
	for page, err := range extractor.Pages(ctx, path) {
		if err != nil {
			if ctx.Err() != nil {
				return report, nil, ctx.Err()
			}
			report.Err = err
			logger.Error("Failed to extract %s: %v", name, err)
			return report, nil, nil
		}
		doc.Pages = append(doc.Pages, page)
	}
	report.Pages = len(doc.Pages)

	chunks, err := s.chunker.Process(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return report, nil, ctx.Err()
		}
		return report, nil, fmt.Errorf("chunking %s: %w", name, err)
	}
	report.Chunks = len(chunks)

	logger.Debug("%s: %d pages, %d chunks", name, report.Pages, report.Chunks)
	return report, chunks, nil
}
