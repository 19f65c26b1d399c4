// Package chunker splits page text into overlapping fixed-size word windows.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Split slides a window of size words across text with stride size-overlap.
// Each window is rejoined with single spaces. The sequence ends with the first
// window that reaches the last word, so text shorter than size yields exactly
// one chunk and whitespace-only text yields none.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", domain.ErrInvalidInput, size, overlap)
	}

	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil, nil
	}

	stride := max(1, size-overlap)
	chunks := make([]string, 0, (n+stride-1)/stride)
	for start := 0; ; start += stride {
		end := min(start+size, n)
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == n {
			break
		}
	}
	return chunks, nil
}

// Processor turns a document's pages into chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor with the given options.
// Invalid window parameters are rejected rather than adjusted.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	settings := domain.ChunkingSettings{ChunkSize: p.chunkSize, ChunkOverlap: p.overlap}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: size %d overlap %d: %w", p.chunkSize, p.overlap, err)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window size in words.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the window overlap in words.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits every page of doc. Chunk IDs restart at 0 on each page.
func (p *Processor) Process(ctx context.Context, doc domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		texts, err := Split(page.Text, p.chunkSize, p.overlap)
		if err != nil {
			return nil, err
		}

		for i, text := range texts {
			chunks = append(chunks, domain.Chunk{
				Text:     text,
				Document: doc.Name,
				Page:     page.Number,
				ChunkID:  i,
			})
		}
	}

	return chunks, nil
}
