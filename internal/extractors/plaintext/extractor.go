// Package plaintext extracts flat text files as a single page.
package plaintext

import (
	"context"
	"fmt"
	"iter"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles UTF-8 plain text and Markdown documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md"}
}

// Pages yields the whole file as page 1, or nothing if it is blank.
func (e *Extractor) Pages(ctx context.Context, path string) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Page{}, err)
			return
		}

		data, err := os.ReadFile(path)
		if err != nil {
			yield(domain.Page{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
			return
		}
		if !utf8.Valid(data) {
			yield(domain.Page{}, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, path))
			return
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			return
		}
		yield(domain.Page{Number: 1, Text: text}, nil)
	}
}
