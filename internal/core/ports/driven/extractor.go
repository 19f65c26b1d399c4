package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Extractor reads the text of one document format page by page.
type Extractor interface {
	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Pages returns a lazy sequence over the document's pages in physical order.
	// Each call re-opens the file, so the sequence can be ranged over again.
	// A failure is yielded once, as the final element, wrapping domain.ErrExtraction.
	Pages(ctx context.Context, path string) iter.Seq2[domain.Page, error]
}

// ExtractorRegistry selects extractors by file extension.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(e Extractor)

	// For returns the extractor for path, or domain.ErrUnsupportedType.
	For(path string) (Extractor, error)

	// Supports reports whether any extractor handles path.
	Supports(path string) bool
}
