package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/extractors/docx"
	"github.com/custodia-labs/docintel/internal/extractors/html"
	"github.com/custodia-labs/docintel/internal/extractors/pdf"
	"github.com/custodia-labs/docintel/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lower-case file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Extractor)}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(html.New())
	r.Register(docx.New())
	return r
}

// Register adds e for each of its extensions, replacing earlier registrations.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// For returns the extractor for path's extension.
func (r *Registry) For(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
	return e, nil
}

// Supports reports whether an extractor handles path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
