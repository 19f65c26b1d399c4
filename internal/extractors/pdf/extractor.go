// Package pdf extracts paginated text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Document is an opened paginated document.
type Document interface {
	io.Closer

	// NumPage returns the number of physical pages.
	NumPage() int

	// PageText returns the plain text of page n (1-based).
	PageText(n int) (string, error)
}

// Opener opens the document at path.
type Opener func(path string) (Document, error)

// Extractor handles PDF documents.
type Extractor struct {
	open Opener
}

// New creates a PDF extractor backed by github.com/ledongthuc/pdf.
func New() *Extractor {
	return NewWithOpener(openFile)
}

// NewWithOpener creates a PDF extractor with a custom opener (for testing).
func NewWithOpener(open Opener) *Extractor {
	return &Extractor{open: open}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Pages yields the non-blank pages in physical order, numbered from 1.
// Any failure is yielded last and wraps domain.ErrExtraction.
func (e *Extractor) Pages(ctx context.Context, path string) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		doc, err := e.open(path)
		if err != nil {
			yield(domain.Page{}, fmt.Errorf("%w: opening %s: %w", domain.ErrExtraction, path, err))
			return
		}
		defer doc.Close()

		for n := 1; n <= doc.NumPage(); n++ {
			if err := ctx.Err(); err != nil {
				yield(domain.Page{}, err)
				return
			}

			text, err := doc.PageText(n)
			if err != nil {
				yield(domain.Page{}, fmt.Errorf("%w: %s page %d: %w", domain.ErrExtraction, path, n, err))
				return
			}

			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if !yield(domain.Page{Number: n, Text: text}, nil) {
				return
			}
		}
	}
}

// fileDocument adapts a ledongthuc/pdf reader to Document.
type fileDocument struct {
	closer io.Closer
	reader *pdf.Reader
}

// newReader parses an opened file. Tests replace it.
var newReader = pdf.NewReader

func openFile(path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			_ = f.Close()
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r, err := newReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileDocument{closer: f, reader: r}, nil
}

func (d *fileDocument) Close() error {
	return d.closer.Close()
}

func (d *fileDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *fileDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page: %v", r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
