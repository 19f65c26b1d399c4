package pdf

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// mockDocument is a test double for Document.
type mockDocument struct {
	pages   []string
	failAt  int
	closed  bool
	pageErr error
}

func (m *mockDocument) Close() error {
	m.closed = true
	return nil
}

func (m *mockDocument) NumPage() int {
	return len(m.pages)
}

func (m *mockDocument) PageText(n int) (string, error) {
	if n == m.failAt {
		return "", m.pageErr
	}
	return m.pages[n-1], nil
}

func openerFor(doc *mockDocument) Opener {
	return func(string) (Document, error) {
		return doc, nil
	}
}

func collect(ctx context.Context, e *Extractor) ([]domain.Page, error) {
	var pages []domain.Page
	for page, err := range e.Pages(ctx, "report.pdf") {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestPages_PhysicalOrderSkippingBlank(t *testing.T) {
	doc := &mockDocument{pages: []string{" First page ", "\n\n", "Third page"}}
	e := NewWithOpener(openerFor(doc))

	pages, err := collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []domain.Page{
		{Number: 1, Text: "First page"},
		{Number: 3, Text: "Third page"},
	}, pages)
	assert.True(t, doc.closed)
}

func TestPages_Restartable(t *testing.T) {
	doc := &mockDocument{pages: []string{"a", "b"}}
	e := NewWithOpener(openerFor(doc))

	first, err := collect(context.Background(), e)
	require.NoError(t, err)
	second, err := collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPages_PageErrorIsLast(t *testing.T) {
	doc := &mockDocument{
		pages:   []string{"one", "two", "three"},
		failAt:  2,
		pageErr: errors.New("bad font"),
	}
	e := NewWithOpener(openerFor(doc))

	var yielded []domain.Page
	var errs []error
	for page, err := range e.Pages(context.Background(), "report.pdf") {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		yielded = append(yielded, page)
	}

	assert.Len(t, yielded, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrExtraction)
	assert.True(t, doc.closed)
}

func TestPages_OpenError(t *testing.T) {
	e := NewWithOpener(func(string) (Document, error) {
		return nil, errors.New("permission denied")
	})

	_, err := collect(context.Background(), e)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestPages_StopsEarly(t *testing.T) {
	doc := &mockDocument{pages: []string{"a", "b", "c"}}
	e := NewWithOpener(openerFor(doc))

	count := 0
	for range e.Pages(context.Background(), "report.pdf") {
		count++
		break
	}
	assert.Equal(t, 1, count)
	assert.True(t, doc.closed)
}

func TestPages_Cancelled(t *testing.T) {
	doc := &mockDocument{pages: []string{"a"}}
	e := NewWithOpener(openerFor(doc))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect(ctx, e)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPages_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o600))

	var gotErr error
	for _, err := range New().Pages(context.Background(), path) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, domain.ErrExtraction)
}

func TestPages_MissingFile(t *testing.T) {
	var gotErr error
	for _, err := range New().Pages(context.Background(), filepath.Join(t.TempDir(), "nope.pdf")) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, domain.ErrExtraction)
}

func TestOpenFile_ParserPanicClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0o600))

	var opened io.ReaderAt
	orig := newReader
	newReader = func(f io.ReaderAt, _ int64) (*pdf.Reader, error) {
		opened = f
		panic("bad xref")
	}
	t.Cleanup(func() { newReader = orig })

	doc, err := openFile(path)

	assert.Nil(t, doc)
	require.ErrorContains(t, err, "malformed pdf: bad xref")
	require.NotNil(t, opened)
	_, readErr := opened.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, readErr, os.ErrClosed)
}
