package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func collect(t *testing.T, e *Extractor, path string) ([]domain.Page, error) {
	t.Helper()
	var pages []domain.Page
	for page, err := range e.Pages(context.Background(), path) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".txt", ".md"}, New().Extensions())
}

func TestPages_SinglePage(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("\n  Alpha Beta Gamma Delta Epsilon  \n"))

	pages, err := collect(t, New(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, domain.Page{Number: 1, Text: "Alpha Beta Gamma Delta Epsilon"}, pages[0])
}

func TestPages_BlankFile(t *testing.T) {
	path := writeFile(t, "empty.md", []byte(" \n\t "))

	pages, err := collect(t, New(), path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPages_Restartable(t *testing.T) {
	path := writeFile(t, "notes.md", []byte("# Title\nBody"))
	e := New()

	first, err := collect(t, e, path)
	require.NoError(t, err)
	second, err := collect(t, e, path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPages_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "binary.txt", []byte{0xff, 0xfe, 0xfd, 'a'})

	_, err := collect(t, New(), path)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestPages_MissingFile(t *testing.T) {
	_, err := collect(t, New(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestPages_Cancelled(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("text"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range New().Pages(ctx, path) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
