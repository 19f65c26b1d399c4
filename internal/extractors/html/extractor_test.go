package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Refund &amp; Returns</title>
  <style>body { color: red; }</style>
</head>
<body>
  <!-- navigation -->
  <script>console.log("ignored")</script>
  <h1>Refunds</h1>
  <p>Items can be returned within <b>thirty</b> days.</p>
  <ul><li>Keep the receipt</li><li>Use the original box</li></ul>
  Contact us<br/>any time.
</body>
</html>`

func collect(t *testing.T, path string) ([]domain.Page, error) {
	t.Helper()
	var pages []domain.Page
	for p, err := range New().Pages(context.Background(), path) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".html", ".htm"}, New().Extensions())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Refund & Returns", Title(page))
	assert.Empty(t, Title("<p>no title</p>"))
}

func TestText(t *testing.T) {
	text := Text(page)

	assert.Equal(t, "Refunds\nItems can be returned within thirty days.\nKeep the receipt\nUse the original box\nContact us\nany time.", text)
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "navigation")
}

func TestPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refunds.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	pages, err := collect(t, path)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Refund & Returns\nRefunds\n")
}

func TestPages_NoText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.htm")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><script>x()</script></body></html>"), 0o600))

	pages, err := collect(t, path)

	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPages_MissingFile(t *testing.T) {
	_, err := collect(t, filepath.Join(t.TempDir(), "missing.html"))

	assert.ErrorIs(t, err, domain.ErrExtraction)
}
