package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/extractors/html"
	"github.com/custodia-labs/docintel/internal/extractors/pdf"
	"github.com/custodia-labs/docintel/internal/extractors/plaintext"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []string{".docx", ".htm", ".html", ".md", ".pdf", ".txt"}, r.Extensions())

	e, err := r.For("/docs/Report.PDF")
	require.NoError(t, err)
	assert.IsType(t, &pdf.Extractor{}, e)

	e, err = r.For("notes.txt")
	require.NoError(t, err)
	assert.IsType(t, &plaintext.Extractor{}, e)

	e, err = r.For("page.HTM")
	require.NoError(t, err)
	assert.IsType(t, &html.Extractor{}, e)

	assert.True(t, r.Supports("README.md"))
	assert.True(t, r.Supports("contract.docx"))
	assert.False(t, r.Supports("slides.pptx"))
	assert.False(t, r.Supports("Makefile"))
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()
	_, err := r.For("image.png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
