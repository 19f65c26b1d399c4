package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Warning))
	assert.NotEmpty(t, string(theme.Error))
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	accents := []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error}

	seen := make(map[string]bool)
	for _, c := range accents {
		assert.False(t, seen[string(c)], "duplicate accent: %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.NotNil(t, styles.Theme())
}

func TestStyles_TranscriptStylesInitialised(t *testing.T) {
	styles := DefaultStyles()

	assert.NotEqual(t, lipgloss.Style{}, styles.Question)
	assert.NotEqual(t, lipgloss.Style{}, styles.Answer)
	assert.NotEqual(t, lipgloss.Style{}, styles.Fallback)
	assert.NotEqual(t, lipgloss.Style{}, styles.Citation)
}

func TestStyles_ForStatus(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, styles.Answer, styles.ForStatus(domain.AnswerStatusAnswered))
	assert.Equal(t, styles.Fallback, styles.ForStatus(domain.AnswerStatusNoContext))
	assert.Equal(t, styles.Fallback, styles.ForStatus(domain.AnswerStatus("other")))

	failed := styles.ForStatus(domain.AnswerStatusGenerationFailed)
	assert.Equal(t, 2, failed.GetPaddingLeft())
	assert.Equal(t, styles.Error.GetForeground(), failed.GetForeground())
}

func TestStyles_CanRenderText(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":    styles.Title,
		"Question": styles.Question,
		"Answer":   styles.Answer,
		"Citation": styles.Citation,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("test text"), "test text")
		})
	}
}
