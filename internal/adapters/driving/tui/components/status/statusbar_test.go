package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Sources())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_SetAnswer(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetMessage("stale")

	bar.SetAnswer(domain.Answer{
		Status:  domain.AnswerStatusAnswered,
		Results: make([]domain.RetrievalResult, 3),
	})

	assert.Equal(t, StateAnswered, bar.State())
	assert.Equal(t, 3, bar.Sources())
	assert.Empty(t, bar.Message())
	assert.Contains(t, bar.View(), "answered · 3 sources")
}

func TestStatusBar_ViewByState(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains []string
	}{
		{
			name:     "ready without index",
			setup:    func(*Bar) {},
			contains: []string{"Ready", "enter: ask", "ctrl+c: quit"},
		},
		{
			name: "ready with index",
			setup: func(b *Bar) {
				b.SetIndex(domain.IndexInfo{Count: 42, Documents: 3, Model: "hashing-384"})
			},
			contains: []string{"42 chunks from 3 documents", "hashing-384"},
		},
		{
			name:     "thinking",
			setup:    func(b *Bar) { b.SetState(StateThinking) },
			contains: []string{"Thinking..."},
		},
		{
			name: "error",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("index missing")
			},
			contains: []string{"Error: index missing"},
		},
		{
			name:     "sources",
			setup:    func(b *Bar) { b.SetState(StateSources) },
			contains: []string{"tab: sources", "esc: back"},
		},
		{
			name:     "history",
			setup:    func(b *Bar) { b.SetState(StateHistory) },
			contains: []string{"History", "enter: ask again"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetAnswer(domain.Answer{Status: domain.AnswerStatusNoContext})
	bar.SetMessage("x")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Sources())
}

func TestStatusBar_Width(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	assert.Equal(t, 120, bar.Width())
}
