// Package history provides the view listing previously answered questions.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// Limit is the number of interactions loaded.
const Limit = 50

// View lists recent interactions newest first and previews the selected answer.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	historyService driving.HistoryService
	ctx            context.Context

	interactions []domain.Interaction
	selected     int
	loading      bool
	err          error
	width        int
	height       int
}

// NewView creates a new history view.
func NewView(s *styles.Styles, km *keymap.KeyMap, historyService driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateHistory)

	return &View{
		styles:         s,
		keymap:         km,
		statusbar:      bar,
		historyService: historyService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the recent interactions.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.historyService == nil {
			return messages.HistoryLoaded{}
		}
		interactions, err := v.historyService.RecentInteractions(v.ctx, Limit)
		return messages.HistoryLoaded{Interactions: interactions, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		v.interactions = msg.Interactions
		v.selected = 0
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.interactions)-1 {
			v.selected++
		}
	case keymap.Matches(keyStr, v.keymap.Reuse):
		if sel := v.SelectedInteraction(); sel != nil {
			question := sel.Question
			return v, func() tea.Msg {
				return messages.QuestionSelected{Question: question}
			}
		}
	}
	return v, nil
}

// View renders the history list.
func (v *View) View() string {
	sections := []string{v.styles.Title.Render("History"), ""}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case len(v.interactions) == 0:
		sections = append(sections, v.styles.Muted.Render("No questions asked yet"))
	default:
		sections = append(sections, v.renderList(), "", v.renderPreview())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderList() string {
	// half the body goes to the list, the rest to the preview
	visible := max((v.height-8)/2, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.interactions))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		it := v.interactions[i]
		line := fmt.Sprintf("%s  %-17s %s",
			it.Timestamp.Local().Format("2006-01-02 15:04"), it.Status, truncate(it.Question, v.width-40))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderPreview() string {
	sel := v.SelectedInteraction()
	if sel == nil {
		return ""
	}

	width := max(v.width-4, 20)
	lines := []string{
		v.styles.Question.Width(width).Render(sel.Question),
		v.styles.ForStatus(sel.Status).Width(width).Render(sel.Answer),
	}
	for i, c := range sel.Citations {
		lines = append(lines, v.styles.Citation.Render(fmt.Sprintf("[%d] %s p.%d", i+1, c.Document, c.Page)))
	}
	lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("answered in %s", sel.ExecutionTime.Round(time.Millisecond))))
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	n = max(n, 10)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusbar.SetWidth(width)
}

// Interactions returns the loaded interactions.
func (v *View) Interactions() []domain.Interaction {
	return v.interactions
}

// SelectedInteraction returns the highlighted interaction, or nil when the list is empty.
func (v *View) SelectedInteraction() *domain.Interaction {
	if v.selected < 0 || v.selected >= len(v.interactions) {
		return nil
	}
	return &v.interactions[v.selected]
}

// Err returns the load error, if any.
func (v *View) Err() error {
	return v.err
}
