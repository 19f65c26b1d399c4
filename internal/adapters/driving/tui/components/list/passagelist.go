// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// PassageList displays the passages an answer was grounded on.
type PassageList struct {
	passages []domain.RetrievalResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates an empty passage list.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the passage list.
func (p *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (p *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the passages with the selected one expanded.
func (p *PassageList) View() string {
	if len(p.passages) == 0 {
		return p.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(p.passages)+4)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(p.passages))), "")

	for i := range p.passages {
		lines = append(lines, p.renderHeading(i))
	}

	if sel := p.SelectedPassage(); sel != nil {
		lines = append(lines, "", p.styles.Normal.Render(wrap(sel.Text, p.width-4, p.height-len(lines)-1)))
	}
	return strings.Join(lines, "\n")
}

func (p *PassageList) renderHeading(index int) string {
	r := &p.passages[index]
	heading := fmt.Sprintf("%s p.%d #%d", r.Document, r.Page, r.ChunkID)
	score := fmt.Sprintf("%.3f", r.Score)

	if index == p.selected {
		return p.styles.Selected.Render("> " + heading + "  " + score)
	}
	return p.styles.Normal.Render("  "+heading+"  ") + p.styles.Muted.Render(score)
}

// wrap breaks text into lines of at most width runes, keeping at most maxLines.
func wrap(text string, width, maxLines int) string {
	width = max(width, 20)
	maxLines = max(maxLines, 1)

	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += " ..."
	}
	return strings.Join(lines, "\n")
}

// SetPassages replaces the list and selects the first passage.
func (p *PassageList) SetPassages(passages []domain.RetrievalResult) {
	p.passages = passages
	p.selected = 0
}

// Passages returns the current passages.
func (p *PassageList) Passages() []domain.RetrievalResult {
	return p.passages
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// SelectedPassage returns the selected passage, or nil if the list is empty.
func (p *PassageList) SelectedPassage() *domain.RetrievalResult {
	if p.selected < 0 || p.selected >= len(p.passages) {
		return nil
	}
	return &p.passages[p.selected]
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.passages)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.passages)
}

// IsEmpty returns whether the list is empty.
func (p *PassageList) IsEmpty() bool {
	return len(p.passages) == 0
}
