// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// ErrNoAnswerService is reported when a question is asked without an answer service.
var ErrNoAnswerService = errors.New("answer service is required")

// Turn is one question and its answer in the transcript.
type Turn struct {
	Question string
	Answer   domain.Answer
	Err      error
	Pending  bool
}

// View is the chat view: a scrolling transcript, the question input,
// the sources of the latest answer and a status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	sources    *list.PassageList
	statusbar  *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	turns        []Turn
	width        int
	height       int
	ready        bool
	err          error
	focusSources bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		transcript:    viewport.New(80, 12),
		sources:       list.NewPassageList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if v.focusSources {
		if keymap.Matches(keyStr, v.keymap.Sources) || keymap.Matches(keyStr, v.keymap.Back) {
			v.focusInput()
			return v, nil
		}
		v.sources, _ = v.sources.Update(msg)
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Ask):
		return v, v.submit()

	case keymap.Matches(keyStr, v.keymap.Sources):
		if !v.sources.IsEmpty() {
			v.focusSources = true
			v.input.Blur()
			v.statusbar.SetState(status.StateSources)
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.PageUp), keymap.Matches(keyStr, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.History):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHistory}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts answering the typed question. Only one question is in flight at a time.
func (v *View) submit() tea.Cmd {
	if v.Pending() {
		return nil
	}
	question := v.input.Submit()
	if question == "" {
		return nil
	}

	v.turns = append(v.turns, Turn{Question: question, Pending: true})
	v.statusbar.SetState(status.StateThinking)
	v.refreshTranscript()
	return v.ask(question)
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := v.answerService.Answer(v.ctx, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].Pending && v.turns[i].Question == msg.Question {
			v.turns[i] = Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err}
			break
		}
	}

	v.err = msg.Err
	v.sources.SetPassages(msg.Answer.Results)
	if msg.Err != nil && msg.Answer.Status == "" {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetAnswer(msg.Answer)
	}
	v.refreshTranscript()
}

func (v *View) focusInput() {
	v.focusSources = false
	v.input.Focus()
	if v.statusbar.State() == status.StateSources {
		v.statusbar.SetState(status.StateAnswered)
	}
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question to search your indexed documents.")
	}

	width := max(v.width-4, 20)
	blocks := make([]string, 0, len(v.turns))
	for _, t := range v.turns {
		blocks = append(blocks, v.renderTurn(t, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(t Turn, width int) string {
	lines := []string{v.styles.Question.Width(width).Render("You: " + t.Question)}

	switch {
	case t.Pending:
		lines = append(lines, v.styles.Muted.PaddingLeft(2).Render("thinking..."))
	case t.Answer.Status == "" && t.Err != nil:
		lines = append(lines, v.styles.Error.PaddingLeft(2).Width(width).Render("Error: "+t.Err.Error()))
	default:
		lines = append(lines, v.styles.ForStatus(t.Answer.Status).Width(width).Render(t.Answer.Text))
		for i, r := range t.Answer.Results {
			lines = append(lines, v.styles.Citation.Render(
				fmt.Sprintf("[%d] %s p.%d (%.3f)", i+1, r.Document, r.Page, r.Score)))
		}
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("docintel"), "", v.transcript.View(), "")

	if v.focusSources {
		sections = append(sections, v.sources.View())
	} else {
		sections = append(sections, v.input.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// header, input box, spacing and status take ten rows
	bodyHeight := max(height-10, 3)
	v.transcript.Width = width
	v.transcript.Height = bodyHeight
	v.input.SetWidth(width)
	v.sources.SetDimensions(width, bodyHeight)
	v.statusbar.SetWidth(width)
	v.refreshTranscript()
}

// SetIndexInfo shows the loaded index in the status bar.
func (v *View) SetIndexInfo(info domain.IndexInfo) {
	v.statusbar.SetIndex(info)
}

// SetQuestion places text in the input and focuses it.
func (v *View) SetQuestion(question string) {
	v.focusInput()
	v.input.SetValue(question)
}

// Question returns the text currently typed.
func (v *View) Question() string {
	return v.input.Value()
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return len(v.turns) > 0 && v.turns[len(v.turns)-1].Pending
}

// SourcesFocused reports whether the source list has focus.
func (v *View) SourcesFocused() bool {
	return v.focusSources
}

// Sources returns the passages of the latest answer.
func (v *View) Sources() []domain.RetrievalResult {
	return v.sources.Passages()
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
