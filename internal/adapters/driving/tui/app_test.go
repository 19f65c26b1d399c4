package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Answer: &MockAnswerService{},
		History: &MockHistoryService{Interactions: []domain.Interaction{
			{ID: 1, Question: "earlier question", Answer: "earlier answer", Status: domain.AnswerStatusAnswered},
		}},
		Index: &MockIndexService{Info: domain.IndexInfo{Count: 7, Documents: 2, Model: "hashing-384"}},
	}
}

func newReadyApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(160, 30)
	return app
}

// run feeds msg to the app and then every message its command produces.
func run(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	for cmd != nil {
		next := cmd()
		if next == nil {
			return
		}
		_, cmd = app.Update(next)
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_IndexStatusShownInStatusBar(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(app.loadIndexStatus()())

	assert.Contains(t, app.View(), "7 chunks from 2 documents")
}

func TestApp_MissingIndexIsNotAnError(t *testing.T) {
	ports := newTestPorts()
	ports.Index = &MockIndexService{Err: domain.ErrIndexMissing}
	app := newReadyApp(t, ports)

	app.Update(app.loadIndexStatus()())

	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Ready")
}

func TestApp_AskQuestion(t *testing.T) {
	ports := newTestPorts()
	ports.Answer = &MockAnswerService{AnswerFunc: func(_ context.Context, q string) (domain.Answer, error) {
		return domain.Answer{Text: "echo: " + q, Status: domain.AnswerStatusAnswered}, nil
	}}
	app := newReadyApp(t, ports)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, app.Chat().Turns(), 1)
	assert.Equal(t, "echo: hello", app.Chat().Turns()[0].Answer.Text)
	assert.Contains(t, app.View(), "echo: hello")
	assert.NoError(t, app.Err())
}

func TestApp_AnswerErrorRecorded(t *testing.T) {
	ports := newTestPorts()
	ports.Answer = &MockAnswerService{AnswerFunc: func(context.Context, string) (domain.Answer, error) {
		return domain.Answer{}, domain.ErrIndexCorrupt
	}}
	app := newReadyApp(t, ports)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, app.Err(), domain.ErrIndexCorrupt)
}

func TestApp_HistoryRoundTrip(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	run(app, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.Contains(t, app.View(), "earlier question")

	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.Equal(t, "earlier question", app.Chat().Question())
}

func TestApp_HistoryBack(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	run(app, tea.KeyMsg{Type: tea.KeyCtrlR})

	run(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_HistoryUnavailableWithoutPort(t *testing.T) {
	ports := newTestPorts()
	ports.History = nil
	app := newReadyApp(t, ports)

	run(app, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_HelpToggle(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Ask again")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	err := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: err})

	assert.ErrorIs(t, app.Err(), err)
	assert.Contains(t, app.View(), "Error: boom")
}
