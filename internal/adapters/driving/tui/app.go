package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/views/history"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView    *chat.View
	historyView *history.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Answer),
		historyView: history.NewView(s, km, ports.History),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("docintel - Document Q&A"),
		a.chatView.Init(),
	}
	if a.ports.Index != nil {
		cmds = append(cmds, a.loadIndexStatus())
	}
	return tea.Batch(cmds...)
}

func (a *App) loadIndexStatus() tea.Cmd {
	return func() tea.Msg {
		info, err := a.ports.Index.Status(a.ctx)
		return messages.IndexStatusLoaded{Info: info, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.IndexStatusLoaded:
		// A missing index is not an error until a question is asked.
		if msg.Err == nil {
			a.chatView.SetIndexInfo(msg.Info)
		}
		return a, nil

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.QuestionSelected:
		a.currentView = messages.ViewChat
		a.chatView.SetQuestion(msg.Question)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewHelp:
		if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) {
			a.currentView = messages.ViewChat
		}
		return a, nil

	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ViewChat:
		if keymap.Matches(keyStr, a.keymap.Help) {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}
	return a, nil
}

// switchView activates view. History needs a history port.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHistory {
		if a.ports.History == nil {
			return nil
		}
		a.currentView = view
		return a.historyView.Init()
	}
	a.currentView = view
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewChat:
		return a.chatView.View()
	default:
		return a.chatView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Chat:
  (type)      Enter a question
  enter       Ask
  tab         Browse the sources of the last answer
  pgup/pgdn   Scroll the transcript
  ctrl+r      History

Sources:
  j/k, ↑/↓    Select passage
  tab, esc    Back to the question

History:
  j/k, ↑/↓    Navigate questions
  enter       Ask again
  esc         Back to chat

Anywhere:
  f1          Toggle help
  ctrl+c      Quit

[esc] back to chat`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
}
