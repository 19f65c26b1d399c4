// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
// Printable keys are only bound where no text input has focus.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Ask submits the typed question.
	Ask key.Binding

	// History opens the list of past questions.
	History key.Binding

	// Sources toggles focus between the input and the source passages.
	Sources key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// PageUp scrolls the transcript up.
	PageUp key.Binding

	// PageDown scrolls the transcript down.
	PageDown key.Binding

	// Reuse asks a question from history again.
	Reuse key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		History: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "history"),
		),
		Sources: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sources"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Reuse: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask again"),
		),
	}
}

// ShortHelp returns the hints shown while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Sources, k.History, k.Quit}
}

// SourcesHelp returns the hints shown while browsing source passages.
func (k *KeyMap) SourcesHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Sources, k.Back}
}

// HistoryHelp returns the hints shown in the history view.
func (k *KeyMap) HistoryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reuse, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.Sources, k.PageUp, k.PageDown},
		{k.Up, k.Down, k.Back},
		{k.History, k.Reuse},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
