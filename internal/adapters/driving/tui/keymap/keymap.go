// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// AddNote opens the vault note picker.
	AddNote key.Binding

	// AddText starts free-text entry.
	AddText key.Binding

	// AddSelection starts entry of highlighted text.
	AddSelection key.Binding

	// ClipURL fetches a web page into the session.
	ClipURL key.Binding

	// Remove deletes the selected source.
	Remove key.Binding

	// CycleType moves to the next analysis type.
	CycleType key.Binding

	// CycleProvider moves to the next AI provider.
	CycleProvider key.Binding

	// Language edits the response language.
	Language key.Binding

	// Prompt edits the custom prompt.
	Prompt key.Binding

	// Submit sends the session for analysis.
	Submit key.Binding

	// Reset discards the session.
	Reset key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		AddNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "note"),
		),
		AddText: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "text"),
		),
		AddSelection: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "selection"),
		),
		ClipURL: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "clip url"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analysis type"),
		),
		CycleProvider: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "provider"),
		),
		Language: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "language"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "custom prompt"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "analyse"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// SessionHelp returns keybindings for a session with sources.
func (k *KeyMap) SessionHelp() []key.Binding {
	return []key.Binding{k.AddNote, k.AddText, k.ClipURL, k.Remove, k.Submit, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.AddNote, k.AddText, k.AddSelection, k.ClipURL, k.Remove},
		{k.CycleType, k.CycleProvider, k.Language, k.Prompt},
		{k.Submit, k.Reset, k.Help, k.Quit},
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
