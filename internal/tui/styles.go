package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles for the TUI.
type Styles struct {
	Header    lipgloss.Style
	UserMsg   lipgloss.Style
	BotMsg    lipgloss.Style
	ErrorMsg  lipgloss.Style
	StatusBar lipgloss.Style
	InputBox  lipgloss.Style
	HelpHint  lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		UserMsg: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		BotMsg: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")),
		ErrorMsg: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		StatusBar: lipgloss.NewStyle().
			Faint(true),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		HelpHint: lipgloss.NewStyle().
			Faint(true).
			Italic(true),
	}
}

// KeyMap defines the TUI key bindings.
type KeyMap struct {
	Send  key.Binding
	Help  key.Binding
	Clear key.Binding
	Quit  key.Binding
	Esc   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "ctrl+g"),
			key.WithHelp("f1", "help"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}
