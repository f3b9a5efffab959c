package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Select   key.Binding
	Orbit    key.Binding
	Snapshot key.Binding
	Log      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys(" ", "n"),
			key.WithHelp("space/n", "next demo"),
		),
		Select: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "select demo"),
		),
		Orbit: key.NewBinding(
			key.WithKeys("left", "right", "up", "down"),
			key.WithHelp("←/→/↑/↓", "orbit camera"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "save png"),
		),
		Log: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "view log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Snapshot, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Select, k.Orbit},
		{k.Snapshot, k.Log, k.Help, k.Quit},
	}
}
