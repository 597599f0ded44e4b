package components

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the config editor key bindings.
type KeyMap struct {
	// Browsing
	Up   key.Binding
	Down key.Binding
	Jump key.Binding // 1-7 edits that field directly
	Edit key.Binding
	Save key.Binding
	Quit key.Binding

	// Editing a value
	Commit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the editor bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "down"),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
			key.WithHelp("1-7", "edit field"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "set value"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// BrowseHelp lists the bindings shown while moving between fields.
func (k KeyMap) BrowseHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.Jump, k.Save, k.Quit}
}

// EditHelp lists the bindings shown while a value is being typed.
func (k KeyMap) EditHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel}
}
