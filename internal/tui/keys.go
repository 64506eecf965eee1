package tui

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Dismiss    key.Binding
	DismissAll key.Binding
	New        key.Binding
	Pin        key.Binding
	History    key.Binding
	Quit       key.Binding

	// history modal
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ClearHistory key.Binding
	Close        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Dismiss: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x", "dismiss"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "dismiss all"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new notice"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "new pinned"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("D"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "h"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss, k.DismissAll, k.New, k.Pin, k.History, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
