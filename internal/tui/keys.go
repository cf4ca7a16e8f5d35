package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play   key.Binding
	Step   key.Binding
	Settle key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Step: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "step"),
		),
		Settle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "run until stable"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Step, k.Settle, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Play, k.Step}, {k.Settle, k.Reset, k.Quit}}
}
