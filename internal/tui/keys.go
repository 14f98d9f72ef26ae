package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Next    key.Binding
	Click   key.Binding
	Layers  key.Binding
	Dismiss key.Binding
	Toggle  key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next feature")),
		Click:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Layers:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "layers")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) footer() []key.Binding {
	return []key.Binding{k.Up, k.ZoomIn, k.ZoomOut, k.Next, k.Click, k.Layers, k.Dismiss, k.Quit}
}
