package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jaskmap/core/store"
)

// layersDialog lists the layer buttons and toggles the one under the cursor.
type layersDialog struct {
	open   bool
	cursor int
}

// update handles a key while the dialog is open. It returns the layer ID
// to toggle, or "".
func (d *layersDialog) update(m tea.KeyMsg, keys keyMap, buttons []store.Layer) string {
	switch {
	case key.Matches(m, keys.Dismiss), key.Matches(m, keys.Layers):
		d.open = false
	case key.Matches(m, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(m, keys.Down):
		if d.cursor < len(buttons)-1 {
			d.cursor++
		}
	case key.Matches(m, keys.Toggle):
		if d.cursor < len(buttons) {
			return buttons[d.cursor].ID
		}
	}
	return ""
}

func (d *layersDialog) view(buttons []store.Layer) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Layers"))
	b.WriteString("\n\n")
	if len(buttons) == 0 {
		b.WriteString(mutedStyle.Render("no layers loaded"))
	}
	for i, l := range buttons {
		prefix := "  "
		if i == d.cursor {
			prefix = cursorStyle.Render("> ")
		}
		mark := layerOffStyle.Render("[ ]")
		if l.Enabled {
			mark = layerOnStyle.Render("[x]")
		}
		b.WriteString(prefix + mark + " " + l.Name + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("space toggle • esc close"))
	return b.String()
}
