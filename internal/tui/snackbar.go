package tui

import (
	"github.com/google/uuid"

	"github.com/jask/jaskmap/core/explore"
)

// Snackbars opens the POI details snack bar. At most one is shown; a
// handle that has been dismissed, or replaced, no longer affects the view.
type Snackbars struct {
	current *snackbar
	opened  int
}

type snackbar struct {
	id     string
	name   string
	owner  *Snackbars
	closed bool
}

// Open implements explore.OverlayFactory.
func (s *Snackbars) Open(name string) explore.OverlayHandle {
	bar := &snackbar{id: uuid.NewString(), name: name, owner: s}
	s.current = bar
	s.opened++
	return bar
}

// Dismiss hides the snack bar. It is safe to call more than once.
func (b *snackbar) Dismiss() {
	if b.closed {
		return
	}
	b.closed = true
	if b.owner.current == b {
		b.owner.current = nil
	}
}

// Visible reports whether a snack bar is showing, and for which name.
func (s *Snackbars) Visible() (string, bool) {
	if s.current == nil {
		return "", false
	}
	return s.current.name, true
}

// View renders the live snack bar, or "" when none is showing.
func (s *Snackbars) View(width int) string {
	name, ok := s.Visible()
	if !ok {
		return ""
	}
	body := snackTitleStyle.Render(name) + "\n" + mutedStyle.Render("esc to close")
	return snackStyle.Width(min(max(width-4, 20), 48)).Render(body)
}
