package keys

import "github.com/gdamore/tcell/v2"

// Binding is a single key action scoped to a page (or global when Scope is
// empty). Bindings are matched in registration order, page scope first.
type Binding struct {
	Scope       string
	Key         tcell.Key
	Rune        rune
	Description string
	Visible     bool
	Handler     func()
}

// Matches reports whether the event triggers this binding.
func (b *Binding) Matches(ev *tcell.EventKey) bool {
	if b.Key != tcell.KeyRune {
		return ev.Key() == b.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == b.Rune
}

// Registry holds the application's key bindings.
type Registry struct {
	bindings []*Binding
}

// Add registers a binding. Pass an empty scope for a global binding.
func (r *Registry) Add(b *Binding) {
	r.bindings = append(r.bindings, b)
}

// Hints returns the visible binding descriptions for a page, page-scoped
// bindings first, in registration order.
func (r *Registry) Hints(page string) []string {
	var hints []string
	for _, b := range r.bindings {
		if b.Visible && b.Scope == page {
			hints = append(hints, b.Description)
		}
	}
	for _, b := range r.bindings {
		if b.Visible && b.Scope == "" {
			hints = append(hints, b.Description)
		}
	}
	return hints
}

// HandleEvent dispatches the event to the first matching binding for the
// page. Reports whether a handler ran.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, b := range r.bindings {
		if b.Scope == page && b.Matches(ev) {
			b.Handler()
			return true
		}
	}
	for _, b := range r.bindings {
		if b.Scope == "" && b.Matches(ev) {
			b.Handler()
			return true
		}
	}
	return false
}
