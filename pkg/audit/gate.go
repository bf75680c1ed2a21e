package audit

// Gate tracks the pending lifecycle event for one build. The surrounding
// application sets the event at each transition and the builder consumes
// it; an event outside the allow-list clears the pending state so the
// build short-circuits to an empty result instead of erroring.
type Gate struct {
	allowed []Event
	current Event
	pending bool
}

// NewGate returns a gate for the given allow-list. An empty allow-list
// falls back to the four standard lifecycle events.
func NewGate(allowed []Event) *Gate {
	if len(allowed) == 0 {
		allowed = DefaultEvents()
	}
	return &Gate{allowed: allowed}
}

// SetCurrent marks the event as pending when it is allow-listed.
// A non-allow-listed event silently clears any pending event.
func (g *Gate) SetCurrent(event Event) {
	if !EventAllowed(event, g.allowed) {
		g.Clear()
		return
	}
	g.current = event
	g.pending = true
}

// Current returns the pending event, if any.
func (g *Gate) Current() (Event, bool) {
	if !g.pending {
		return "", false
	}
	return g.current, true
}

// Clear drops the pending event.
func (g *Gate) Clear() {
	g.current = ""
	g.pending = false
}

// Enabled reports whether auditing is active for the current runtime.
// Request-serving runtimes always audit; console runtimes audit only
// when explicitly enabled via configuration.
func Enabled(console, consoleAuditing bool) bool {
	if !console {
		return true
	}
	return consoleAuditing
}
