// Package presence defines the side-effect hooks a GUI layer plugs into the
// controller for: persisting settings, triggering a window redraw,
// reporting rich presence, and reacting to a game ending. The controller
// calls these; it never assumes anything about what's on the other end.
package presence

// Hooks is the set of callbacks the controller invokes as it processes
// events. A headless deployment (the console sink) can pass a Hooks value
// with every field left nil; each Now method treats a nil hook as a no-op.
type Hooks struct {
	// FlushSettings is called after any runtime change to settings that
	// should be persisted (e.g. a newly learned nick, a key pasted in).
	FlushSettings func()

	// Redraw is called when the aggregator decides a new player list is
	// ready to display.
	Redraw func()

	// UpdatePresence is called with a short human-readable status string
	// ("In queue", "In game", "42 players in lobby") for a GUI's rich
	// presence integration.
	UpdatePresence func(status string)

	// GameEnded is called once per Bed Wars match ending, after the
	// overlay has finished updating its own state for it.
	GameEnded func()
}

// FlushSettingsNow invokes the FlushSettings hook if set.
func (h Hooks) FlushSettingsNow() {
	if h.FlushSettings != nil {
		h.FlushSettings()
	}
}

// RedrawNow invokes the Redraw hook if set.
func (h Hooks) RedrawNow() {
	if h.Redraw != nil {
		h.Redraw()
	}
}

// UpdatePresenceNow invokes the UpdatePresence hook if set.
func (h Hooks) UpdatePresenceNow(status string) {
	if h.UpdatePresence != nil {
		h.UpdatePresence(status)
	}
}

// GameEndedNow invokes the GameEnded hook if set.
func (h Hooks) GameEndedNow() {
	if h.GameEnded != nil {
		h.GameEnded()
	}
}
