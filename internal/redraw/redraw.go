// Package redraw decides when the overlay has enough freshly resolved
// players to re-render the lobby table, instead of redrawing on every
// single player resolution.
package redraw

import (
	"sync"
	"time"

	"github.com/prism-overlay/bwoverlay/internal/player"
)

// DebounceInterval is the minimum gap between two redraws, so a burst of
// players resolving in quick succession (e.g. right after a /who) coalesces
// into a single render.
const DebounceInterval = 250 * time.Millisecond

// Aggregator collects resolved players and signals when a redraw is due.
type Aggregator struct {
	mu       sync.Mutex
	players  map[string]player.Player // keyed by display name
	pending  bool
	lastDraw time.Time
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{players: make(map[string]player.Player)}
}

// Update records p's latest resolution and reports whether a redraw should
// fire now: true once DebounceInterval has passed since the last Players
// call (or if Players has never been called), false inside that window.
func (a *Aggregator) Update(p player.Player) (shouldRedraw bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.players[p.DisplayName()] = p
	a.pending = true

	if time.Since(a.lastDraw) < DebounceInterval {
		return false
	}
	return true
}

// Players returns the current set of resolved players, sorted for display,
// and clears the pending flag.
func (a *Aggregator) Players() []player.Player {
	a.mu.Lock()
	defer a.mu.Unlock()

	list := make([]player.Player, 0, len(a.players))
	for _, p := range a.players {
		list = append(list, p)
	}
	a.pending = false
	a.lastDraw = time.Now()
	return player.SortPlayers(list)
}

// Reset clears every tracked player, used when the overlay leaves the
// lobby or a game ends (LobbySwap, EndBedwarsGame).
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.players = make(map[string]player.Player)
	a.pending = false
}

// Remove drops a single player, used on LobbyLeave.
func (a *Aggregator) Remove(displayName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.players, displayName)
}

// Get returns the tracked player for displayName, if any has been recorded.
func (a *Aggregator) Get(displayName string) (player.Player, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.players[displayName]
	return p, ok
}
