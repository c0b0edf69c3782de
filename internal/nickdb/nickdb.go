// Package nickdb resolves a nick (an alias a player sets via the in-game
// Hypixel nickname system) to the account UUID behind it, consulting a
// stack of layers from most to least specific.
package nickdb

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Layer is one source of nick->uuid mappings. The default layer is mutable
// (the overlay records nicks it resolves at runtime through Set); extra
// layers loaded from disk are treated as immutable
// snapshots and never written back to.
type Layer struct {
	mu      sync.RWMutex
	mutable bool
	entries map[string]uuid.UUID
}

func newLayer(mutable bool) *Layer {
	return &Layer{mutable: mutable, entries: make(map[string]uuid.UUID)}
}

func (l *Layer) get(nick string) (uuid.UUID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.entries[nick]
	return id, ok
}

func (l *Layer) set(nick string, id uuid.UUID) bool {
	if !l.mutable {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[nick] = id
	return true
}

// Database is an ordered stack of layers. Get consults them from first to
// last and returns the first hit; Set always writes to the default
// (mutable) layer regardless of what else is stacked on top of it.
type Database struct {
	mu      sync.RWMutex
	layers  []*Layer
	default_ *Layer
}

// New returns a Database with a single empty, mutable default layer.
func New() *Database {
	def := newLayer(true)
	return &Database{layers: []*Layer{def}, default_: def}
}

// fileLayer is the on-disk JSON shape for an immutable extra layer:
// a flat object of nick -> uuid-string.
type fileLayer map[string]string

// LoadLayer reads an immutable nick database layer from a JSON file and
// prepends it so it takes precedence over earlier-loaded layers and the
// default layer (later calls to LoadLayer outrank earlier ones, matching
// the most-recently-configured layer winning ties).
func (d *Database) LoadLayer(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw fileLayer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	layer := newLayer(false)
	for nick, idStr := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		layer.entries[nick] = id
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.layers = append([]*Layer{layer}, d.layers...)
	return nil
}

// Get resolves nick through every layer, most recently loaded first, and
// finally the default layer.
func (d *Database) Get(nick string) (uuid.UUID, bool) {
	d.mu.RLock()
	layers := d.layers
	d.mu.RUnlock()

	for _, layer := range layers {
		if id, ok := layer.get(nick); ok {
			return id, ok
		}
	}
	return uuid.UUID{}, false
}

// Set records a runtime-resolved nick->uuid mapping in the default layer.
// Its callers are the stats assembler (a nick resolved by the remote denick
// service) and the controller's auto-denick heuristic. A
// WhisperCommandSetNick event does not write here; the controller only
// flushes settings for it.
func (d *Database) Set(nick string, id uuid.UUID) {
	d.default_.set(nick, id)
}

// GetDefault resolves nick through only the default (manual) layer, never
// the read-only layers loaded from disk. The auto-denick heuristic uses
// this to tell a manually-confirmed denick apart from one an immutable,
// pre-loaded layer merely happens to agree with.
func (d *Database) GetDefault(nick string) (uuid.UUID, bool) {
	return d.default_.get(nick)
}

// Denick is the result of resolving a nick back to its real account.
type Denick struct {
	UUID  uuid.UUID
	Found bool
}

// Resolve is a convenience wrapper around Get, returning its result as a
// Denick.
func (d *Database) Resolve(nick string) Denick {
	id, ok := d.Get(nick)
	return Denick{UUID: id, Found: ok}
}
