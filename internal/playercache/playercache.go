// Package playercache stores fetched player data behind a two-tier TTL: a
// short-term tier scoped to the current game (cleared when a Bed Wars game
// ends) and a long-term tier scoped to the whole session, consulted by the
// auto-denick heuristic where freshness doesn't matter as much as simply
// knowing who a lobby entry resolved to.
package playercache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/prism-overlay/bwoverlay/internal/player"
)

const (
	// ShortTermTTL bounds how long a per-game lookup is served from cache
	// before the next redraw re-fetches it.
	ShortTermTTL = 600 * time.Second
	// LongTermTTL bounds how long a per-session lookup is trusted, well
	// past any single game's lifetime.
	LongTermTTL = 3600 * time.Second
	// MaxEntries bounds each tier: once full, the oldest entry is evicted
	// to make room for the newest write, regardless of TTL.
	MaxEntries = 512
)

type entry struct {
	player  player.Player
	expires time.Time
	genus   int64
	elem    *list.Element // this entry's node in the owning store's FIFO
}

// store is one TTL-bounded, size-bounded tier keyed by lowercased username,
// with FIFO eviction once it's full (the same shape as internal/ratelimit's
// admission window, applied to cache entries instead of timestamps).
type store struct {
	ttl     time.Duration
	entries map[string]entry
	order   *list.List // oldest write at Front()
}

func newStore(ttl time.Duration) *store {
	return &store{ttl: ttl, entries: make(map[string]entry), order: list.New()}
}

func (s *store) get(key string) (player.Player, bool) {
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expires) {
		return player.Player{}, false
	}
	return e.player, true
}

func (s *store) set(key string, p player.Player, genus int64, ttl time.Duration) {
	if existing, ok := s.entries[key]; ok {
		s.order.Remove(existing.elem)
	} else if len(s.entries) >= MaxEntries {
		oldest := s.order.Front()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(string))
		}
	}
	elem := s.order.PushBack(key)
	s.entries[key] = entry{player: p, expires: time.Now().Add(ttl), genus: genus, elem: elem}
}

func (s *store) clear() {
	s.entries = make(map[string]entry)
	s.order = list.New()
}

func (s *store) evictExpired() {
	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expires) {
			s.order.Remove(e.elem)
			delete(s.entries, key)
		}
	}
}

// Cache is safe for concurrent use. Every write carries the genus the
// caller observed when it started the fetch; a write is dropped if the
// cache's genus has since moved on (a game ending, a manual cache clear),
// preventing a slow, now-obsolete fetch from overwriting fresher data.
type Cache struct {
	mu    sync.Mutex
	genus atomic.Int64

	short *store
	long  *store
}

// New returns an empty cache at genus 0.
func New() *Cache {
	return &Cache{short: newStore(ShortTermTTL), long: newStore(LongTermTTL)}
}

// Genus returns the cache's current genus, to be threaded through a fetch
// and passed back to SetResolved when it completes.
func (c *Cache) Genus() int64 {
	return c.genus.Load()
}

// Clear discards entries and advances the genus, so in-flight writes
// started before the clear are silently dropped when they arrive. With
// shortTermOnly, the long-term tier (and anyone's knowledge of who's who
// across games) survives; a bare game ending clears only the short-term
// tier, matching EndBedwarsGame's "signal short-term cache clear".
func (c *Cache) Clear(shortTermOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.short.clear()
	if !shortTermOnly {
		c.long.clear()
	}
	c.genus.Add(1)
}

// GetOrSetPending returns the cached player for username if present in the
// relevant tier (long-term tier too when longTerm is true), or atomically
// installs a Pending placeholder in both tiers and reports a miss, so
// concurrent callers for the same username collapse onto one fetch.
func (c *Cache) GetOrSetPending(username string, longTerm bool) (player.Player, bool) {
	key := strings.ToLower(username)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.short.get(key); ok {
		return p, true
	}
	if longTerm {
		if p, ok := c.long.get(key); ok {
			return p, true
		}
	}

	genus := c.genus.Load()
	pending := player.NewPending(username, uuid.UUID{})
	c.short.set(key, pending, genus, ShortTermTTL)
	c.long.set(key, pending, genus, LongTermTTL)
	return player.Player{}, false
}

// SetResolved records the final result of a fetch in both tiers, keyed by
// lowercased username. The write is dropped (and false returned) if genus
// no longer matches the cache's current genus.
func (c *Cache) SetResolved(username string, p player.Player, genus int64) bool {
	key := strings.ToLower(username)

	c.mu.Lock()
	defer c.mu.Unlock()
	if genus != c.genus.Load() {
		return false
	}
	c.short.set(key, p, genus, ShortTermTTL)
	c.long.set(key, p, genus, LongTermTTL)
	return true
}

// GetLongTerm reads the long-term tier only, regardless of what the
// short-term tier holds. Used by the auto-denick heuristic, which wants to
// know who a lobby entry resolved to at any point this session, not just
// this game.
func (c *Cache) GetLongTerm(username string) (player.Player, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.long.get(strings.ToLower(username))
}

// Evict removes expired entries from both tiers. Intended to be called
// periodically rather than on every Get, to keep lookups allocation-free.
func (c *Cache) Evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.short.evictExpired()
	c.long.evictExpired()
}
