// Package player models a single entry in the lobby player list: what is
// known about them, and how to rank and rate that knowledge for display.
package player

import (
	"sort"

	"github.com/google/uuid"
)

// Variant tags which case of the Player sum type this value holds.
type Variant int

const (
	_ Variant = iota
	Known
	Nicked
	Pending
	Unknown
)

// Player is a closed sum type over the four states a lobby entry can be in:
// a resolved account with stats, a nick with no known owner, a resolved
// account whose stats are still being fetched, or a plain username no
// lookup has started for yet.
type Player struct {
	Variant Variant

	Username string // Known, Pending, Unknown
	UUID     uuid.UUID // Known, Pending
	Nick     string    // Nicked, Known (nick the player is currently using, may be empty)

	Stats *Stats // Known only

	FetchError string // Known, set when the API call succeeded but returned a terminal error to show
}

func NewKnown(username string, id uuid.UUID, nick string, stats Stats) Player {
	return Player{Variant: Known, Username: username, UUID: id, Nick: nick, Stats: &stats}
}

func NewNicked(nick string) Player {
	return Player{Variant: Nicked, Nick: nick}
}

func NewPending(username string, id uuid.UUID) Player {
	return Player{Variant: Pending, Username: username, UUID: id}
}

func NewUnknown(username string) Player {
	return Player{Variant: Unknown, Username: username}
}

// DisplayName is the username shown in the player list, falling back to the
// nick when the real identity hasn't been resolved.
func (p Player) DisplayName() string {
	switch p.Variant {
	case Known, Pending, Unknown:
		return p.Username
	case Nicked:
		return p.Nick
	default:
		return ""
	}
}

// SortIndex returns a sortable, comparable rank: a known player's rating
// index, or -1 for every other variant (and for a known player without
// stats), since nothing comparable is known about them yet. The fixed order
// among nicked, pending and unknown players comes from SortPlayers.
func (p Player) SortIndex() float64 {
	if p.Variant == Known && p.Stats != nil {
		return p.Stats.Index
	}
	return -1
}

// SortPlayers orders players for display: known players ranked by their
// rating index descending, then nicked, then pending, then unknown players,
// each group alphabetical by display name within itself.
func SortPlayers(players []Player) []Player {
	sorted := make([]Player, len(players))
	copy(sorted, players)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Variant != b.Variant {
			if a.Variant == Known || b.Variant == Known {
				return a.Variant == Known
			}
			return variantOrder(a.Variant) < variantOrder(b.Variant)
		}
		if a.Variant == Known {
			if a.SortIndex() != b.SortIndex() {
				return a.SortIndex() > b.SortIndex()
			}
		}
		return a.DisplayName() < b.DisplayName()
	})
	return sorted
}

func variantOrder(v Variant) int {
	switch v {
	case Known:
		return 0
	case Nicked:
		return 1
	case Pending:
		return 2
	default:
		return 3
	}
}

// RateIndex computes the display-rank index for a Known player's stats: a
// star-weighted combination of FKDR and win rate, matching the overlay's
// "who's the scariest player in this lobby" heuristic.
func RateIndex(stats Stats) float64 {
	const starWeight = 10.0
	return stats.Stars*starWeight*fkdrBand(stats.FKDR) + stats.FKDR*wlrBand(stats.WLR)
}

// fkdrBand and wlrBand damp outlier ratios so a single lucky game doesn't
// dominate the ranking the way a raw product would.
func fkdrBand(fkdr float64) float64 {
	switch {
	case fkdr >= 10:
		return 2.5
	case fkdr >= 5:
		return 2.0
	case fkdr >= 2:
		return 1.5
	default:
		return 1.0
	}
}

func wlrBand(wlr float64) float64 {
	switch {
	case wlr >= 5:
		return 2.0
	case wlr >= 2:
		return 1.5
	default:
		return 1.0
	}
}
