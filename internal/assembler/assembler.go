// Package assembler turns a name seen in the lobby (which may be a real
// username or a Hypixel nick) into a fully resolved Player, trying the
// cheapest and most authoritative sources first and falling back to
// progressively fuzzier ones.
package assembler

import (
	"context"

	"github.com/google/uuid"

	"github.com/prism-overlay/bwoverlay/internal/fetch"
	"github.com/prism-overlay/bwoverlay/internal/nickdb"
	"github.com/prism-overlay/bwoverlay/internal/player"
	"github.com/prism-overlay/bwoverlay/internal/playercache"
)

// usernameResolver resolves a real Minecraft username to its account UUID.
// Satisfied by *fetch.MojangClient.
type usernameResolver interface {
	ResolveUUID(ctx context.Context, username string) (uuid.UUID, error)
}

// statsFetcher fetches a resolved account's Bed Wars stats. Satisfied by
// *fetch.HypixelClient.
type statsFetcher interface {
	GetBedwarsStats(ctx context.Context, id uuid.UUID) (*player.Stats, error)
}

// winstreakEstimator estimates hidden winstreaks. Satisfied by
// *fetch.WinstreakClient.
type winstreakEstimator interface {
	Estimate(ctx context.Context, id uuid.UUID) (player.Winstreaks, error)
}

// nickResolver resolves a nick to the account UUID behind it via a remote
// tracking service. Satisfied by *fetch.DenickClient.
type nickResolver interface {
	Lookup(ctx context.Context, nick string) (uuid.UUID, error)
}

// Assembler wires the fetch clients, nick database and player cache
// together into the single "resolve one lobby entry" operation the worker
// pool calls per player.
type Assembler struct {
	mojang     usernameResolver
	hypixel    statsFetcher
	winstreaks winstreakEstimator
	denick     nickResolver
	nicks      *nickdb.Database
	cache      *playercache.Cache
}

func New(
	mojang usernameResolver,
	hypixel statsFetcher,
	winstreaks winstreakEstimator,
	denick nickResolver,
	nicks *nickdb.Database,
	cache *playercache.Cache,
) *Assembler {
	return &Assembler{
		mojang:     mojang,
		hypixel:    hypixel,
		winstreaks: winstreaks,
		denick:     denick,
		nicks:      nicks,
		cache:      cache,
	}
}

// GetPlayer resolves name, which is whatever string the log line showed for
// this lobby entry. It may be a real Minecraft username, or it may be a
// nick masking the player's real account.
func (a *Assembler) GetPlayer(ctx context.Context, name string) (player.Player, error) {
	if id, ok := a.nicks.Get(name); ok {
		return a.knownFromUUID(ctx, "", name, id)
	}

	id, err := a.mojang.ResolveUUID(ctx, name)
	if err == nil {
		return a.knownFromUUID(ctx, name, "", id)
	}
	if fetch.KindOf(err) == fetch.NotFound {
		return a.denickFallback(ctx, name)
	}
	return player.Player{}, err
}

// denickFallback is reached when name didn't resolve as a real Mojang
// username, meaning it's almost certainly a nick. It tries the remote
// denick service before giving up and reporting the entry as an
// unidentified nick.
func (a *Assembler) denickFallback(ctx context.Context, nick string) (player.Player, error) {
	id, err := a.denick.Lookup(ctx, nick)
	if err != nil {
		if fetch.KindOf(err) == fetch.NotFound {
			return player.NewNicked(nick), nil
		}
		return player.Player{}, err
	}
	a.nicks.Set(nick, id)
	return a.knownFromUUID(ctx, "", nick, id)
}

// knownFromUUID fetches (or reuses a cached copy of) the Bed Wars stats for
// id, producing a Known player. username is the real IGN if already known
// from a Mojang lookup; nick is set when this account was reached by
// denicking rather than directly. The cache is keyed by the lobby-visible
// name (the nick when denicked, otherwise the real username), matching how
// GetPlayer's caller looks entries up.
func (a *Assembler) knownFromUUID(ctx context.Context, username, nick string, id uuid.UUID) (player.Player, error) {
	cacheKey := username
	if cacheKey == "" {
		cacheKey = nick
	}

	genus := a.cache.Genus()
	if cached, ok := a.cache.GetOrSetPending(cacheKey, false); ok {
		return cached, nil
	}

	stats, err := a.hypixel.GetBedwarsStats(ctx, id)
	if err != nil {
		return player.Player{}, err
	}

	if !stats.WinstreakF.Accurate {
		if estimate, werr := a.winstreaks.Estimate(ctx, id); werr == nil {
			stats.WinstreakF = estimate
		}
	}

	p := player.NewKnown(username, id, nick, *stats)
	a.cache.SetResolved(cacheKey, p, genus)
	return p, nil
}
