// Package controller wires the tailer, parser, state machine, stats
// assembler and worker pool together into the overlay's single run loop.
package controller

import (
	"context"
	"log/slog"

	"github.com/prism-overlay/bwoverlay/internal/denick"
	"github.com/prism-overlay/bwoverlay/internal/events"
	"github.com/prism-overlay/bwoverlay/internal/nickdb"
	"github.com/prism-overlay/bwoverlay/internal/output"
	"github.com/prism-overlay/bwoverlay/internal/parsing"
	"github.com/prism-overlay/bwoverlay/internal/player"
	"github.com/prism-overlay/bwoverlay/internal/presence"
	"github.com/prism-overlay/bwoverlay/internal/redraw"
	"github.com/prism-overlay/bwoverlay/internal/state"
)

// playerResolver is the subset of *assembler.Assembler the controller
// depends on, so tests can supply a stub.
type playerResolver interface {
	GetPlayer(ctx context.Context, name string) (player.Player, error)
}

// jobSubmitter is the subset of *pool.Pool the controller needs.
type jobSubmitter interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

// playerCache is the subset of *playercache.Cache the controller depends on:
// consulting the long-term tier for auto-denick classification, and
// signaling a short-term clear when a game ends.
type playerCache interface {
	GetLongTerm(username string) (player.Player, bool)
	Clear(shortTermOnly bool)
}

// Controller owns one overlay session: one log file, one state machine, one
// set of in-flight player resolutions.
type Controller struct {
	state      *state.State
	assembler  playerResolver
	pool       jobSubmitter
	aggregator *redraw.Aggregator
	nicks      *nickdb.Database
	cache      playerCache
	sink       output.Sink
	hooks      presence.Hooks
	log        *slog.Logger
}

func New(
	st *state.State,
	assembler playerResolver,
	pool jobSubmitter,
	aggregator *redraw.Aggregator,
	nicks *nickdb.Database,
	cache playerCache,
	sink output.Sink,
	hooks presence.Hooks,
	log *slog.Logger,
) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		state:      st,
		assembler:  assembler,
		pool:       pool,
		aggregator: aggregator,
		nicks:      nicks,
		cache:      cache,
		sink:       sink,
		hooks:      hooks,
		log:        log,
	}
}

// StateSnapshot exposes the overlay's current state for rendering or
// diagnostics.
func (c *Controller) StateSnapshot() state.Snapshot {
	return c.state.Snapshot()
}

// Players returns the current resolved, sorted player list.
func (c *Controller) Players() []player.Player {
	return c.aggregator.Players()
}

// RenderNow pushes the current player list to the configured output sink.
// Wired as the default presence.Hooks.Redraw implementation by cmd/bwoverlay.
func (c *Controller) RenderNow() error {
	return c.sink.Render(c.Players())
}

// Run consumes lines until the channel closes or ctx is cancelled.
func (c *Controller) Run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.ProcessLine(ctx, line)
		}
	}
}

// ProcessLine parses one log line and folds its event, if any, onto the
// state, enqueueing stats fetches and redraws as needed.
func (c *Controller) ProcessLine(ctx context.Context, line string) {
	ev, ok := parsing.Parse(line)
	if !ok {
		return
	}
	c.ProcessEvent(ctx, ev)
}

// ProcessEvent is the same as ProcessLine but for an already-parsed event,
// used directly by tests and by ProcessLine.
func (c *Controller) ProcessEvent(ctx context.Context, ev events.Event) {
	if c.state.PartyListIncoming() && ev.Kind != events.PartyListIncoming && ev.Kind != events.PartyMembershipList {
		c.state.FinishIncomingPartyList()
	}

	delta := c.state.ApplyEvent(ev)

	switch ev.Kind {
	case events.LobbySwap, events.EndBedwarsGame:
		c.aggregator.Reset()
		c.hooks.UpdatePresenceNow("In lobby")
	case events.LobbyLeave:
		c.aggregator.Remove(ev.Username)
	case events.StartBedwarsGame:
		c.hooks.UpdatePresenceNow("In game")
	case events.WhisperCommandSetNick:
		c.hooks.FlushSettingsNow()
	case events.BedwarsGameStartingSoon:
		c.maybeAutoDenick(ctx)
	}

	for _, name := range delta.NewLobbyPlayers {
		c.enqueueFetch(ctx, name)
	}

	if ev.Kind == events.EndBedwarsGame {
		c.cache.Clear(true)
		c.hooks.GameEndedNow()
	}
}

func (c *Controller) enqueueFetch(ctx context.Context, name string) {
	err := c.pool.Submit(ctx, func(ctx context.Context) {
		p, err := c.assembler.GetPlayer(ctx, name)
		if err != nil {
			c.log.Warn("failed to resolve player", "player", name, "err", err)
			return
		}
		if c.aggregator.Update(p) {
			c.hooks.RedrawNow()
		}
	})
	if err != nil {
		c.log.Warn("failed to enqueue player fetch", "player", name, "err", err)
	}
}

// maybeAutoDenick tries to pair an unresolved nick in the lobby with the
// one missing party teammate, guessing that nick's real identity without
// waiting on a remote denick lookup. Only attempted once the lobby is a
// full, settled Bed Wars lobby we're confidently in sync with; see
// denick.GuardSatisfied.
func (c *Controller) maybeAutoDenick(ctx context.Context) {
	snap := c.state.Snapshot()
	if !denick.GuardSatisfied(snap.InQueue, snap.OutOfSync, snap.LobbyPlayers, snap.AlivePlayers) {
		return
	}

	partyMembers := make([]string, 0, len(snap.PartyRoles))
	for member := range snap.PartyRoles {
		if member != snap.OwnUsername {
			partyMembers = append(partyMembers, member)
		}
	}

	candidates := make([]denick.Candidate, 0, len(snap.LobbyPlayers))
	for name := range snap.LobbyPlayers {
		cached, found := c.cache.GetLongTerm(name)
		if !found || cached.Variant == player.Pending {
			// Any lobby member we haven't settled a long-term answer for
			// yet makes the whole guess unsafe this tick.
			return
		}

		if cached.Variant == player.Known {
			if cached.Nick == "" {
				candidates = append(candidates, denick.Candidate{LobbyName: name, Status: denick.StatusKnownNoNick})
				continue
			}
			if manualID, ok := c.nicks.GetDefault(cached.Nick); ok && manualID == cached.UUID {
				candidates = append(candidates, denick.Candidate{
					LobbyName:    name,
					Status:       denick.StatusManualOverride,
					RealUsername: cached.Username,
				})
				continue
			}
		}
		candidates = append(candidates, denick.Candidate{LobbyName: name, Status: denick.StatusUnknownNick})
	}

	teammate, nick, ok := denick.Guess(partyMembers, snap.LobbyPlayers, candidates)
	if !ok {
		return
	}

	teammatePlayer, known := c.aggregator.Get(teammate)
	if !known || teammatePlayer.Variant != player.Known {
		return
	}

	c.log.Info("auto-denick guess", "nick", nick, "teammate", teammate)
	c.nicks.Set(nick, teammatePlayer.UUID)
	c.enqueueFetch(ctx, nick)
}
