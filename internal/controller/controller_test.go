package controller_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-overlay/bwoverlay/internal/controller"
	"github.com/prism-overlay/bwoverlay/internal/events"
	"github.com/prism-overlay/bwoverlay/internal/nickdb"
	"github.com/prism-overlay/bwoverlay/internal/output"
	"github.com/prism-overlay/bwoverlay/internal/player"
	"github.com/prism-overlay/bwoverlay/internal/playercache"
	"github.com/prism-overlay/bwoverlay/internal/presence"
	"github.com/prism-overlay/bwoverlay/internal/redraw"
	"github.com/prism-overlay/bwoverlay/internal/state"
)

type stubResolver struct {
	mu      sync.Mutex
	players map[string]player.Player
}

func (s *stubResolver) GetPlayer(ctx context.Context, name string) (player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[name]; ok {
		return p, nil
	}
	return player.NewUnknown(name), nil
}

type inlinePool struct{}

func (inlinePool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	job(ctx)
	return nil
}

type discardSink struct{}

func (discardSink) Render(players []player.Player) error { return nil }

// spyCache wraps a real *playercache.Cache, recording every Clear call so
// tests can assert EndBedwarsGame actually signals a cache clear.
type spyCache struct {
	*playercache.Cache
	clears []bool // one entry per Clear call, recording shortTermOnly
}

func (s *spyCache) Clear(shortTermOnly bool) {
	s.clears = append(s.clears, shortTermOnly)
	s.Cache.Clear(shortTermOnly)
}

func TestController_LobbyJoinTriggersResolutionAndRedraw(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{
		"Alice": player.NewKnown("Alice", uuid.New(), "", player.NewStats(0, 1, 0, 0, 0, 1, 0, 0, 0, player.Winstreaks{})),
	}}

	var redrawn bool
	hooks := presence.Hooks{Redraw: func() { redrawn = true }}

	c := controller.New(state.New(), resolver, inlinePool{}, redraw.New(), nickdb.New(), playercache.New(), discardSink{}, hooks, nil)

	ctx := context.Background()
	c.ProcessEvent(ctx, events.NewLobbyJoin("Alice", 1, 16))

	assert.True(t, redrawn)
}

func TestController_LobbySwapResetsAggregator(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{}}
	c := controller.New(state.New(), resolver, inlinePool{}, redraw.New(), nickdb.New(), playercache.New(), discardSink{}, presence.Hooks{}, nil)

	ctx := context.Background()
	c.ProcessEvent(ctx, events.NewLobbyJoin("Alice", 1, 16))
	c.ProcessEvent(ctx, events.NewLobbySwap())

	snap := c.StateSnapshot()
	assert.Empty(t, snap.LobbyPlayers)
	assert.Empty(t, c.Players())
}

func TestController_ProcessLine_NoMatchIsSilent(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{}}
	c := controller.New(state.New(), resolver, inlinePool{}, redraw.New(), nickdb.New(), playercache.New(), discardSink{}, presence.Hooks{}, nil)
	require.NotPanics(t, func() {
		c.ProcessLine(context.Background(), "garbage line")
	})
}

func TestController_Run_StopsWhenChannelCloses(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{}}
	c := controller.New(state.New(), resolver, inlinePool{}, redraw.New(), nickdb.New(), playercache.New(), discardSink{}, presence.Hooks{}, nil)

	lines := make(chan string)
	close(lines)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background(), lines) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
}

func TestController_EndBedwarsGameClearsShortTermCache(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{}}
	cache := &spyCache{Cache: playercache.New()}
	c := controller.New(state.New(), resolver, inlinePool{}, redraw.New(), nickdb.New(), cache, discardSink{}, presence.Hooks{}, nil)

	ctx := context.Background()
	c.ProcessEvent(ctx, events.NewLobbyJoin("Alice", 1, 16))
	c.ProcessEvent(ctx, events.NewEndBedwarsGame())

	require.Len(t, cache.clears, 1)
	assert.True(t, cache.clears[0], "EndBedwarsGame must signal a short-term-only clear")
}

func TestController_AutoDenickPairsUnknownNickWithMissingTeammate(t *testing.T) {
	teammateID := uuid.New()
	resolver := &stubResolver{players: map[string]player.Player{}}
	cache := &spyCache{Cache: playercache.New()}
	aggregator := redraw.New()
	nicks := nickdb.New()
	c := controller.New(state.New(), resolver, inlinePool{}, aggregator, nicks, cache, discardSink{}, presence.Hooks{}, nil)

	ctx := context.Background()
	c.ProcessEvent(ctx, events.NewInitializeAs("Me"))
	c.ProcessEvent(ctx, events.NewPartyAttach("Teammate1"))

	// Teammate1 is already known to the aggregator (e.g. resolved earlier
	// this session) but never shows up in this lobby under their own name.
	teammateStats := player.NewStats(0, 1, 0, 0, 0, 1, 0, 0, 0, player.Winstreaks{})
	aggregator.Update(player.NewKnown("Teammate1", teammateID, "", teammateStats))

	// Fill an 8-player lobby: "sneakyNick" is the one unresolved entry,
	// the other seven are cleanly resolved, real players.
	names := []string{"sneakyNick", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	for i, name := range names {
		c.ProcessEvent(ctx, events.NewLobbyJoin(name, i+1, 16))
		if name == "sneakyNick" {
			cache.SetResolved(name, player.NewNicked(name), cache.Genus())
			continue
		}
		cache.SetResolved(name, player.NewKnown(name, uuid.New(), "", teammateStats), cache.Genus())
	}

	c.ProcessEvent(ctx, events.NewBedwarsGameStartingSoon(5))

	id, ok := nicks.Get("sneakyNick")
	require.True(t, ok, "auto-denick should have recorded sneakyNick -> Teammate1")
	assert.Equal(t, teammateID, id)
}

func TestController_AutoDenickSkipsWhenOutOfSync(t *testing.T) {
	resolver := &stubResolver{players: map[string]player.Player{}}
	cache := &spyCache{Cache: playercache.New()}
	aggregator := redraw.New()
	nicks := nickdb.New()
	c := controller.New(state.New(), resolver, inlinePool{}, aggregator, nicks, cache, discardSink{}, presence.Hooks{}, nil)

	ctx := context.Background()
	c.ProcessEvent(ctx, events.NewInitializeAs("Me"))
	c.ProcessEvent(ctx, events.NewPartyAttach("Teammate1"))
	aggregator.Update(player.NewKnown("Teammate1", uuid.New(), "", player.Stats{}))

	// A count that disagrees with the roster leaves us out of sync, which
	// must block the guess even though the lobby would otherwise qualify.
	c.ProcessEvent(ctx, events.NewLobbyJoin("sneakyNick", 5, 16))
	cache.SetResolved("sneakyNick", player.NewNicked("sneakyNick"), cache.Genus())

	c.ProcessEvent(ctx, events.NewBedwarsGameStartingSoon(5))

	_, ok := nicks.Get("sneakyNick")
	assert.False(t, ok)
}

var _ output.Sink = discardSink{}
