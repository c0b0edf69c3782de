package redraw_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prism-overlay/bwoverlay/internal/player"
	"github.com/prism-overlay/bwoverlay/internal/redraw"
)

func TestAggregator_FirstUpdateTriggersRedraw(t *testing.T) {
	a := redraw.New()
	assert.True(t, a.Update(player.NewUnknown("Alice")))
}

func TestAggregator_DebouncesRapidUpdates(t *testing.T) {
	a := redraw.New()
	a.Update(player.NewUnknown("Alice"))
	a.Players() // sets lastDraw

	assert.False(t, a.Update(player.NewUnknown("Bob")))
}

func TestAggregator_RedrawsAgainAfterDebounceWindow(t *testing.T) {
	a := redraw.New()
	a.Update(player.NewUnknown("Alice"))
	a.Players()

	time.Sleep(redraw.DebounceInterval + 10*time.Millisecond)
	assert.True(t, a.Update(player.NewUnknown("Bob")))
}

func TestAggregator_PlayersReturnsSorted(t *testing.T) {
	a := redraw.New()
	a.Update(player.NewUnknown("Zed"))
	a.Update(player.NewUnknown("Amy"))

	players := a.Players()
	assert.Len(t, players, 2)
	assert.Equal(t, "Amy", players[0].Username)
}

func TestAggregator_RemoveDropsPlayer(t *testing.T) {
	a := redraw.New()
	a.Update(player.NewUnknown("Alice"))
	a.Remove("Alice")
	assert.Empty(t, a.Players())
}
