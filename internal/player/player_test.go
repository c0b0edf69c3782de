package player_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/prism-overlay/bwoverlay/internal/player"
)

func TestLevelFromXP_FirstLevelAt500XP(t *testing.T) {
	assert.InDelta(t, 1.0, player.LevelFromXP(500), 0.01)
}

func TestLevelFromXP_Prestige(t *testing.T) {
	assert.InDelta(t, 100.0, player.LevelFromXP(487000), 0.01)
}

func TestNewStats_ZeroDeathsFallsBackToNumerator(t *testing.T) {
	s := player.NewStats(0, 0, 0, 0, 0, 7, 0, 0, 0, player.Winstreaks{})
	assert.Equal(t, 7.0, s.FKDR)
}

func TestSortPlayers_KnownBeforeUnknown(t *testing.T) {
	known := player.NewKnown("Alice", uuid.New(), "", player.NewStats(500000, 100, 10, 0, 0, 50, 5, 0, 0, player.Winstreaks{}))
	unknown := player.NewUnknown("Bob")
	nicked := player.NewNicked("sneakyNick")

	sorted := player.SortPlayers([]player.Player{unknown, nicked, known})
	assert.Equal(t, player.Known, sorted[0].Variant)
	assert.Equal(t, player.Nicked, sorted[1].Variant)
	assert.Equal(t, player.Unknown, sorted[2].Variant)
}

func TestSortPlayers_KnownRankedByIndexDescending(t *testing.T) {
	weak := player.NewKnown("Weak", uuid.New(), "", player.NewStats(500, 10, 10, 0, 0, 1, 10, 0, 0, player.Winstreaks{}))
	strong := player.NewKnown("Strong", uuid.New(), "", player.NewStats(5000000, 1000, 10, 0, 0, 5000, 10, 0, 0, player.Winstreaks{}))

	sorted := player.SortPlayers([]player.Player{weak, strong})
	assert.Equal(t, "Strong", sorted[0].Username)
	assert.Equal(t, "Weak", sorted[1].Username)
}
