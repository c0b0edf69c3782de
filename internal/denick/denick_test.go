package denick_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prism-overlay/bwoverlay/internal/denick"
)

func sized(n int) map[string]struct{} {
	s := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		s[string(rune('a'+i))] = struct{}{}
	}
	return s
}

func TestGuardSatisfied_RequiresQueuedAndInSync(t *testing.T) {
	lobby := sized(8)
	assert.False(t, denick.GuardSatisfied(false, false, lobby, lobby))
	assert.False(t, denick.GuardSatisfied(true, true, lobby, lobby))
	assert.True(t, denick.GuardSatisfied(true, false, lobby, lobby))
}

func TestGuardSatisfied_RequiresRecognizedLobbySize(t *testing.T) {
	lobby := sized(7)
	assert.False(t, denick.GuardSatisfied(true, false, lobby, lobby))

	for _, n := range []int{8, 12, 16} {
		lobby := sized(n)
		assert.True(t, denick.GuardSatisfied(true, false, lobby, lobby))
	}
}

func TestGuardSatisfied_RequiresLobbyMatchesAlive(t *testing.T) {
	lobby := sized(8)
	alive := sized(7)
	assert.False(t, denick.GuardSatisfied(true, false, lobby, alive))
}

func TestGuess_SingleMissingAndSingleNickPairs(t *testing.T) {
	party := []string{"Teammate1", "Teammate2"}
	lobby := map[string]struct{}{"Teammate2": {}, "sneakyNick": {}}
	candidates := []denick.Candidate{
		{LobbyName: "Teammate2", Status: denick.StatusKnownNoNick},
		{LobbyName: "sneakyNick", Status: denick.StatusUnknownNick},
	}

	teammate, nick, ok := denick.Guess(party, lobby, candidates)
	assert.True(t, ok)
	assert.Equal(t, "Teammate1", teammate)
	assert.Equal(t, "sneakyNick", nick)
}

func TestGuess_AmbiguousWhenMultipleMissing(t *testing.T) {
	party := []string{"Teammate1", "Teammate2"}
	lobby := map[string]struct{}{"sneakyNick": {}}
	candidates := []denick.Candidate{{LobbyName: "sneakyNick", Status: denick.StatusUnknownNick}}

	_, _, ok := denick.Guess(party, lobby, candidates)
	assert.False(t, ok)
}

func TestGuess_NoGuessWhenEverybodyPresent(t *testing.T) {
	party := []string{"Teammate1"}
	lobby := map[string]struct{}{"Teammate1": {}}

	_, _, ok := denick.Guess(party, lobby, nil)
	assert.False(t, ok)
}

func TestGuess_AmbiguousWhenMultipleNicks(t *testing.T) {
	party := []string{"Teammate1"}
	lobby := map[string]struct{}{"nickA": {}, "nickB": {}}
	candidates := []denick.Candidate{
		{LobbyName: "nickA", Status: denick.StatusUnknownNick},
		{LobbyName: "nickB", Status: denick.StatusUnknownNick},
	}

	_, _, ok := denick.Guess(party, lobby, candidates)
	assert.False(t, ok)
}

func TestGuess_ManualOverrideClearsMissingTeammateWithoutCountingAsUnknownNick(t *testing.T) {
	// Teammate1 is missing by IGN, but is actually in the lobby wearing a
	// nick the manual nick database already confirms belongs to them.
	party := []string{"Teammate1"}
	lobby := map[string]struct{}{"theirNick": {}}
	candidates := []denick.Candidate{
		{LobbyName: "theirNick", Status: denick.StatusManualOverride, RealUsername: "Teammate1"},
	}

	_, _, ok := denick.Guess(party, lobby, candidates)
	assert.False(t, ok, "a manually-confirmed denick should resolve the missing teammate, not be guessed at")
}

func TestGuess_ManualOverrideLeavesOtherMissingTeammatePairableWithRemainingNick(t *testing.T) {
	party := []string{"Teammate1", "Teammate2"}
	lobby := map[string]struct{}{"theirNick": {}, "sneakyNick": {}}
	candidates := []denick.Candidate{
		{LobbyName: "theirNick", Status: denick.StatusManualOverride, RealUsername: "Teammate1"},
		{LobbyName: "sneakyNick", Status: denick.StatusUnknownNick},
	}

	teammate, nick, ok := denick.Guess(party, lobby, candidates)
	assert.True(t, ok)
	assert.Equal(t, "Teammate2", teammate)
	assert.Equal(t, "sneakyNick", nick)
}
