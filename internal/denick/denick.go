// Package denick implements the auto-denick heuristic: pairing the one
// lobby entry whose real identity we don't know with the one party teammate
// who isn't showing up in the lobby under their own name.
package denick

// validLobbySizes are the Bed Wars lobby sizes the heuristic trusts. An
// unrecognized size means we can't be sure every teammate has joined yet,
// so the guess is skipped rather than risked.
var validLobbySizes = map[int]bool{8: true, 12: true, 16: true}

// GuardSatisfied reports whether the preconditions for attempting an
// auto-denick guess hold: queued and back in sync with the server, in a
// recognized full Bed Wars lobby, and nobody has died yet (so "alive"
// hasn't started diverging from "in the lobby" for reasons unrelated to
// nicks).
func GuardSatisfied(inQueue, outOfSync bool, lobbyPlayers, alivePlayers map[string]struct{}) bool {
	if !inQueue || outOfSync {
		return false
	}
	if !validLobbySizes[len(lobbyPlayers)] {
		return false
	}
	return setEqual(lobbyPlayers, alivePlayers)
}

// Status classifies one lobby entry against the long-term player cache for
// the purposes of the heuristic.
type Status int

const (
	// StatusKnownNoNick is a resolved account playing under its own name:
	// irrelevant to the guess either way.
	StatusKnownNoNick Status = iota
	// StatusManualOverride is a resolved account wearing a nick that the
	// manual nick database already maps back to this same account: trusted,
	// so the account's real username is no longer missing.
	StatusManualOverride
	// StatusUnknownNick is an entry whose identity isn't pinned down: a
	// confirmed nick with no known owner, a fetch that errored out, or a
	// resolved account wearing a nick the manual database hasn't confirmed
	// (i.e. denicked only by the remote API). Any of these could be the one
	// missing teammate.
	StatusUnknownNick
)

// Candidate is one lobby entry's classification, built by the caller from
// the long-term player cache before calling Guess.
type Candidate struct {
	// LobbyName is the string that appeared in the lobby roster (a real
	// username, or the nick masking one). Used as the guess's nick when
	// Status is StatusUnknownNick.
	LobbyName string
	Status    Status
	// RealUsername is the account username a StatusManualOverride
	// candidate resolved to, cleared from the missing-teammate set.
	RealUsername string
}

// Guess decides whether exactly one unknown-nick candidate pairs with
// exactly one missing teammate, and if so returns which teammate is behind
// which nick. partyMembers excludes the caller themselves; candidates must
// cover every entry in lobbyPlayers, with no Pending or absent cache entries
// among them (the caller aborts before calling Guess in that case).
func Guess(partyMembers []string, lobbyPlayers map[string]struct{}, candidates []Candidate) (teammate, nick string, ok bool) {
	missing := missingTeammates(partyMembers, lobbyPlayers)
	if len(missing) == 0 {
		return "", "", false
	}

	var unknownNick string
	unknownCount := 0
	for _, c := range candidates {
		switch c.Status {
		case StatusManualOverride:
			delete(missing, c.RealUsername)
		case StatusUnknownNick:
			unknownNick = c.LobbyName
			unknownCount++
		}
	}

	if unknownCount != 1 || len(missing) != 1 {
		return "", "", false
	}
	for m := range missing {
		teammate = m
	}
	return teammate, unknownNick, true
}

func missingTeammates(partyMembers []string, lobbyPlayers map[string]struct{}) map[string]struct{} {
	missing := make(map[string]struct{}, len(partyMembers))
	for _, member := range partyMembers {
		if _, present := lobbyPlayers[member]; !present {
			missing[member] = struct{}{}
		}
	}
	return missing
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
