// Package state holds the overlay's model of "what lobby/party/game am I
// currently in", built up by folding parsed events onto it one at a time.
package state

import (
	"sync"

	"github.com/prism-overlay/bwoverlay/internal/events"
)

// PartyRole mirrors events.PartyRole for membership bookkeeping.
type PartyRole = events.PartyRole

// minBedwarsLobbyCap is the smallest player cap a lobby-join report can
// carry and still plausibly be a Bed Wars lobby; anything smaller is some
// other gamemode and is ignored rather than folded into the state. A /who
// report carries no cap and is not checked against it.
const minBedwarsLobbyCap = 8

// Snapshot is an immutable copy of the overlay's current state, safe to read
// without holding any lock. Callers get one from State.Snapshot().
type Snapshot struct {
	OwnUsername string

	InParty     bool
	PartyLeader string
	PartyRoles  map[string]PartyRole // username -> role, includes the leader

	LobbyPlayers map[string]struct{}
	PlayerCount  int
	PlayerCap    int

	// InQueue reports whether a lobby-join/lobby-list report has been seen
	// since the last time the queue was left (lobby swap or game start).
	InQueue bool
	// OutOfSync reports that the lobby roster we've built up disagrees with
	// the player count the server last reported; only ever true while
	// InQueue is also true.
	OutOfSync bool

	InGame       bool
	AlivePlayers map[string]struct{}
}

// State is the overlay's mutable model. All mutation happens through
// ApplyEvent; readers take a Snapshot rather than touching fields directly.
type State struct {
	mu sync.Mutex

	ownUsername string

	inParty     bool
	partyLeader string
	partyRoles  map[string]PartyRole

	partyListIncoming bool
	incomingRoles     map[string]PartyRole

	lobbyPlayers map[string]struct{}
	playerCount  int
	playerCap    int

	inQueue   bool
	outOfSync bool

	inGame       bool
	alivePlayers map[string]struct{}
}

// New returns an empty overlay state, as if the client had just launched.
func New() *State {
	return &State{
		partyRoles:    make(map[string]PartyRole),
		incomingRoles: make(map[string]PartyRole),
		lobbyPlayers:  make(map[string]struct{}),
		alivePlayers:  make(map[string]struct{}),
	}
}

// Delta reports which usernames newly appeared in the lobby as a result of
// folding one event, so the caller can decide whether to
// enqueue stats fetches for them.
type Delta struct {
	NewLobbyPlayers []string
}

// ApplyEvent folds one parsed event onto the state and returns the players
// that became newly visible because of it; a LobbyList replaces the roster
// wholesale and reports every listed name. It never blocks and never
// performs I/O; all side effects (fetching stats, redrawing) are the
// caller's responsibility.
func (s *State) ApplyEvent(ev events.Event) Delta {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case events.InitializeAs:
		s.reset(ev.Username)
		return Delta{}

	case events.LobbySwap:
		s.clearLobby()
		s.leaveQueue()
		return Delta{}

	case events.LobbyJoin:
		return s.applyLobbyJoin(ev)

	case events.LobbyLeave:
		delete(s.lobbyPlayers, ev.Username)
		delete(s.alivePlayers, ev.Username)
		return Delta{}

	case events.LobbyList:
		// The /who response is authoritative but may only list alive
		// players mid-game; overwritten wholesale regardless, matching
		// the known imperfection this behavior is inherited from.
		s.outOfSync = false
		s.joinQueue()
		s.lobbyPlayers = make(map[string]struct{}, len(ev.Usernames))
		s.alivePlayers = make(map[string]struct{}, len(ev.Usernames))
		newOnes := make([]string, 0, len(ev.Usernames))
		for _, u := range ev.Usernames {
			if _, ok := s.lobbyPlayers[u]; !ok {
				newOnes = append(newOnes, u)
			}
			s.lobbyPlayers[u] = struct{}{}
			s.alivePlayers[u] = struct{}{}
		}
		return Delta{NewLobbyPlayers: newOnes}

	case events.PartyAttach:
		s.clearParty()
		s.inParty = true
		s.partyLeader = ev.LeaderUsername
		s.partyRoles[ev.LeaderUsername] = events.RoleLeader
		return Delta{}

	case events.PartyDetach:
		s.clearParty()
		s.inParty = false
		return Delta{}

	case events.PartyJoin:
		s.inParty = true
		for _, u := range ev.Usernames {
			if _, known := s.partyRoles[u]; !known {
				s.partyRoles[u] = events.RoleMembers
			}
		}
		return Delta{}

	case events.PartyLeave:
		for _, u := range ev.Usernames {
			if u == s.ownUsername {
				s.clearParty()
				s.inParty = false
				return Delta{}
			}
			delete(s.partyRoles, u)
		}
		return Delta{}

	case events.PartyListIncoming:
		s.partyListIncoming = true
		s.incomingRoles = make(map[string]PartyRole)
		return Delta{}

	case events.PartyMembershipList:
		if !s.partyListIncoming {
			s.partyListIncoming = true
			s.incomingRoles = make(map[string]PartyRole)
		}
		for _, u := range ev.Usernames {
			s.incomingRoles[u] = ev.Role
			if ev.Role == events.RoleLeader {
				s.partyLeader = u
			}
		}
		return Delta{}

	case events.StartBedwarsGame:
		// alivePlayers already mirrors lobbyPlayers (every join/list adds
		// to both); nobody's died yet, so there's nothing to rebuild here.
		s.leaveQueue()
		s.inGame = true
		return Delta{}

	case events.EndBedwarsGame:
		s.clearLobby()
		return Delta{}

	case events.BedwarsFinalKill:
		delete(s.alivePlayers, ev.DeadPlayer)
		return Delta{}

	case events.BedwarsDisconnect:
		delete(s.alivePlayers, ev.Username)
		return Delta{}

	case events.BedwarsReconnect:
		if _, stillInLobby := s.lobbyPlayers[ev.Username]; stillInLobby && s.inGame {
			s.alivePlayers[ev.Username] = struct{}{}
		}
		return Delta{}

	default:
		return Delta{}
	}
}

// applyLobbyJoin folds one LOBBY_JOIN report onto the lobby roster and
// reconciles our view against the player count Hypixel reported alongside
// it. A cap below minBedwarsLobbyCap means the gamemode isn't Bed Wars and
// the report is ignored outright.
func (s *State) applyLobbyJoin(ev events.Event) Delta {
	if ev.PlayerCap < minBedwarsLobbyCap {
		return Delta{}
	}

	s.joinQueue()
	s.playerCount, s.playerCap = ev.PlayerCount, ev.PlayerCap
	delta := s.addLobbyPlayers(ev.Username)

	if ev.PlayerCount == len(s.lobbyPlayers) {
		s.outOfSync = false
		return delta
	}

	// We're out of sync with the lobby. This happens when you first join a
	// lobby, since the previous lobby is never explicitly cleared.
	outOfSync := true
	if ev.PlayerCount < len(s.lobbyPlayers) {
		// We know of too many players; some must not actually be in the
		// lobby, so rebuild it from just this join.
		s.lobbyPlayers = make(map[string]struct{})
		s.alivePlayers = make(map[string]struct{})
		delta = s.addLobbyPlayers(ev.Username)
		outOfSync = ev.PlayerCount != len(s.lobbyPlayers)
	}
	s.outOfSync = outOfSync
	return delta
}

// FinishIncomingPartyList commits the accumulated Leader/Moderators/Members
// groups gathered across a run of PartyMembershipList events. The caller
// (the event processor) treats the sequence as complete once an event that
// is neither PartyListIncoming nor PartyMembershipList follows; it calls
// this to commit the result.
func (s *State) FinishIncomingPartyList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.partyListIncoming {
		return
	}
	s.inParty = len(s.incomingRoles) > 0
	s.partyRoles = s.incomingRoles
	if s.ownUsername != "" {
		s.partyRoles[s.ownUsername] = events.RoleMembers
	}
	s.incomingRoles = make(map[string]PartyRole)
	s.partyListIncoming = false
}

// PartyListIncoming reports whether a PartyListIncoming/PartyMembershipList
// sequence is currently being accumulated and awaiting FinishIncomingPartyList.
func (s *State) PartyListIncoming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partyListIncoming
}

func (s *State) addLobbyPlayers(username string) Delta {
	if username == "" {
		return Delta{}
	}
	if _, ok := s.lobbyPlayers[username]; ok {
		return Delta{}
	}
	s.lobbyPlayers[username] = struct{}{}
	s.alivePlayers[username] = struct{}{}
	return Delta{NewLobbyPlayers: []string{username}}
}

// clearParty empties the party roster and re-seeds it with ownUsername, the
// sole invariant a party is never allowed to violate: own_username, when
// set, is always a member of party_members. Callers decide inParty
// separately, since a lone self-entry doesn't mean "in a party".
func (s *State) clearParty() {
	s.partyLeader = ""
	s.partyRoles = make(map[string]PartyRole)
	if s.ownUsername != "" {
		s.partyRoles[s.ownUsername] = events.RoleMembers
	}
}

// clearLobby drops everything the state knows about the current lobby and
// game: the roster, the reported count/cap, and who's still alive.
func (s *State) clearLobby() {
	s.lobbyPlayers = make(map[string]struct{})
	s.playerCount, s.playerCap = 0, 0
	s.inGame = false
	s.alivePlayers = make(map[string]struct{})
}

// joinQueue and leaveQueue track whether we currently believe ourselves to
// be queued into a lobby. Leaving the queue always clears outOfSync too: the
// invariant is that out-of-sync can only be true while in_queue is true.
func (s *State) joinQueue()  { s.inQueue = true }
func (s *State) leaveQueue() { s.inQueue = false; s.outOfSync = false }

func (s *State) reset(ownUsername string) {
	s.ownUsername = ownUsername
	s.inParty = false
	s.partyListIncoming = false
	s.incomingRoles = make(map[string]PartyRole)
	s.clearParty()
	s.clearLobby()
	s.inQueue = false
	s.outOfSync = false
}

// Snapshot returns an immutable copy of the current state, safe to read
// without holding any lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		OwnUsername:  s.ownUsername,
		InParty:      s.inParty,
		PartyLeader:  s.partyLeader,
		PartyRoles:   make(map[string]PartyRole, len(s.partyRoles)),
		LobbyPlayers: make(map[string]struct{}, len(s.lobbyPlayers)),
		PlayerCount:  s.playerCount,
		PlayerCap:    s.playerCap,
		InQueue:      s.inQueue,
		OutOfSync:    s.outOfSync,
		InGame:       s.inGame,
		AlivePlayers: make(map[string]struct{}, len(s.alivePlayers)),
	}
	for k, v := range s.partyRoles {
		snap.PartyRoles[k] = v
	}
	for k := range s.lobbyPlayers {
		snap.LobbyPlayers[k] = struct{}{}
	}
	for k := range s.alivePlayers {
		snap.AlivePlayers[k] = struct{}{}
	}
	return snap
}
