// Package events defines the closed set of structured events the parser
// emits and the event processor consumes.
package events

// Kind tags which variant an Event holds. The zero value is never produced
// by the parser.
type Kind int

const (
	_ Kind = iota
	InitializeAs
	NewNickname
	LobbySwap
	LobbyJoin
	LobbyLeave
	LobbyList
	PartyAttach
	PartyDetach
	PartyJoin
	PartyLeave
	PartyListIncoming
	PartyMembershipList
	StartBedwarsGame
	EndBedwarsGame
	BedwarsGameStartingSoon
	BedwarsFinalKill
	BedwarsDisconnect
	BedwarsReconnect
	NewAPIKey
	WhisperCommandSetNick
	ChatMessage
)

// PartyRole names the three membership roles reported by a /pl response.
type PartyRole int

const (
	RoleLeader PartyRole = iota
	RoleModerators
	RoleMembers
)

// Event is a tagged variant over every case the parser can produce. Only the
// fields relevant to Kind are populated; the processor switches on Kind and
// reads only the matching fields.
type Event struct {
	Kind Kind

	Username string // InitializeAs, LobbyJoin, LobbyLeave, BedwarsDisconnect/Reconnect, ChatMessage, WhisperCommandSetNick (may be empty)
	Nick     string // NewNickname, WhisperCommandSetNick

	Usernames []string // LobbyList, PartyJoin, PartyLeave, PartyMembershipList

	PlayerCount int // LobbyJoin
	PlayerCap   int // LobbyJoin

	LeaderUsername string // PartyAttach

	Role PartyRole // PartyMembershipList

	DeadPlayer string // BedwarsFinalKill
	RawMessage string // BedwarsFinalKill

	Seconds int // BedwarsGameStartingSoon

	APIKey string // NewAPIKey

	Message string // ChatMessage
}

func NewInitializeAs(username string) Event {
	return Event{Kind: InitializeAs, Username: username}
}

func NewNicknameEvent(nick string) Event {
	return Event{Kind: NewNickname, Nick: nick}
}

func NewLobbySwap() Event {
	return Event{Kind: LobbySwap}
}

func NewLobbyJoin(username string, count, cap int) Event {
	return Event{Kind: LobbyJoin, Username: username, PlayerCount: count, PlayerCap: cap}
}

func NewLobbyLeave(username string) Event {
	return Event{Kind: LobbyLeave, Username: username}
}

func NewLobbyList(usernames []string) Event {
	return Event{Kind: LobbyList, Usernames: usernames}
}

func NewPartyAttach(leader string) Event {
	return Event{Kind: PartyAttach, LeaderUsername: leader}
}

func NewPartyDetach() Event {
	return Event{Kind: PartyDetach}
}

func NewPartyJoin(usernames []string) Event {
	return Event{Kind: PartyJoin, Usernames: usernames}
}

func NewPartyLeave(usernames []string) Event {
	return Event{Kind: PartyLeave, Usernames: usernames}
}

func NewPartyListIncoming() Event {
	return Event{Kind: PartyListIncoming}
}

func NewPartyMembershipList(usernames []string, role PartyRole) Event {
	return Event{Kind: PartyMembershipList, Usernames: usernames, Role: role}
}

func NewStartBedwarsGame() Event {
	return Event{Kind: StartBedwarsGame}
}

func NewEndBedwarsGame() Event {
	return Event{Kind: EndBedwarsGame}
}

func NewBedwarsGameStartingSoon(seconds int) Event {
	return Event{Kind: BedwarsGameStartingSoon, Seconds: seconds}
}

func NewBedwarsFinalKill(deadPlayer, rawMessage string) Event {
	return Event{Kind: BedwarsFinalKill, DeadPlayer: deadPlayer, RawMessage: rawMessage}
}

func NewBedwarsDisconnect(username string) Event {
	return Event{Kind: BedwarsDisconnect, Username: username}
}

func NewBedwarsReconnect(username string) Event {
	return Event{Kind: BedwarsReconnect, Username: username}
}

func NewAPIKeyEvent(key string) Event {
	return Event{Kind: NewAPIKey, APIKey: key}
}

func NewWhisperCommandSetNick(nick string, username string) Event {
	return Event{Kind: WhisperCommandSetNick, Nick: nick, Username: username}
}

func NewChatMessage(username, message string) Event {
	return Event{Kind: ChatMessage, Username: username, Message: message}
}
