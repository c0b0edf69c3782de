// Package parsing turns a raw Minecraft client log line into a structured
// event. Parse is a pure function: the same line always produces the same
// result, and it never mutates its input.
package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prism-overlay/bwoverlay/internal/events"
)

// clientInfoPrefixes share suffixes with each other, so the HIGHEST-index
// match wins when scanning for one (§4.2).
var clientInfoPrefixes = []string{
	"(Client thread) Info ",
	"[Client thread/INFO]: ",
	"INFO]: [LC] ",
	"[Render thread/INFO]: ",
	"[Client thread/INFO]: [LC]",
}

// chatPrefixes: the LOWEST-index match wins, so a chat message typed by the
// player can never be reclassified as a client-info line (§4.2).
var chatPrefixes = []string{
	"(Client thread) Info [CHAT] ",
	"[Client thread/INFO]: [CHAT] ",
	"[Render thread/INFO]: [CHAT] ",
	"[Astolfo HTTP Bridge]: [CHAT] ",
}

const (
	nettyClientFragment = "[Netty Client IO #"
	nettyChatFragment   = "/INFO]: [CHAT] "
)

var (
	rankRegex  = regexp.MustCompile(`\[[a-zA-Z+]+\] `)
	colorRegex = regexp.MustCompile(`[§\x{FFFD}][0-9a-fklmnor]`)
	fillRegex  = regexp.MustCompile(`^\(\d+/\d+\)!$`)
)

const punctuationAndWhitespace = ".!:, \t"

// lowestIndexMatch returns the string in candidates that ends at the lowest
// index in source, or "" if none occur in source.
func lowestIndexMatch(source string, candidates []string) string {
	best := ""
	bestEnd := -1
	for _, c := range candidates {
		idx := strings.Index(source, c)
		if idx == -1 {
			continue
		}
		end := idx + len(c)
		if bestEnd == -1 || end < bestEnd {
			bestEnd = end
			best = c
		}
	}
	return best
}

// highestIndexMatch returns the string in candidates that ends at the
// highest index in source, or "" if none occur in source.
func highestIndexMatch(source string, candidates []string) string {
	best := ""
	bestEnd := -1
	for _, c := range candidates {
		idx := strings.Index(source, c)
		if idx == -1 {
			continue
		}
		end := idx + len(c)
		if end > bestEnd {
			bestEnd = end
			best = c
		}
	}
	return best
}

// stripUntil removes everything up to and including the first occurrence of
// until, and trims trailing whitespace.
func stripUntil(line, until string) string {
	idx := strings.Index(line, until)
	if idx == -1 {
		return line
	}
	return strings.TrimRight(line[idx+len(until):], " \t\r\n")
}

func removeColors(s string) string {
	return colorRegex.ReplaceAllString(s, "")
}

func removeRanks(s string) string {
	return rankRegex.ReplaceAllString(s, "")
}

// ValidUsername reports whether username could be a Minecraft account name:
// length in [1,25], characters limited to A-Za-z0-9_.
func ValidUsername(username string) bool {
	if len(username) < 1 || len(username) > 25 {
		return false
	}
	for _, r := range username {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

func wordsMatch(words []string, target string) bool {
	joined := strings.Trim(strings.Join(words, " "), punctuationAndWhitespace)
	return joined == strings.Trim(target, punctuationAndWhitespace)
}

func removeDeduplicationSuffix(message string) string {
	if !strings.HasSuffix(message, "]") {
		return message
	}
	words := strings.Split(message, " ")
	last := words[len(words)-1]
	if len(last) > 2 && last[:2] == "[x" {
		if _, err := strconv.Atoi(last[2 : len(last)-1]); err == nil {
			return strings.Join(words[:len(words)-1], " ")
		}
	}
	return message
}

// Parse maps a single log line to at most one Event. ok is false when the
// line carries no recognized event.
func Parse(line string) (ev events.Event, ok bool) {
	if chatPrefix := lowestIndexMatch(line, chatPrefixes); chatPrefix != "" {
		return parseChatMessage(stripUntil(line, chatPrefix))
	}

	if chatIdx := strings.Index(line, nettyChatFragment); chatIdx != -1 {
		if clientIdx := strings.Index(line, nettyClientFragment); clientIdx != -1 &&
			clientIdx < chatIdx &&
			chatIdx-clientIdx-len(nettyClientFragment) <= 3 {
			prefix := line[:chatIdx+len(nettyChatFragment)]
			return parseChatMessage(stripUntil(line, prefix))
		}
	}

	if infoPrefix := highestIndexMatch(line, clientInfoPrefixes); infoPrefix != "" {
		return parseClientInfo(stripUntil(line, infoPrefix))
	}

	return events.Event{}, false
}

func parseClientInfo(info string) (events.Event, bool) {
	const settingUserPrefix = "Setting user: "
	if strings.HasPrefix(info, settingUserPrefix) {
		username := stripUntil(info, settingUserPrefix)
		return events.NewInitializeAs(username), true
	}
	return events.Event{}, false
}

func parseChatMessage(raw string) (events.Event, bool) {
	message := removeColors(removeDeduplicationSuffix(raw))

	if usernames, ok := parseWho(message); ok {
		return events.NewLobbyList(usernames), true
	}
	if ev, ok := parseNewNickname(message); ok {
		return ev, true
	}
	if ev, ok := parseLobbySwap(message); ok {
		return ev, true
	}
	if ev, ok := parseGameStartingSoon(message); ok {
		return ev, true
	}
	if strings.HasPrefix(strings.TrimSpace(message), "Bed Wars") {
		return events.NewStartBedwarsGame(), true
	}
	if ev, ok := parseFinalKill(message); ok {
		return ev, true
	}
	if ev, ok := parseDisconnectReconnect(message); ok {
		return ev, true
	}
	if strings.HasPrefix(strings.TrimSpace(message), "1st Killer") {
		return events.NewEndBedwarsGame(), true
	}
	if ev, ok := parseLobbyJoin(message); ok {
		return ev, true
	}
	if ev, ok := parseLobbyLeave(message); ok {
		return ev, true
	}
	if ev, ok := parsePartyChanges(message); ok {
		return ev, true
	}
	if ev, ok := parsePartyList(message); ok {
		return ev, true
	}
	if ev, ok := parseWhisperCommand(message); ok {
		return ev, true
	}
	if ev, ok := parseGenericChat(message); ok {
		return ev, true
	}
	return events.Event{}, false
}

func parseWho(message string) ([]string, bool) {
	const whoPrefix = "ONLINE: "
	if !strings.HasPrefix(message, whoPrefix) {
		return nil, false
	}
	players := strings.Split(strings.TrimPrefix(message, whoPrefix), ", ")
	return players, true
}

func parseNewNickname(message string) (events.Event, bool) {
	const prefix = "You are now nicked as "
	if !strings.HasPrefix(message, prefix) {
		return events.Event{}, false
	}
	words := strings.Split(message, " ")
	if !wordsMatch(words[:len(words)-1], "You are now nicked as") {
		return events.Event{}, false
	}
	nick := strings.Trim(words[len(words)-1], punctuationAndWhitespace)
	return events.NewNicknameEvent(nick), true
}

func parseLobbySwap(message string) (events.Event, bool) {
	if strings.HasPrefix(message, "Sending you to ") {
		return events.NewLobbySwap(), true
	}
	if strings.Trim(message, punctuationAndWhitespace) ==
		"You were sent to a lobby because someone in your party left" {
		return events.NewLobbySwap(), true
	}
	return events.Event{}, false
}

func parseGameStartingSoon(message string) (events.Event, bool) {
	const prefix = "The game starts in "
	if !strings.HasPrefix(message, prefix) {
		return events.Event{}, false
	}
	words := strings.Split(message, " ")
	if len(words) != 6 {
		return events.Event{}, false
	}
	unit := strings.Trim(words[len(words)-1], punctuationAndWhitespace)
	if unit != "second" && unit != "seconds" {
		return events.Event{}, false
	}
	seconds, err := strconv.Atoi(words[len(words)-2])
	if err != nil {
		return events.Event{}, false
	}
	return events.NewBedwarsGameStartingSoon(seconds), true
}

func parseFinalKill(message string) (events.Event, bool) {
	trimmed := strings.Trim(message, punctuationAndWhitespace)
	if !strings.HasSuffix(trimmed, "FINAL KILL") || strings.Count(message, " ") <= 2 {
		return events.Event{}, false
	}
	words := strings.Split(message, " ")
	if len(words) >= 4 && words[1] == ">" {
		// [CHAT] Party > Player 1: inc please void FINAL KILL!
		return events.Event{}, false
	}
	dead := words[0]
	if !ValidUsername(dead) {
		return events.Event{}, false
	}
	return events.NewBedwarsFinalKill(dead, message), true
}

func parseDisconnectReconnect(message string) (events.Event, bool) {
	trimmed := strings.Trim(message, punctuationAndWhitespace)
	if strings.HasSuffix(trimmed, "disconnected") && strings.Count(message, " ") == 1 {
		username := strings.Split(message, " ")[0]
		if !ValidUsername(username) {
			return events.Event{}, false
		}
		return events.NewBedwarsDisconnect(username), true
	}
	if strings.HasSuffix(trimmed, "reconnected") && strings.Count(message, " ") == 1 {
		username := strings.Split(message, " ")[0]
		if !ValidUsername(username) {
			return events.Event{}, false
		}
		return events.NewBedwarsReconnect(username), true
	}
	return events.Event{}, false
}

func parseLobbyJoin(message string) (events.Event, bool) {
	if !strings.Contains(message, " has joined (") {
		return events.Event{}, false
	}
	words := strings.Split(message, " ")
	if len(words) < 4 {
		return events.Event{}, false
	}
	if !wordsMatch(words[1:3], "has joined") {
		return events.Event{}, false
	}
	username := words[0]
	fill := words[3]
	if !fillRegex.MatchString(fill) {
		return events.Event{}, false
	}
	parts := strings.SplitN(fill, "/", 2)
	countStr := strings.Trim(parts[0], "("+punctuationAndWhitespace)
	capStr := strings.Trim(parts[1], ")"+punctuationAndWhitespace)
	count, err1 := strconv.Atoi(countStr)
	cap, err2 := strconv.Atoi(capStr)
	if err1 != nil || err2 != nil {
		return events.Event{}, false
	}
	return events.NewLobbyJoin(username, count, cap), true
}

func parseLobbyLeave(message string) (events.Event, bool) {
	if !strings.Contains(message, " has quit") {
		return events.Event{}, false
	}
	words := strings.Split(message, " ")
	if len(words) < 3 {
		return events.Event{}, false
	}
	if !wordsMatch(words[1:3], "has quit!") {
		return events.Event{}, false
	}
	return events.NewLobbyLeave(words[0]), true
}

func parsePartyChanges(message string) (events.Event, bool) {
	if strings.HasPrefix(message, "You left the party") {
		return events.NewPartyDetach(), true
	}
	if strings.HasPrefix(message, "You are not currently in a party") {
		return events.NewPartyDetach(), true
	}
	if strings.Trim(message, punctuationAndWhitespace) ==
		"The party was disbanded because all invites expired and the party was empty" {
		return events.NewPartyDetach(), true
	}
	if strings.Contains(message, " has disbanded the party") {
		clean := removeRanks(message)
		words := strings.Split(clean, " ")
		if len(words) < 5 || !wordsMatch(words[1:], "has disbanded the party!") {
			return events.Event{}, false
		}
		return events.NewPartyDetach(), true
	}
	if strings.HasPrefix(message, "You have been kicked from the party by ") {
		return events.NewPartyDetach(), true
	}

	const youJoinPrefix = "You have joined "
	if strings.HasPrefix(message, youJoinPrefix) {
		suffix := strings.TrimPrefix(message, youJoinPrefix)
		idx := strings.Index(suffix, "'")
		if idx == -1 {
			return events.Event{}, false
		}
		username := removeRanks(suffix[:idx])
		return events.NewPartyAttach(username), true
	}

	const partyingWithPrefix = "You'll be partying with: "
	if strings.HasPrefix(message, partyingWithPrefix) {
		suffix := strings.TrimPrefix(message, partyingWithPrefix)
		names := removeRanks(suffix)
		return events.NewPartyJoin(strings.Split(names, ", ")), true
	}

	if strings.Contains(message, " joined the party") {
		suffix := removeRanks(message)
		words := strings.Split(suffix, " ")
		if len(words) < 4 || !wordsMatch(words[1:4], "joined the party.") {
			return events.Event{}, false
		}
		return events.NewPartyJoin([]string{words[0]}), true
	}

	if strings.Contains(message, " has left the party") {
		suffix := removeRanks(message)
		words := strings.Split(suffix, " ")
		if len(words) < 5 || !wordsMatch(words[1:5], "has left the party.") {
			return events.Event{}, false
		}
		return events.NewPartyLeave([]string{words[0]}), true
	}

	if strings.Contains(message, " has been removed from the party") {
		suffix := removeRanks(message)
		words := strings.Split(suffix, " ")
		if len(words) < 7 || !wordsMatch(words[1:], "has been removed from the party.") {
			return events.Event{}, false
		}
		return events.NewPartyLeave([]string{words[0]}), true
	}

	if strings.Contains(message, " was removed from the party because they disconnected") ||
		strings.Contains(message, " was removed from your party because they disconnected") {
		cleaned := removeRanks(message)
		words := strings.Split(cleaned, " ")
		if len(words) < 9 {
			return events.Event{}, false
		}
		if !wordsMatch(words[1:], "was removed from the party because they disconnected") &&
			!wordsMatch(words[1:], "was removed from your party because they disconnected.") {
			return events.Event{}, false
		}
		return events.NewPartyLeave([]string{words[0]}), true
	}

	const kickOfflinePrefix = "Kicked "
	if strings.HasPrefix(message, kickOfflinePrefix) &&
		strings.Contains(message, " because they were offline") {
		suffix := strings.TrimPrefix(message, kickOfflinePrefix)
		cleaned := removeRanks(suffix)
		words := strings.Split(cleaned, " ")
		if len(words) < 5 || !wordsMatch(words[len(words)-4:], "because they were offline.") {
			return events.Event{}, false
		}
		usernames := strings.Split(strings.Join(words[:len(words)-4], " "), ", ")
		return events.NewPartyLeave(usernames), true
	}

	const transferPrefix = "The party was transferred to "
	if strings.HasPrefix(message, transferPrefix) {
		suffix := strings.TrimPrefix(message, transferPrefix)
		withoutRanks := removeRanks(suffix)
		words := strings.Split(withoutRanks, " ")
		if len(words) < 4 {
			return events.Event{}, false
		}
		// words should read "<someone> because <username> left"
		alternating := make([]string, 0, 2)
		for i := 1; i < len(words); i += 2 {
			alternating = append(alternating, words[i])
		}
		if !wordsMatch(alternating, "because left") {
			return events.Event{}, false
		}
		return events.NewPartyLeave([]string{words[2]}), true
	}

	return events.Event{}, false
}

func parsePartyList(message string) (events.Event, bool) {
	if strings.HasPrefix(message, "Party Members (") {
		return events.NewPartyListIncoming(), true
	}

	roleNames := []struct {
		prefix string
		role   events.PartyRole
	}{
		{"Party Leader: ", events.RoleLeader},
		{"Party Moderators: ", events.RoleModerators},
		{"Party Members: ", events.RoleMembers},
	}

	for _, r := range roleNames {
		if strings.HasPrefix(message, r.prefix) {
			suffix := strings.TrimPrefix(message, r.prefix)
			dirty := removeRanks(suffix)
			clean := strings.TrimSpace(dirty)
			clean = strings.ReplaceAll(clean, " ●", "")
			clean = strings.ReplaceAll(clean, " ?", "")
			clean = strings.ReplaceAll(clean, " �", "")
			players := strings.Split(clean, " ")
			return events.NewPartyMembershipList(players, r.role), true
		}
	}

	return events.Event{}, false
}

func parseWhisperCommand(message string) (events.Event, bool) {
	const prefix = "Can't find a player by the name of '!"
	if !strings.HasPrefix(message, prefix) {
		return events.Event{}, false
	}
	command := strings.TrimPrefix(message, prefix)
	if command == "" || command[len(command)-1] != '\'' {
		return events.Event{}, false
	}
	command = command[:len(command)-1]

	if !strings.Contains(command, "=") {
		return events.Event{}, false
	}
	parts := strings.Split(command, "=")
	if len(parts) != 2 {
		return events.Event{}, false
	}
	nick, username := parts[0], parts[1]
	return events.NewWhisperCommandSetNick(nick, username), true
}

func parseGenericChat(message string) (events.Event, bool) {
	colonIdx := strings.Index(message, ":")
	if colonIdx == -1 {
		return events.Event{}, false
	}
	username := removeRanks(message[:colonIdx])
	if !ValidUsername(username) {
		return events.Event{}, false
	}
	if len(message) <= colonIdx+1 || message[colonIdx+1] != ' ' {
		return events.Event{}, false
	}
	playerMessage := message[colonIdx+2:]
	return events.NewChatMessage(username, playerMessage), true
}
