package irc

import (
	"strings"
	"sync"
)

// statusRanks orders channel status prefixes from highest to lowest
// privilege: founder, admin, op, halfop, voice.
const statusRanks = "~&@%+"

// modePrefixes maps channel mode letters to the status prefix they grant.
var modePrefixes = map[byte]byte{
	'q': '~',
	'a': '&',
	'o': '@',
	'h': '%',
	'v': '+',
}

// tracker maintains the status prefixes observed for each nick in each
// channel, fed by NAMES replies and MODE changes. Keys are folded to lower
// case since IRC nicks and channel names compare case-insensitively.
// Prefixes are kept in rank order so the highest status leads the string.
type tracker struct {
	mu       sync.Mutex
	channels map[string]map[string]string
}

func newTracker() *tracker {
	return &tracker{channels: make(map[string]map[string]string)}
}

// prefix returns the highest status prefix known for nick on channel, or ""
// when the nick has no status (or is unknown).
func (t *tracker) prefix(channel, nick string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.channels[fold(channel)]
	if members == nil {
		return ""
	}
	if s := members[fold(nick)]; s != "" {
		return s[:1]
	}
	return ""
}

// set replaces everything known about nick on channel with the given prefix
// string (as parsed from a NAMES reply).
func (t *tracker) set(channel, nick, prefixes string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.members(channel)[fold(nick)] = rankSort(prefixes)
}

// grant adds one status prefix to nick on channel.
func (t *tracker) grant(channel, nick string, prefix byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.members(channel)
	key := fold(nick)
	if strings.IndexByte(members[key], prefix) < 0 {
		members[key] = rankSort(members[key] + string(prefix))
	}
}

// revoke removes one status prefix from nick on channel.
func (t *tracker) revoke(channel, nick string, prefix byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.channels[fold(channel)]
	if members == nil {
		return
	}
	key := fold(nick)
	members[key] = strings.ReplaceAll(members[key], string(prefix), "")
}

// remove forgets nick on one channel (part, kick).
func (t *tracker) remove(channel, nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if members := t.channels[fold(channel)]; members != nil {
		delete(members, fold(nick))
	}
}

// removeAll forgets nick everywhere (quit).
func (t *tracker) removeAll(nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := fold(nick)
	for _, members := range t.channels {
		delete(members, key)
	}
}

// rename moves a nick's state to its new name on every channel.
func (t *tracker) rename(oldNick, newNick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	oldKey, newKey := fold(oldNick), fold(newNick)
	for _, members := range t.channels {
		if s, ok := members[oldKey]; ok {
			delete(members, oldKey)
			members[newKey] = s
		}
	}
}

// clearChannel drops all state for a channel (we left or were kicked).
func (t *tracker) clearChannel(channel string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.channels, fold(channel))
}

func (t *tracker) members(channel string) map[string]string {
	key := fold(channel)
	members := t.channels[key]
	if members == nil {
		members = make(map[string]string)
		t.channels[key] = members
	}
	return members
}

func fold(s string) string {
	return strings.ToLower(s)
}

// rankSort reorders a prefix string so higher statuses come first,
// dropping anything that is not a known status character.
func rankSort(prefixes string) string {
	var b strings.Builder
	for i := 0; i < len(statusRanks); i++ {
		if strings.IndexByte(prefixes, statusRanks[i]) >= 0 {
			b.WriteByte(statusRanks[i])
		}
	}
	return b.String()
}

// splitStatus separates the leading status prefixes from a NAMES reply
// entry like "@alice" or "~&bob".
func splitStatus(entry string) (prefixes, nick string) {
	i := 0
	for i < len(entry) && strings.IndexByte(statusRanks, entry[i]) >= 0 {
		i++
	}
	return entry[:i], entry[i:]
}
