package database

import (
	"database/sql"
)

// EventType enumerates the chat event kinds recorded in the log table.
type EventType string

const (
	EventMessage EventType = "message"
	EventAction  EventType = "action"
	EventNotice  EventType = "notice"
	EventJoin    EventType = "join"
	EventPart    EventType = "part"
	EventQuit    EventType = "quit"
	EventKick    EventType = "kick"
	EventNick    EventType = "nick"
	EventTopic   EventType = "topic"
)

// Valid reports whether t is one of the recorded event kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventMessage, EventAction, EventNotice, EventJoin, EventPart,
		EventQuit, EventKick, EventNick, EventTopic:
		return true
	}
	return false
}

// Nick is a normalized nickname with the time it was last observed.
// LastSeen is unsigned seconds since the Unix epoch; 64 bits so it never
// hits the 2038 rollover.
type Nick struct {
	ID       int64  `db:"id"`
	Nick     string `db:"nick"`
	LastSeen uint64 `db:"last_seen"`
}

// Channel is a normalized channel name.
type Channel struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Prefix is a normalized channel status marker ("@", "+", ...).
type Prefix struct {
	ID     int64  `db:"id"`
	Prefix string `db:"prefix"`
}

// Event describes one chat event to be appended to the log.
//
// Type is required. Identifier fields (Channel, Nick, Prefix, Secondary,
// SecondaryPrefix) and Message left empty are stored as NULL without a
// resolver call. Secondary names the second nick an event involves: the
// kicker on a kick, the old nick on a rename. Timestamp is unsigned seconds
// since the Unix epoch; zero means the time of the LogEvent call. Network
// tags the originating connection and is used for filtering, not persisted.
type Event struct {
	Type            EventType
	Network         string
	Channel         string
	Nick            string
	Prefix          string
	Secondary       string
	SecondaryPrefix string
	Message         string
	Timestamp       uint64
}

// logRow is the denormalized row written to the log table.
type logRow struct {
	Timestamp         uint64         `db:"timestamp"`
	ChannelID         sql.NullInt64  `db:"channel_id"`
	Type              string         `db:"type"`
	NickID            sql.NullInt64  `db:"nick_id"`
	NickPrefixID      sql.NullInt64  `db:"nick_prefix_id"`
	SecondaryNickID   sql.NullInt64  `db:"secondary_nick_id"`
	SecondaryPrefixID sql.NullInt64  `db:"secondary_prefix_id"`
	Message           sql.NullString `db:"message"`
}
