package irc

import (
	"strings"

	"github.com/ergochat/irc-go/ircfmt"
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/ovelind/irclogd/internal/database"
)

// ctcpAction unwraps a CTCP ACTION payload (the "/me" emote encoding).
func ctcpAction(text string) (string, bool) {
	if !strings.HasPrefix(text, "\x01ACTION") {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "\x01ACTION"), "\x01")
	return strings.TrimPrefix(body, " "), true
}

func (r *Recorder) onPrivmsg(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	target, text := e.Params[0], e.Params[1]
	nick := sourceNick(e.Source)

	typ := database.EventMessage
	if action, ok := ctcpAction(text); ok {
		typ, text = database.EventAction, action
	} else if strings.HasPrefix(text, "\x01") {
		// Other CTCP requests (VERSION, PING, ...) are not chat.
		return
	}

	ev := &database.Event{
		Type:    typ,
		Nick:    nick,
		Message: ircfmt.Escape(text),
	}
	if isChannel(target) {
		ev.Channel = target
		ev.Prefix = r.tracker.prefix(target, nick)
	}
	r.emit(ev)
}

func (r *Recorder) onNotice(e ircmsg.Message) {
	// Server notices carry no user source and are noise, not chat.
	if len(e.Params) < 2 || !strings.Contains(e.Source, "!") {
		return
	}
	target, text := e.Params[0], e.Params[1]
	if strings.HasPrefix(text, "\x01") {
		return // CTCP reply
	}
	nick := sourceNick(e.Source)

	ev := &database.Event{
		Type:    database.EventNotice,
		Nick:    nick,
		Message: ircfmt.Escape(text),
	}
	if isChannel(target) {
		ev.Channel = target
		ev.Prefix = r.tracker.prefix(target, nick)
	}
	r.emit(ev)
}

func (r *Recorder) onJoin(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	channel := e.Params[0]
	nick := sourceNick(e.Source)
	r.tracker.set(channel, nick, "")
	r.emit(&database.Event{
		Type:    database.EventJoin,
		Channel: channel,
		Nick:    nick,
	})
}

func (r *Recorder) onPart(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	channel := e.Params[0]
	nick := sourceNick(e.Source)

	ev := &database.Event{
		Type:    database.EventPart,
		Channel: channel,
		Nick:    nick,
		Prefix:  r.tracker.prefix(channel, nick),
	}
	if len(e.Params) > 1 {
		ev.Message = ircfmt.Escape(e.Params[1])
	}

	if strings.EqualFold(nick, r.cfg.Nick) {
		r.tracker.clearChannel(channel)
	} else {
		r.tracker.remove(channel, nick)
	}
	r.emit(ev)
}

func (r *Recorder) onQuit(e ircmsg.Message) {
	nick := sourceNick(e.Source)

	ev := &database.Event{
		Type: database.EventQuit,
		Nick: nick,
	}
	if len(e.Params) > 0 {
		ev.Message = ircfmt.Escape(e.Params[0])
	}

	r.tracker.removeAll(nick)
	r.emit(ev)
}

// onKick logs the kicked nick as the event's subject and the kicker as the
// secondary nick.
func (r *Recorder) onKick(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	channel, victim := e.Params[0], e.Params[1]
	kicker := sourceNick(e.Source)

	ev := &database.Event{
		Type:            database.EventKick,
		Channel:         channel,
		Nick:            victim,
		Prefix:          r.tracker.prefix(channel, victim),
		Secondary:       kicker,
		SecondaryPrefix: r.tracker.prefix(channel, kicker),
	}
	if len(e.Params) > 2 {
		ev.Message = ircfmt.Escape(e.Params[2])
	}

	if strings.EqualFold(victim, r.cfg.Nick) {
		r.tracker.clearChannel(channel)
	} else {
		r.tracker.remove(channel, victim)
	}
	r.emit(ev)
}

// onNick logs the new nick as the event's subject and the old nick as the
// secondary nick.
func (r *Recorder) onNick(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	oldNick := sourceNick(e.Source)
	newNick := e.Params[0]

	r.tracker.rename(oldNick, newNick)
	r.emit(&database.Event{
		Type:      database.EventNick,
		Nick:      newNick,
		Secondary: oldNick,
	})
}

func (r *Recorder) onTopic(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	channel, topic := e.Params[0], e.Params[1]
	nick := sourceNick(e.Source)

	r.emit(&database.Event{
		Type:    database.EventTopic,
		Channel: channel,
		Nick:    nick,
		Prefix:  r.tracker.prefix(channel, nick),
		Message: ircfmt.Escape(topic),
	})
}

// onNames seeds the prefix tracker from a RPL_NAMREPLY:
// <me> <symbol> <channel> :[prefix]nick [prefix]nick ...
func (r *Recorder) onNames(e ircmsg.Message) {
	if len(e.Params) < 4 {
		return
	}
	channel := e.Params[2]
	for _, entry := range strings.Fields(e.Params[3]) {
		prefixes, nick := splitStatus(entry)
		if nick == "" {
			continue
		}
		r.tracker.set(channel, nick, prefixes)
	}
}

// argModes are the non-status channel modes that consume a parameter and
// must be skipped over when walking a MODE change. List mode queries and
// unknown modes are assumed argless; a miss only degrades prefix tracking.
const argModes = "bkeIf"

// onMode applies status grants and revocations to the prefix tracker.
func (r *Recorder) onMode(e ircmsg.Message) {
	if len(e.Params) < 2 || !isChannel(e.Params[0]) {
		return
	}
	channel, modes, args := e.Params[0], e.Params[1], e.Params[2:]

	adding := true
	for i := 0; i < len(modes); i++ {
		switch modes[i] {
		case '+':
			adding = true
		case '-':
			adding = false
		default:
			if prefix, ok := modePrefixes[modes[i]]; ok {
				if len(args) == 0 {
					return
				}
				nick := args[0]
				args = args[1:]
				if adding {
					r.tracker.grant(channel, nick, prefix)
				} else {
					r.tracker.revoke(channel, nick, prefix)
				}
			} else if strings.IndexByte(argModes, modes[i]) >= 0 ||
				(modes[i] == 'l' && adding) {
				if len(args) > 0 {
					args = args[1:]
				}
			}
		}
	}
}
