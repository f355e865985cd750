package irc

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/internal/database"
)

func newTestRecorder(t *testing.T) (*Recorder, *[]*database.Event) {
	t.Helper()
	events := &[]*database.Event{}
	cfg := &config.IRCConfig{
		Network:       "libera",
		Server:        "irc.example.org:6667",
		Nick:          "logbot",
		User:          "logbot",
		Channels:      []string{"#test"},
		ReconnectFreq: time.Second,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRecorder(cfg, log, func(ev *database.Event) {
		*events = append(*events, ev)
	})
	return r, events
}

func msg(source, command string, params ...string) ircmsg.Message {
	return ircmsg.Message{Source: source, Command: command, Params: params}
}

func one(t *testing.T, events *[]*database.Event) *database.Event {
	t.Helper()
	if len(*events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(*events))
	}
	return (*events)[0]
}

func TestPrivmsgChannelMessage(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "#test", "hello there"))

	ev := one(t, events)
	if ev.Type != database.EventMessage {
		t.Errorf("type = %q, want message", ev.Type)
	}
	if ev.Network != "libera" {
		t.Errorf("network = %q, want libera", ev.Network)
	}
	if ev.Channel != "#test" || ev.Nick != "alice" {
		t.Errorf("channel/nick = %q/%q", ev.Channel, ev.Nick)
	}
	if ev.Message != "hello there" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestPrivmsgDirectMessage(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "logbot", "psst"))

	ev := one(t, events)
	if ev.Channel != "" {
		t.Errorf("direct message should have no channel, got %q", ev.Channel)
	}
	if ev.Nick != "alice" || ev.Message != "psst" {
		t.Errorf("nick/message = %q/%q", ev.Nick, ev.Message)
	}
}

func TestPrivmsgAction(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "#test", "\x01ACTION waves\x01"))

	ev := one(t, events)
	if ev.Type != database.EventAction {
		t.Errorf("type = %q, want action", ev.Type)
	}
	if ev.Message != "waves" {
		t.Errorf("message = %q, want 'waves'", ev.Message)
	}
}

func TestPrivmsgIgnoresOtherCTCP(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "logbot", "\x01VERSION\x01"))
	if len(*events) != 0 {
		t.Errorf("expected no events for CTCP request, got %d", len(*events))
	}
}

func TestPrivmsgEscapesFormatting(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "#test", "\x02bold\x02 plain"))

	ev := one(t, events)
	if ev.Message != "$bbold$b plain" {
		t.Errorf("message = %q, want '$bbold$b plain'", ev.Message)
	}
}

func TestPrivmsgCarriesTrackedPrefix(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "@alice +bob carol"))

	r.onPrivmsg(msg("alice!u@h", "PRIVMSG", "#test", "hi"))
	r.onPrivmsg(msg("bob!u@h", "PRIVMSG", "#test", "hi"))
	r.onPrivmsg(msg("carol!u@h", "PRIVMSG", "#test", "hi"))

	if len(*events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(*events))
	}
	for i, want := range []string{"@", "+", ""} {
		if got := (*events)[i].Prefix; got != want {
			t.Errorf("event %d prefix = %q, want %q", i, got, want)
		}
	}
}

func TestNoticeFromUser(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNotice(msg("alice!u@h", "NOTICE", "#test", "heads up"))

	ev := one(t, events)
	if ev.Type != database.EventNotice {
		t.Errorf("type = %q, want notice", ev.Type)
	}
	if ev.Message != "heads up" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestNoticeFromServerIgnored(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNotice(msg("irc.example.org", "NOTICE", "logbot", "*** Looking up your hostname"))
	if len(*events) != 0 {
		t.Errorf("expected server notice to be dropped, got %d events", len(*events))
	}
}

func TestJoinPart(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onJoin(msg("alice!u@h", "JOIN", "#test"))
	r.onPart(msg("alice!u@h", "PART", "#test", "gotta go"))

	if len(*events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(*events))
	}
	join, part := (*events)[0], (*events)[1]
	if join.Type != database.EventJoin || join.Channel != "#test" || join.Nick != "alice" {
		t.Errorf("join event = %+v", join)
	}
	if part.Type != database.EventPart || part.Message != "gotta go" {
		t.Errorf("part event = %+v", part)
	}
}

func TestPartPrefixCapturedBeforeRemoval(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "@alice"))
	r.onPart(msg("alice!u@h", "PART", "#test"))

	ev := one(t, events)
	if ev.Prefix != "@" {
		t.Errorf("part prefix = %q, want \"@\"", ev.Prefix)
	}
	if got := r.tracker.prefix("#test", "alice"); got != "" {
		t.Errorf("tracker still knows parted nick: %q", got)
	}
}

func TestQuit(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "@alice"))
	r.onQuit(msg("alice!u@h", "QUIT", "Ping timeout"))

	ev := one(t, events)
	if ev.Type != database.EventQuit {
		t.Errorf("type = %q, want quit", ev.Type)
	}
	if ev.Channel != "" {
		t.Errorf("quit should have no channel, got %q", ev.Channel)
	}
	if ev.Message != "Ping timeout" {
		t.Errorf("message = %q", ev.Message)
	}
	if got := r.tracker.prefix("#test", "alice"); got != "" {
		t.Errorf("tracker still knows quit nick: %q", got)
	}
}

func TestKickSubjectAndSecondary(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "@oper +victim"))
	r.onKick(msg("oper!u@h", "KICK", "#test", "victim", "begone"))

	ev := one(t, events)
	if ev.Type != database.EventKick {
		t.Errorf("type = %q, want kick", ev.Type)
	}
	if ev.Nick != "victim" || ev.Prefix != "+" {
		t.Errorf("subject = %q/%q, want victim/+", ev.Nick, ev.Prefix)
	}
	if ev.Secondary != "oper" || ev.SecondaryPrefix != "@" {
		t.Errorf("secondary = %q/%q, want oper/@", ev.Secondary, ev.SecondaryPrefix)
	}
	if ev.Message != "begone" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestNickChange(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "@alice"))
	r.onNick(msg("alice!u@h", "NICK", "alicia"))

	ev := one(t, events)
	if ev.Type != database.EventNick {
		t.Errorf("type = %q, want nick", ev.Type)
	}
	if ev.Nick != "alicia" || ev.Secondary != "alice" {
		t.Errorf("new/old = %q/%q, want alicia/alice", ev.Nick, ev.Secondary)
	}
	if got := r.tracker.prefix("#test", "alicia"); got != "@" {
		t.Errorf("prefix did not follow rename: %q", got)
	}
}

func TestTopicChange(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onTopic(msg("alice!u@h", "TOPIC", "#test", "release day"))

	ev := one(t, events)
	if ev.Type != database.EventTopic {
		t.Errorf("type = %q, want topic", ev.Type)
	}
	if ev.Channel != "#test" || ev.Nick != "alice" || ev.Message != "release day" {
		t.Errorf("event = %+v", ev)
	}
}

func TestModeGrantRevoke(t *testing.T) {
	r, events := newTestRecorder(t)
	r.onNames(msg("server", "353", "logbot", "=", "#test", "carol"))

	r.onMode(msg("oper!u@h", "MODE", "#test", "+o", "carol"))
	if got := r.tracker.prefix("#test", "carol"); got != "@" {
		t.Errorf("prefix after +o = %q, want \"@\"", got)
	}

	r.onMode(msg("oper!u@h", "MODE", "#test", "-o+v", "carol", "carol"))
	if got := r.tracker.prefix("#test", "carol"); got != "+" {
		t.Errorf("prefix after -o+v = %q, want \"+\"", got)
	}

	// MODE changes track state only; they never produce log events.
	if len(*events) != 0 {
		t.Errorf("expected 0 events from MODE, got %d", len(*events))
	}
}

func TestModeSkipsParameterModes(t *testing.T) {
	r, _ := newTestRecorder(t)
	// +k consumes the key argument, so +o must take the second one.
	r.onMode(msg("oper!u@h", "MODE", "#test", "+ko", "sekrit", "carol"))
	if got := r.tracker.prefix("#test", "carol"); got != "@" {
		t.Errorf("prefix after +ko = %q, want \"@\"", got)
	}
}

func TestSourceNick(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"alice!u@h", "alice"},
		{"alice", "alice"},
		{"irc.example.org", "irc.example.org"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sourceNick(tt.source); got != tt.want {
			t.Errorf("sourceNick(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestIsChannel(t *testing.T) {
	for target, want := range map[string]bool{
		"#test": true, "&local": true, "logbot": false, "": false,
	} {
		if got := isChannel(target); got != want {
			t.Errorf("isChannel(%q) = %v, want %v", target, got, want)
		}
	}
}

func TestHostOnly(t *testing.T) {
	for addr, want := range map[string]string{
		"irc.libera.chat:6697": "irc.libera.chat",
		"[::1]:6697":           "::1",
		"192.168.0.10:6667":    "192.168.0.10",
		"localhost":            "localhost",
	} {
		if got := hostOnly(addr); got != want {
			t.Errorf("hostOnly(%q) = %q, want %q", addr, got, want)
		}
	}
}
