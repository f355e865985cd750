// Package irc adapts a live IRC connection into the structured events the
// event store consumes. It tracks channel status prefixes, converts IRC
// inline formatting codes to markup, and tags every event with the
// originating network name so the sink can filter.
package irc

import (
	"crypto/tls"
	"log/slog"
	"net"
	"strings"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/internal/database"
	"github.com/ovelind/irclogd/internal/logger"
)

// Sink receives one event at a time. The recorder never calls it
// concurrently; the connection's read loop delivers commands serially.
type Sink func(*database.Event)

// Recorder owns the IRC connection and translates raw commands into events.
type Recorder struct {
	conn    *ircevent.Connection
	cfg     *config.IRCConfig
	logger  *slog.Logger
	tracker *tracker
	sink    Sink
}

// NewRecorder builds the connection and registers all event callbacks.
// Nothing is sent on the wire until Connect.
func NewRecorder(cfg *config.IRCConfig, log *slog.Logger, sink Sink) *Recorder {
	conn := &ircevent.Connection{
		Server:        cfg.Server,
		Nick:          cfg.Nick,
		User:          cfg.User,
		RealName:      cfg.RealName,
		Password:      cfg.Password,
		UseTLS:        cfg.TLS,
		QuitMessage:   cfg.QuitMessage,
		Version:       cfg.Version,
		ReconnectFreq: cfg.ReconnectFreq,
		Debug:         cfg.Debug,
		Log:           logger.StdLogger(log, slog.LevelDebug),
	}
	if cfg.TLS {
		conn.TLSConfig = &tls.Config{ServerName: hostOnly(cfg.Server)}
	}

	r := &Recorder{
		conn:    conn,
		cfg:     cfg,
		logger:  log.With("component", "irc"),
		tracker: newTracker(),
		sink:    sink,
	}
	r.register()
	return r
}

// Connect establishes the connection to the configured server.
func (r *Recorder) Connect() error {
	r.logger.Info("Connecting to IRC server", "server", r.cfg.Server, "nick", r.cfg.Nick)
	return r.conn.Connect()
}

// Loop processes the connection until Quit is called, reconnecting on
// transient failures.
func (r *Recorder) Loop() {
	r.conn.Loop()
}

// Quit sends the configured quit message and terminates the loop.
func (r *Recorder) Quit() {
	r.conn.Quit()
}

func (r *Recorder) register() {
	r.conn.AddConnectCallback(func(e ircmsg.Message) {
		r.logger.Info("Connected, joining channels", "channels", strings.Join(r.cfg.Channels, ","))
		for _, ch := range r.cfg.Channels {
			if err := r.conn.Join(ch); err != nil {
				r.logger.Error("Failed to join channel", "channel", ch, "error", err)
			}
		}
	})

	r.conn.AddCallback("PRIVMSG", r.onPrivmsg)
	r.conn.AddCallback("NOTICE", r.onNotice)
	r.conn.AddCallback("JOIN", r.onJoin)
	r.conn.AddCallback("PART", r.onPart)
	r.conn.AddCallback("QUIT", r.onQuit)
	r.conn.AddCallback("KICK", r.onKick)
	r.conn.AddCallback("NICK", r.onNick)
	r.conn.AddCallback("TOPIC", r.onTopic)
	r.conn.AddCallback("353", r.onNames) // RPL_NAMREPLY
	r.conn.AddCallback("MODE", r.onMode)
}

// emit tags the event with the network this recorder serves and hands it to
// the sink.
func (r *Recorder) emit(ev *database.Event) {
	ev.Network = r.cfg.Network
	r.sink(ev)
}

// sourceNick extracts the nick from a message source of the form
// "nick!user@host". Server sources (no user part) pass through unchanged.
func sourceNick(source string) string {
	if i := strings.IndexByte(source, '!'); i >= 0 {
		return source[:i]
	}
	return source
}

// isChannel reports whether an IRC message target names a channel.
func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}

// hostOnly strips the port from a host:port address for TLS verification.
// IPv6 literals lose their brackets; a port-less address passes through.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
