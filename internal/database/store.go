package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the data access layer: get-or-create identifier resolution and
// append-only event logging.
//
// The event path is single-threaded: the host delivers one event at a time
// and every call runs to completion before the next. Background maintenance
// may overlap that path, so the retained error message is synchronized. The
// storage layer's unique constraints, not in-process locks, remain the
// defense against duplicate rows created by other processes sharing the
// same database.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// ResolveNick returns the surrogate key for nick, creating the row on
	// first reference. Lookup is case-insensitive. When touchSeen is true a
	// successful lookup also updates the nick's last_seen time; pass false
	// for passive lookups where "seen" semantics do not apply.
	ResolveNick(ctx context.Context, nick string, touchSeen bool) (int64, error)

	// ResolveChannel returns the surrogate key for a channel name, creating
	// the row on first reference. Lookup is case-insensitive.
	ResolveChannel(ctx context.Context, name string) (int64, error)

	// ResolvePrefix returns the surrogate key for a status-prefix string,
	// creating the row on first reference. Lookup is exact.
	ResolvePrefix(ctx context.Context, prefix string) (int64, error)

	// LogEvent resolves every identifier the event carries and appends one
	// row to the log table. The first resolution failure aborts the whole
	// operation with nothing written.
	LogEvent(ctx context.Context, ev *Event) error

	// RunMaintenance performs driver-appropriate storage upkeep.
	RunMaintenance(ctx context.Context) error

	// LastError returns the message retained from the most recent failed
	// operation, or "" if it succeeded. Every operation clears the retained
	// message before doing any work.
	LastError() string
}

// namespace describes one of the three identifier tables; all three share
// the same lookup-then-insert shape.
type namespace struct {
	table    string
	column   string
	foldCase bool
}

var (
	nsChannel = namespace{table: "channels", column: "name", foldCase: true}
	nsPrefix  = namespace{table: "prefixes", column: "prefix", foldCase: false}
)

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger

	mu      sync.Mutex // scheduled maintenance can overlap the event path
	lastErr string
}

// NewStore creates a Store backed by sqlx. It requires a connected sqlx.DB
// whose schema has already passed CheckSchema, and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	s.setLastErr("")
	if err := s.db.PingContext(ctx); err != nil {
		return s.failf("database ping failed: %v", err)
	}
	return nil
}

func (s *sqlxStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *sqlxStore) setLastErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// failf records the formatted message for LastError and returns it as the
// operation's error.
func (s *sqlxStore) failf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	s.setLastErr(err.Error())
	return err
}

// unixNow returns the current time as unsigned seconds since the Unix
// epoch, the representation used by the last_seen and timestamp columns.
func unixNow() uint64 {
	return uint64(time.Now().UTC().Unix())
}

// insertRow executes an insert and returns the auto-assigned key. A
// successful insert whose key cannot be retrieved is an error; the caller
// has no other way to reference the new row.
func (s *sqlxStore) insertRow(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not retrieve inserted id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("no id assigned to inserted row")
	}
	return id, nil
}

// lookupOrCreate is the shared resolver shape for the channel and prefix
// namespaces: select the surrogate key, insert the natural value on a miss.
// A uniqueness violation from a concurrent insert by another process
// surfaces as an error; it is not retried here.
func (s *sqlxStore) lookupOrCreate(ctx context.Context, ns namespace, value string) (int64, error) {
	query := "SELECT id FROM " + ns.table + " WHERE " + ns.column + " = ?"
	if ns.foldCase {
		query = "SELECT id FROM " + ns.table + " WHERE LOWER(" + ns.column + ") = LOWER(?)"
	}

	var id int64
	err := s.db.GetContext(ctx, &id, query, value)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		id, err := s.insertRow(ctx,
			"INSERT INTO "+ns.table+" ("+ns.column+") VALUES (?)", value)
		if err != nil {
			return 0, fmt.Errorf("failed to create %q in %s: %w", value, ns.table, err)
		}
		s.logger.DebugContext(ctx, "Created identifier", "table", ns.table, "value", value, "id", id)
		return id, nil
	default:
		return 0, fmt.Errorf("failed to look up %q in %s: %w", value, ns.table, err)
	}
}

// ResolveNick implements the nick namespace of the resolver. It follows the
// same lookup-then-insert shape as lookupOrCreate but touches last_seen on
// a hit and seeds it on creation.
func (s *sqlxStore) ResolveNick(ctx context.Context, nick string, touchSeen bool) (int64, error) {
	s.setLastErr("")
	if nick == "" {
		return 0, s.failf("cannot resolve empty nick")
	}

	var row Nick
	err := s.db.GetContext(ctx, &row,
		`SELECT id, nick, last_seen FROM nicks WHERE LOWER(nick) = LOWER(?)`, nick)
	switch {
	case err == nil:
		if touchSeen {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE nicks SET last_seen = ? WHERE id = ?`, unixNow(), row.ID); err != nil {
				s.logger.ErrorContext(ctx, "Error updating last_seen", "nick", nick, "error", err)
				return 0, s.failf("failed to update last_seen for nick %q: %v", nick, err)
			}
		}
		return row.ID, nil

	case errors.Is(err, sql.ErrNoRows):
		id, err := s.insertRow(ctx,
			`INSERT INTO nicks (nick, last_seen) VALUES (?, ?)`, nick, unixNow())
		if err != nil {
			s.logger.ErrorContext(ctx, "Error creating nick", "nick", nick, "error", err)
			return 0, s.failf("failed to create nick %q: %v", nick, err)
		}
		s.logger.DebugContext(ctx, "Created nick", "nick", nick, "id", id)
		return id, nil

	default:
		s.logger.ErrorContext(ctx, "Error looking up nick", "nick", nick, "error", err)
		return 0, s.failf("failed to look up nick %q: %v", nick, err)
	}
}

func (s *sqlxStore) ResolveChannel(ctx context.Context, name string) (int64, error) {
	s.setLastErr("")
	if name == "" {
		return 0, s.failf("cannot resolve empty channel name")
	}
	id, err := s.lookupOrCreate(ctx, nsChannel, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error resolving channel", "channel", name, "error", err)
		return 0, s.failf("%v", err)
	}
	return id, nil
}

func (s *sqlxStore) ResolvePrefix(ctx context.Context, prefix string) (int64, error) {
	s.setLastErr("")
	if prefix == "" {
		return 0, s.failf("cannot resolve empty prefix")
	}
	id, err := s.lookupOrCreate(ctx, nsPrefix, prefix)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error resolving prefix", "prefix", prefix, "error", err)
		return 0, s.failf("%v", err)
	}
	return id, nil
}

// LogEvent resolves the identifiers the event references and appends one
// denormalized row to the log table. Resolution is fail-fast: the first
// failure aborts the operation before anything is written. Nick resolutions
// on this path update last_seen as a side effect.
func (s *sqlxStore) LogEvent(ctx context.Context, ev *Event) error {
	s.setLastErr("")
	if ev == nil {
		return s.failf("cannot log nil event")
	}
	if !ev.Type.Valid() {
		return s.failf("unknown event type %q", ev.Type)
	}

	row := logRow{
		Timestamp: ev.Timestamp,
		Type:      string(ev.Type),
	}
	if row.Timestamp == 0 {
		row.Timestamp = unixNow()
	}

	if ev.Channel != "" {
		id, err := s.ResolveChannel(ctx, ev.Channel)
		if err != nil {
			return s.failf("failed to log %s event: %v", ev.Type, err)
		}
		row.ChannelID = validID(id)
	}
	if ev.Nick != "" {
		id, err := s.ResolveNick(ctx, ev.Nick, true)
		if err != nil {
			return s.failf("failed to log %s event: %v", ev.Type, err)
		}
		row.NickID = validID(id)
	}
	if ev.Prefix != "" {
		id, err := s.ResolvePrefix(ctx, ev.Prefix)
		if err != nil {
			return s.failf("failed to log %s event: %v", ev.Type, err)
		}
		row.NickPrefixID = validID(id)
	}
	if ev.Secondary != "" {
		id, err := s.ResolveNick(ctx, ev.Secondary, true)
		if err != nil {
			return s.failf("failed to log %s event: %v", ev.Type, err)
		}
		row.SecondaryNickID = validID(id)
	}
	if ev.SecondaryPrefix != "" {
		id, err := s.ResolvePrefix(ctx, ev.SecondaryPrefix)
		if err != nil {
			return s.failf("failed to log %s event: %v", ev.Type, err)
		}
		row.SecondaryPrefixID = validID(id)
	}
	if ev.Message != "" {
		row.Message = sql.NullString{String: ev.Message, Valid: true}
	}

	query := `
        INSERT INTO log (timestamp, channel_id, type, nick_id, nick_prefix_id, secondary_nick_id, secondary_prefix_id, message)
        VALUES (:timestamp, :channel_id, :type, :nick_id, :nick_prefix_id, :secondary_nick_id, :secondary_prefix_id, :message);
    `
	res, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting log row",
			"type", ev.Type, "channel", ev.Channel, "nick", ev.Nick, "error", err)
		return s.failf("failed to insert %s event: %v", ev.Type, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return s.failf("failed to confirm %s event insert: %v", ev.Type, err)
	}
	if affected != 1 {
		return s.failf("log insert affected %d rows, expected 1", affected)
	}

	s.logger.DebugContext(ctx, "Event logged",
		"type", ev.Type, "channel", ev.Channel, "nick", ev.Nick)
	return nil
}

// RunMaintenance performs storage upkeep appropriate to the backing driver.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	s.setLastErr("")

	switch s.db.DriverName() {
	case "sqlite":
		// VACUUM must run outside a transaction in SQLite.
		if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
			return s.failf("failed to vacuum database: %v", err)
		}
		if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
			return s.failf("failed to analyze database: %v", err)
		}
	case "mysql":
		// ANALYZE TABLE returns a result set, so it goes through Query.
		rows, err := s.db.QueryContext(ctx,
			"ANALYZE TABLE nicks, channels, prefixes, log, excerpt")
		if err != nil {
			return s.failf("failed to analyze tables: %v", err)
		}
		if err := rows.Close(); err != nil {
			return s.failf("failed to finish table analysis: %v", err)
		}
	default:
		return s.failf("no maintenance routine for driver %q", s.db.DriverName())
	}

	s.logger.InfoContext(ctx, "Storage maintenance completed", "driver", s.db.DriverName())
	return nil
}

func validID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}
