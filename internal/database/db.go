// Package database provides the storage bootstrap, models, and the data
// access layer (Store) for the irclogd event log.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/schema"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// NewDB opens the configured database, applies the connection pool policy,
// and verifies connectivity with a ping. The store owns its connection for
// the process lifetime, so max_open_conns defaults to one.
func NewDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	slog.Info("Database connected", "driver", cfg.Driver)
	return db, nil
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
	} else {
		slog.Info("Database connection closed successfully.")
	}
}

// BuildDSN assembles the driver DSN from the connection source, the
// credentials, and the driver-specific option map. For sqlite the source is
// the database file path and credentials are ignored; for mysql the source
// is a DSN without credentials, e.g. "tcp(localhost:3306)/irclog".
func BuildDSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.Source
		if len(cfg.Params) > 0 {
			pairs := make([]string, 0, len(cfg.Params))
			for k, val := range cfg.Params {
				pairs = append(pairs, k+"="+val)
			}
			sort.Strings(pairs)
			dsn += "?" + strings.Join(pairs, "&")
		}
		return dsn, nil

	case "mysql":
		mc, err := mysql.ParseDSN(cfg.Source)
		if err != nil {
			return "", fmt.Errorf("invalid mysql source %q: %w", cfg.Source, err)
		}
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		if len(cfg.Params) > 0 && mc.Params == nil {
			mc.Params = make(map[string]string, len(cfg.Params))
		}
		for k, val := range cfg.Params {
			mc.Params[k] = val
		}
		return mc.FormatDSN(), nil

	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// CheckSchema verifies that every table the store depends on exists. It is
// an advisory check only: it never creates or alters structures. A database
// failing the check must not be handed to the Store.
func CheckSchema(ctx context.Context, db *sqlx.DB) error {
	var query string
	switch db.DriverName() {
	case "sqlite":
		query = `SELECT name FROM sqlite_master WHERE type = 'table'`
	case "mysql":
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()`
	default:
		return fmt.Errorf("unsupported database driver %q", db.DriverName())
	}

	var names []string
	if err := db.SelectContext(ctx, &names, query); err != nil {
		return fmt.Errorf("failed to inspect database schema: %w", err)
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[strings.ToLower(n)] = true
	}

	var missing []string
	for _, table := range schema.Tables {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("database schema is missing tables: %s (apply the shipped schema first)",
			strings.Join(missing, ", "))
	}
	return nil
}
