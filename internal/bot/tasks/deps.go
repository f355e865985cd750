// Package tasks implements the scheduled background tasks for irclogd.
package tasks

import (
	"log/slog"

	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/internal/database"
)

// TaskDeps carries the dependencies shared by all scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
