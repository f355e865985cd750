// Package main contains the entrypoint for the irclogd daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovelind/irclogd/internal/bot"
	"github.com/ovelind/irclogd/internal/bot/tasks"
	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/internal/database"
	"github.com/ovelind/irclogd/internal/irc"
	"github.com/ovelind/irclogd/internal/logger"
	"github.com/ovelind/irclogd/schema"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes all components (config, logger, database, store, IRC
// recorder, scheduler), blocks until shutdown, and returns an exit code.
// If the database bootstrap fails the daemon stays fully inert: no IRC
// connection is made and no event subscription happens.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	printSchema := flag.Bool("print-schema", false, "Print the reference DDL for the configured driver and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	if *printSchema {
		ddl, err := schema.DDL(cfg.Database.Driver)
		if err != nil {
			slog.Error("Failed to load reference schema", "driver", cfg.Database.Driver, "error", err)
			return 1
		}
		fmt.Print(ddl)
		return 0
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on every exit path

	if err := database.CheckSchema(ctx, db); err != nil {
		log.Error("Database schema check failed, refusing to start", "error", err)
		return 1
	}

	store := database.NewStore(db, log)

	sink := bot.NewEventSink(log, cfg, store)
	recorder := irc.NewRecorder(&cfg.IRC, log, sink)

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, cfg, store, recorder, sched)

	log.Info("Starting irclogd...", "network", cfg.IRC.Network, "server", cfg.IRC.Server)
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("irclogd stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("irclogd stopped gracefully.")
	return 0
}
