// Package bot wires the IRC recorder, the event store, and the maintenance
// scheduler together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ovelind/irclogd/internal/config"
	"github.com/ovelind/irclogd/internal/database"
	"github.com/ovelind/irclogd/internal/irc"
)

// Bot owns the daemon's components and their lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	recorder  *irc.Recorder
	scheduler *Scheduler
}

// New creates the daemon orchestrator with all required dependencies.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	recorder *irc.Recorder,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "orchestrator"),
		cfg:       cfg,
		store:     store,
		recorder:  recorder,
		scheduler: scheduler,
	}
}

// NewEventSink returns the function the recorder hands each event to. It
// drops events from networks other than the configured target and appends
// the rest to the log. A failed append is reported and dropped so that one
// bad event cannot stop the recording session.
func NewEventSink(logger *slog.Logger, cfg *config.Config, store database.Store) irc.Sink {
	log := logger.With("component", "event_sink")
	return func(ev *database.Event) {
		if ev.Network != cfg.IRC.Network {
			log.Debug("Dropping event from unconfigured network", "network", ev.Network)
			return
		}
		if err := store.LogEvent(context.Background(), ev); err != nil {
			log.Error("Failed to log event",
				"type", ev.Type, "channel", ev.Channel, "nick", ev.Nick, "error", err)
		}
	}
}

// Run starts the recorder and the scheduler and blocks until the context is
// cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting IRC recorder...")
		if err := b.recorder.Connect(); err != nil {
			return fmt.Errorf("failed to connect to IRC: %w", err)
		}
		b.recorder.Loop()
		b.logger.Info("IRC recorder stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("irc recorder stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, quitting IRC...")
		b.recorder.Quit()
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
