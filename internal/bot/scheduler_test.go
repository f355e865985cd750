package bot_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ovelind/irclogd/internal/bot"
	"github.com/ovelind/irclogd/internal/bot/tasks"
	"github.com/ovelind/irclogd/internal/config"
)

func newTestScheduler(t *testing.T, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) *bot.Scheduler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := bot.NewScheduler(logger, cfg, taskMap)
	if err != nil {
		t.Fatalf("unexpected error creating scheduler: %v", err)
	}
	return s
}

func TestSchedulerStartStop(t *testing.T) {
	cfg := &config.SchedulerConfig{
		Tasks: map[string]config.TaskConfig{
			"noop":     {Enabled: true, Schedule: "0 4 * * *"},
			"disabled": {Enabled: false, Schedule: "0 4 * * *"},
			"unknown":  {Enabled: true, Schedule: "0 4 * * *"},
		},
	}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"noop":     func(context.Context) error { return nil },
		"disabled": func(context.Context) error { return nil },
	}

	s := newTestScheduler(t, cfg, taskMap)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("expected error starting an already running scheduler")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("stop: %v", err)
	}
	// Stopping again is a no-op.
	if err := s.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestSchedulerStartWithoutTasks(t *testing.T) {
	s := newTestScheduler(t, &config.SchedulerConfig{}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start with no tasks: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("stop: %v", err)
	}
}
