package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature every scheduled task implements. The
// context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the named task functions available for
// scheduling. Keys match the scheduler section of config.yaml.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		"storage_maintenance": newStorageMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
