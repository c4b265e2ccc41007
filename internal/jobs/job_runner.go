package jobs

import (
	"rentacar-escrow-backend/internal/logger"
	"rentacar-escrow-backend/internal/notify"
	"rentacar-escrow-backend/internal/statestore"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    *statestore.Store
	notifier notify.Notifier
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *statestore.Store, notifier notify.Notifier) *JobRunner {
	return &JobRunner{
		store:    store,
		notifier: notifier,
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
