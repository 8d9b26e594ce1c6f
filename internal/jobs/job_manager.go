package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	shiftWatchdogJob *ShiftWatchdogJob
	logger           *zap.Logger
}

// NewJobManager creates a manager over the given jobs.
func NewJobManager(shiftWatchdogJob *ShiftWatchdogJob, logger *zap.Logger) *JobManager {
	return &JobManager{
		shiftWatchdogJob: shiftWatchdogJob,
		logger:           logger,
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.shiftWatchdogJob.Start(); err != nil {
		return fmt.Errorf("failed to start shift watchdog job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.shiftWatchdogJob.Stop()
	jm.logger.Info("all jobs stopped")
}
