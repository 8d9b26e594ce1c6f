// Package jobs provides scheduled background tasks.
//
// The shift watchdog runs every minute and forces couriers offline when they
// have stopped reporting locations. A courier is considered stale when no ping
// has arrived within the configured staleness window. Orders the courier
// already holds are untouched; going offline only removes them from future
// dispatch.
//
// Jobs are managed through JobManager, which starts and stops the underlying
// cron scheduler:
//
//	jobManager := jobs.NewJobManager(watchdog, logger)
//	if err := jobManager.StartAll(); err != nil {
//		// ...
//	}
//	defer jobManager.StopAll()
package jobs
