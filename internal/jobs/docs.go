// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// DriverAssignmentJob runs the auto-assignment sweep (default "@every 5m"): validated
// orders without a driver, except evening deliveries, are offered to the nearest
// available driver in priority order.
//
// # Usage
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(&autoAssignHandler, cfg.AssignmentSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Orders the sweep cannot place are logged by the command handler and picked up again
// on the next run. A sweep that fails as a whole is logged; the schedule continues.
// Overlapping runs are skipped.
package jobs
