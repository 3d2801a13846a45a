package jobs

import (
	"context"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultAssignmentSchedule runs the sweep every five minutes.
const DefaultAssignmentSchedule = "@every 5m"

// DriverAssigner runs one auto-assignment sweep. Implemented by
// commands.AutoAssignDriversCommandHandler.
type DriverAssigner interface {
	Handle(ctx context.Context, cmd commands.AutoAssignDriversCommand) (commands.AutoAssignDriversResult, error)
}

// DriverAssignmentJob periodically offers validated orders without a driver to the
// nearest available driver, acting as the system dispatcher.
type DriverAssignmentJob struct {
	assigner DriverAssigner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDriverAssignmentJob creates the job. An empty schedule falls back to
// DefaultAssignmentSchedule.
func NewDriverAssignmentJob(assigner DriverAssigner, schedule string, logger *slog.Logger) *DriverAssignmentJob {
	if schedule == "" {
		schedule = DefaultAssignmentSchedule
	}
	return &DriverAssignmentJob{
		assigner: assigner,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "driver_assignment_job"),
	}
}

// Start schedules the sweep and starts the cron runner.
func (j *DriverAssignmentJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Driver assignment job started", "schedule", j.schedule)
	return nil
}

// Run executes a single sweep. Per-order failures are reported by the handler; only a
// failed sweep is logged as an error here.
func (j *DriverAssignmentJob) Run(ctx context.Context) {
	cmd, err := commands.NewAutoAssignDriversCommand(authz.System(), 0)
	if err != nil {
		j.logger.ErrorContext(ctx, "Driver assignment job misconfigured", "error", err)
		return
	}

	result, err := j.assigner.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Driver assignment job failed", "error", err)
		return
	}
	if result.Scanned > 0 {
		j.logger.InfoContext(ctx, "Driver assignment sweep finished",
			"scanned", result.Scanned, "assigned", result.Assigned, "failed", result.Failed)
	}
}

// Stop stops the scheduler and waits for a running sweep to return.
func (j *DriverAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Driver assignment job stopped")
}
