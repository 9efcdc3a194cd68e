package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner triggers reconciliation passes on a fixed cron schedule. The loop is
// level-triggered, so overlapping work is harmless: a pass that finds nothing
// to claim simply skips.
type Runner struct {
	reconciler *Reconciler
	schedule   string
	cron       *cron.Cron
	logger     *slog.Logger
}

func NewRunner(reconciler *Reconciler, schedule string, logger *slog.Logger) *Runner {
	return &Runner{
		reconciler: reconciler,
		schedule:   schedule,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("module", "reconciler_runner"),
	}
}

// Start registers the scheduled pass and starts the cron scheduler. An
// immediate pass runs first so a restart does not wait out the interval.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.reconciler.ReconcileAll(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Initial reconciliation pass failed", "error", err)
	}

	_, err = r.cron.AddFunc(r.schedule, func() {
		_, err := r.reconciler.ReconcileAll(ctx)
		if err != nil {
			r.logger.ErrorContext(ctx, "Reconciliation pass failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "Reconciler runner started", "schedule", r.schedule)

	return nil
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (r *Runner) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}

	r.logger.InfoContext(ctx, "Reconciler runner stopped")
}
