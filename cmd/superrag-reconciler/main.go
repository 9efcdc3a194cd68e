package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/promoteai/superrag/pkg/cmd"
	"github.com/promoteai/superrag/pkg/log"
	"github.com/promoteai/superrag/pkg/otelhelper"
	"github.com/promoteai/superrag/pkg/reconciler"
)

func main() {
	command := &cli.Command{
		Name:                  "superrag-reconciler",
		Usage:                 "Start the document index reconciler service",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "reconciler-id",
				Aliases: []string{"id"},
				Usage:   "Custom reconciler ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("RECONCILER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for index record persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "scheduler",
				Usage:   "Task scheduler type (eventbus, redis)",
				Value:   "eventbus",
				Sources: cli.EnvVars("TASK_SCHEDULER_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL (required for the redis scheduler)",
				Value:   "redis://localhost:6379",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "reconcile-schedule",
				Usage:   "Cron schedule (with seconds) for reconciliation passes",
				Value:   "*/10 * * * * *",
				Sources: cli.EnvVars("RECONCILE_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: runReconciler,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func runReconciler(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	tracerProvider, err := otelhelper.InitTracer(ctx, "superrag-reconciler")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	reconcilerID := command.String("reconciler-id")
	if reconcilerID == "" {
		reconcilerID = fmt.Sprintf("reconciler-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule("superrag-reconciler").With("reconciler_id", reconcilerID)
	logger.Info("Initializing SuperRAG Reconciler")

	repo, err := cmd.NewIndexRepository(ctx, logger, command.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to initialize index repository: %w", err)
	}
	defer func() {
		if err := repo.Close(ctx); err != nil {
			logger.Error("Failed to close index repository", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	taskScheduler, err := cmd.NewTaskScheduler(ctx, command.String("scheduler"), logger, eventBus, command.String("redis-url"))
	if err != nil {
		return fmt.Errorf("failed to initialize task scheduler: %w", err)
	}

	rec := reconciler.NewReconciler(repo, taskScheduler, logger)
	callbacks := reconciler.NewCallbacks(repo, logger)

	listener := reconciler.NewListener(callbacks, eventBus, logger)
	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start completion listener: %w", err)
	}

	runner := reconciler.NewRunner(rec, command.String("reconcile-schedule"), logger)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reconciler runner: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down reconciler")
	runner.Stop(ctx)

	return nil
}
