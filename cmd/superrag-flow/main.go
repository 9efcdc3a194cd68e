package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/promoteai/superrag/pkg/cmd"
	"github.com/promoteai/superrag/pkg/engine"
	"github.com/promoteai/superrag/pkg/log"
	"github.com/promoteai/superrag/pkg/otelhelper"
	"github.com/promoteai/superrag/pkg/parser"
)

func main() {
	command := &cli.Command{
		Name:                  "superrag-flow",
		Usage:                 "Execute a nodeflow definition",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the nodeflow definition (JSON or YAML)",
				Required: true,
				Sources:  cli.EnvVars("NODEFLOW_FILE"),
			},
			&cli.StringFlag{
				Name:    "globals",
				Usage:   "JSON object of global variables seeding the run",
				Value:   "{}",
				Sources: cli.EnvVars("NODEFLOW_GLOBALS"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "plugins-path",
				Usage:   "Path to the directory containing runner plugins",
				Value:   "",
				Sources: cli.EnvVars("PLUGINS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: runFlow,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func runFlow(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	tracerProvider, err := otelhelper.InitTracer(ctx, "superrag-flow")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	logger := log.WithModule("superrag-flow")

	data, err := os.ReadFile(command.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read nodeflow file: %w", err)
	}

	globals := map[string]any{}
	if err := json.Unmarshal([]byte(command.String("globals")), &globals); err != nil {
		return fmt.Errorf("invalid globals JSON: %w", err)
	}

	registry := cmd.NewRegistry(ctx, logger, command.String("plugins-path"))

	flow, err := parser.Parse(data, registry)
	if err != nil {
		return fmt.Errorf("failed to parse nodeflow: %w", err)
	}

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	executor := engine.NewExecutor(registry, eventBus, logger)

	result, err := executor.Execute(ctx, flow, globals)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result.Outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(encoded))

	return nil
}
