// Package engine orchestrates nodeflow execution: it partitions the graph
// into parallel waves, binds node inputs through the expression resolver,
// invokes node runners and streams lifecycle events.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/graph"
	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/otelhelper"
	"github.com/promoteai/superrag/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Result aggregates a completed run: one output record per node plus the
// free-form side channels terminal nodes expose for streaming consumption.
type Result struct {
	Outputs       map[string]map[string]any
	SystemOutputs map[string]any
}

type Executor struct {
	registry *registry.Registry
	eventBus eventbus.EventBus
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewExecutor(reg *registry.Registry, bus eventbus.EventBus, logger *slog.Logger) *Executor {
	return &Executor{
		registry: reg,
		eventBus: bus,
		tracer:   otel.Tracer("superrag.engine"),
		logger:   logger,
	}
}

// Execute runs a nodeflow to completion. A run either returns the aggregate
// outputs or fails as a whole: any node error aborts the run, there is no
// partial-success mode and no engine-level retry. initialData seeds the run's
// global variables.
func (e *Executor) Execute(ctx context.Context, flow *models.Nodeflow, initialData map[string]any) (*Result, error) {
	executionID := generateExecutionID()

	logger := e.logger.With(
		"module", "engine",
		"nodeflow", flow.Name,
		"execution_id", executionID,
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "nodeflow.execute",
		attribute.String(otelhelper.NodeflowNameKey, flow.Name),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	ec := models.NewExecutionContext(executionID, initialData)
	startedAt := time.Now()

	logger.InfoContext(ctx, "Starting nodeflow execution")
	e.emitNodeflowStart(ctx, flow, executionID)

	waves, err := e.plan(flow, executionID)
	if err != nil {
		otelhelper.SetError(span, err)
		e.emitNodeflowError(ctx, flow, executionID, err, time.Since(startedAt))

		return nil, err
	}

	for _, wave := range waves {
		err := e.executeWave(ctx, flow, wave, ec, logger)
		if err != nil {
			logger.ErrorContext(ctx, "Nodeflow execution failed", "error", err)
			otelhelper.SetError(span, err)
			e.emitNodeflowError(ctx, flow, executionID, err, time.Since(startedAt))

			return nil, err
		}
	}

	logger.InfoContext(ctx, "Nodeflow execution completed", "duration", time.Since(startedAt))
	e.emitNodeflowEnd(ctx, flow, executionID, time.Since(startedAt))

	return &Result{
		Outputs:       ec.Outputs(),
		SystemOutputs: ec.SystemOutputs(),
	}, nil
}

// plan validates the graph and partitions it into execution waves. A flow
// must be a DAG with exactly one start node.
func (e *Executor) plan(flow *models.Nodeflow, executionID string) ([][]string, error) {
	_, err := graph.TopologicalSort(flow.Nodes, flow.Edges)
	if err != nil {
		return nil, err
	}

	starts := graph.StartNodes(flow.Nodes, flow.Edges)
	if len(starts) != 1 {
		return nil, models.NewValidationError("",
			fmt.Sprintf("nodeflow must have exactly one start node, found %d", len(starts)), nil)
	}

	return graph.Waves(flow.Nodes, flow.Edges)
}

// executeWave runs every node in the wave and joins before returning. Wave
// members are awaited to completion even when a sibling fails; the first
// error is reported. A wave of one executes inline.
func (e *Executor) executeWave(ctx context.Context, flow *models.Nodeflow, wave []string, ec *models.ExecutionContext, logger *slog.Logger) error {
	if len(wave) == 1 {
		return e.executeNode(ctx, flow, wave[0], ec, logger)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, nodeID := range wave {
		group.Go(func() error {
			return e.executeNode(groupCtx, flow, nodeID, ec, logger)
		})
	}

	return group.Wait()
}

func (e *Executor) executeNode(ctx context.Context, flow *models.Nodeflow, nodeID string, ec *models.ExecutionContext, logger *slog.Logger) error {
	node, err := flow.Node(nodeID)
	if err != nil {
		return err
	}

	nodeLogger := logger.With("node_id", node.ID, "node_type", node.Type)

	input, err := e.bindInputs(node, ec)
	if err != nil {
		e.emitNodeError(ctx, node, ec.ID, err, 0)

		return err
	}

	runner, err := e.registry.CreateRunner(ctx, node.Type, node.ID, node.Config)
	if err != nil {
		e.emitNodeError(ctx, node, ec.ID, err, 0)

		return err
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "node.execute",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
		attribute.String(otelhelper.ExecutionIDKey, ec.ID),
	)
	defer span.End()

	nodeLogger.InfoContext(ctx, "Executing node")
	e.emitNodeStart(ctx, node, ec.ID)

	startedAt := time.Now()

	output, systemOutput, err := runner.Run(ctx, input, ec.Globals())
	if err != nil {
		nodeLogger.ErrorContext(ctx, "Node execution failed", "error", err)
		otelhelper.SetError(span, err)
		e.emitNodeError(ctx, node, ec.ID, err, time.Since(startedAt).Milliseconds())

		return fmt.Errorf("node %s failed: %w", node.ID, err)
	}

	ec.SetOutput(node.ID, output, systemOutputValue(systemOutput))

	nodeLogger.InfoContext(ctx, "Node executed", "duration_ms", time.Since(startedAt).Milliseconds())
	e.emitNodeEnd(ctx, node, ec.ID, time.Since(startedAt).Milliseconds())

	return nil
}

// systemOutputValue keeps the side channel untyped; a nil map stays nil so
// nodes without a side channel leave no trace in the context.
func systemOutputValue(systemOutput map[string]any) any {
	if systemOutput == nil {
		return nil
	}

	return systemOutput
}

// generateExecutionID generates a short unique execution ID.
func generateExecutionID() string {
	return fmt.Sprintf("exec-%s", uuid.New().String()[:8])
}
