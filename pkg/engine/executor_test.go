package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/protocol"
	"github.com/promoteai/superrag/pkg/registry"
	"github.com/promoteai/superrag/pkg/testutil"
)

// recordingEventBus captures published events in order.
type recordingEventBus struct {
	mu     sync.Mutex
	events []eventbus.Event
	nextID int
}

func (b *recordingEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)

	return nil
}

func (b *recordingEventBus) Handle(events.EventType, eventbus.EventHandler) error { return nil }
func (b *recordingEventBus) Subscribe(context.Context) error                      { return nil }
func (b *recordingEventBus) Close() error                                         { return nil }

func (b *recordingEventBus) GenerateID() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++

	return string(rune('a' + b.nextID))
}

func (b *recordingEventBus) eventTypes() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := make([]events.EventType, 0, len(b.events))
	for _, event := range b.events {
		types = append(types, event.GetType())
	}

	return types
}

// fakeRunner executes a canned function.
type fakeRunner struct {
	id  string
	typ string
	run func(input map[string]any, system map[string]any) (map[string]any, error)
}

func (r *fakeRunner) ID() string   { return r.id }
func (r *fakeRunner) Type() string { return r.typ }

func (r *fakeRunner) Run(_ context.Context, input map[string]any, system map[string]any) (map[string]any, map[string]any, error) {
	output, err := r.run(input, system)

	return output, nil, err
}

type fakeFactory struct {
	typ string
	run func(input map[string]any, system map[string]any) (map[string]any, error)
}

func (f *fakeFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.NodeRunner, error) {
	return &fakeRunner{id: id, typ: f.typ, run: f.run}, nil
}

func (f *fakeFactory) ID() string                   { return f.typ }
func (f *fakeFactory) Name() string                 { return f.typ }
func (f *fakeFactory) Description() string          { return "test runner" }
func (f *fakeFactory) InputSchema() map[string]any  { return nil }
func (f *fakeFactory) OutputSchema() map[string]any { return nil }

func newTestRegistry(factories ...*fakeFactory) *registry.Registry {
	reg := registry.NewRegistry(slog.Default())
	for _, factory := range factories {
		reg.RegisterRunner(factory)
	}

	return reg
}

// retrievalFlow builds start -> {vs_a, vs_b} -> merge -> rerank.
func retrievalFlow() *models.Nodeflow {
	nodes := []*models.NodeInstance{
		testutil.CreateTestNode("start", "start",
			testutil.WithInputValues(map[string]any{"query": "{{ globals.query }}"})),
		testutil.CreateTestNode("vs_a", "fake_search",
			testutil.WithInputValues(map[string]any{"query": "{{ nodes.start.output.query }}"})),
		testutil.CreateTestNode("vs_b", "fake_search",
			testutil.WithInputValues(map[string]any{"query": "{{ nodes.start.output.query }}"})),
		testutil.CreateTestNode("merge", "fake_merge",
			testutil.WithInputValues(map[string]any{
				"first":  "{{ nodes.vs_a.output.documents }}",
				"second": "{{ nodes.vs_b.output.documents }}",
			})),
		testutil.CreateTestNode("rerank", "fake_rerank",
			testutil.WithInputValues(map[string]any{"documents": "{{ nodes.merge.output.documents }}"})),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("start", "vs_a"),
		testutil.CreateTestEdge("start", "vs_b"),
		testutil.CreateTestEdge("vs_a", "merge"),
		testutil.CreateTestEdge("vs_b", "merge"),
		testutil.CreateTestEdge("merge", "rerank"),
	}

	return testutil.CreateTestNodeflow("retrieval", nodes, edges)
}

func TestExecuteRetrievalFlow(t *testing.T) {
	passthrough := &fakeFactory{typ: "start", run: func(input, _ map[string]any) (map[string]any, error) {
		return input, nil
	}}

	search := &fakeFactory{typ: "fake_search", run: func(input, _ map[string]any) (map[string]any, error) {
		return map[string]any{
			"documents": []any{map[string]any{"id": "doc-" + input["query"].(string)}},
		}, nil
	}}

	merge := &fakeFactory{typ: "fake_merge", run: func(input, _ map[string]any) (map[string]any, error) {
		first := input["first"].([]any)
		second := input["second"].([]any)

		return map[string]any{"documents": append(first, second...)}, nil
	}}

	rerank := &fakeFactory{typ: "fake_rerank", run: func(input, _ map[string]any) (map[string]any, error) {
		return map[string]any{"documents": input["documents"], "done": true}, nil
	}}

	bus := &recordingEventBus{}
	executor := NewExecutor(newTestRegistry(passthrough, search, merge, rerank), bus, slog.Default())

	result, err := executor.Execute(context.Background(), retrievalFlow(), map[string]any{"query": "q"})
	require.NoError(t, err)
	require.NotNil(t, result)

	rerankOutput := result.Outputs["rerank"]
	require.NotNil(t, rerankOutput)
	assert.Equal(t, true, rerankOutput["done"])
	assert.Len(t, rerankOutput["documents"], 2)

	types := bus.eventTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, events.NodeflowStartEvent, types[0])
	assert.Equal(t, events.NodeflowEndEvent, types[len(types)-1])

	// 1 flow start + 5 node starts + 5 node ends + 1 flow end.
	assert.Len(t, types, 12)

	starts := 0
	ends := 0

	for _, eventType := range types {
		switch eventType {
		case events.NodeStartEvent:
			starts++
		case events.NodeEndEvent:
			ends++
		}
	}

	assert.Equal(t, 5, starts)
	assert.Equal(t, 5, ends)
}

func TestExecuteUnregisteredNodeType(t *testing.T) {
	passthrough := &fakeFactory{typ: "start", run: func(input, _ map[string]any) (map[string]any, error) {
		return input, nil
	}}

	nodes := []*models.NodeInstance{
		testutil.CreateTestNode("start", "start"),
		testutil.CreateTestNode("mystery", "unknown_type"),
	}
	edges := []*models.Edge{testutil.CreateTestEdge("start", "mystery")}

	bus := &recordingEventBus{}
	executor := NewExecutor(newTestRegistry(passthrough), bus, slog.Default())

	_, err := executor.Execute(context.Background(), testutil.CreateTestNodeflow("bad", nodes, edges), nil)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	types := bus.eventTypes()
	assert.Equal(t, events.NodeflowErrorEvent, types[len(types)-1])
}

func TestExecuteRequiresSingleStartNode(t *testing.T) {
	passthrough := &fakeFactory{typ: "start", run: func(input, _ map[string]any) (map[string]any, error) {
		return input, nil
	}}

	nodes := []*models.NodeInstance{
		testutil.CreateTestNode("start_a", "start"),
		testutil.CreateTestNode("start_b", "start"),
	}

	executor := NewExecutor(newTestRegistry(passthrough), &recordingEventBus{}, slog.Default())

	_, err := executor.Execute(context.Background(), testutil.CreateTestNodeflow("two-starts", nodes, nil), nil)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestExecuteNodeFailureAbortsRun(t *testing.T) {
	passthrough := &fakeFactory{typ: "start", run: func(input, _ map[string]any) (map[string]any, error) {
		return input, nil
	}}

	failing := &fakeFactory{typ: "boom", run: func(_, _ map[string]any) (map[string]any, error) {
		return nil, errors.New("backend unavailable")
	}}

	downstream := &fakeFactory{typ: "after", run: func(input, _ map[string]any) (map[string]any, error) {
		t.Error("downstream node must not run after a failure")

		return input, nil
	}}

	nodes := []*models.NodeInstance{
		testutil.CreateTestNode("start", "start"),
		testutil.CreateTestNode("fails", "boom"),
		testutil.CreateTestNode("next", "after"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("start", "fails"),
		testutil.CreateTestEdge("fails", "next"),
	}

	bus := &recordingEventBus{}
	executor := NewExecutor(newTestRegistry(passthrough, failing, downstream), bus, slog.Default())

	_, err := executor.Execute(context.Background(), testutil.CreateTestNodeflow("failing", nodes, edges), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestExecuteGlobalsOverrideInputs(t *testing.T) {
	var observed map[string]any

	capture := &fakeFactory{typ: "start", run: func(input, _ map[string]any) (map[string]any, error) {
		observed = input

		return input, nil
	}}

	nodes := []*models.NodeInstance{
		testutil.CreateTestNode("start", "start",
			testutil.WithInputValues(map[string]any{"query": "static default"})),
	}

	executor := NewExecutor(newTestRegistry(capture), &recordingEventBus{}, slog.Default())

	_, err := executor.Execute(context.Background(), testutil.CreateTestNodeflow("override", nodes, nil),
		map[string]any{"query": "caller query"})
	require.NoError(t, err)
	assert.Equal(t, "caller query", observed["query"])
}
