// Package registry provides node runner factory registration. The registry
// is an explicitly constructed object owned by the process composition root
// and handed to the engine by reference; there is no package-level table.
package registry

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"strings"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	runnerFactories map[string]protocol.RunnerFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		runnerFactories: make(map[string]protocol.RunnerFactory),
	}
}

// RegisterRunner registers a runner factory under its type tag. Later
// registrations of the same tag win.
func (r *Registry) RegisterRunner(factory protocol.RunnerFactory) {
	r.runnerFactories[factory.ID()] = factory
}

// RunnerFactory returns the factory registered for a node type.
func (r *Registry) RunnerFactory(nodeType string) (protocol.RunnerFactory, bool) {
	factory, ok := r.runnerFactories[nodeType]

	return factory, ok
}

// CreateRunner instantiates a runner for a node instance. An unregistered
// node type is a ValidationError, surfaced to the engine's caller.
func (r *Registry) CreateRunner(ctx context.Context, nodeType, nodeID string, config map[string]any) (protocol.NodeRunner, error) {
	factory, ok := r.runnerFactories[nodeType]
	if !ok {
		return nil, models.NewValidationError(nodeID, "node type '"+nodeType+"' not registered", nil)
	}

	return factory.Create(ctx, nodeID, config)
}

// AvailableRunners returns all registered runner factories.
func (r *Registry) AvailableRunners() []protocol.RunnerFactory {
	factories := make([]protocol.RunnerFactory, 0, len(r.runnerFactories))
	for _, factory := range r.runnerFactories {
		factories = append(factories, factory)
	}

	return factories
}

// LoadRunnerPlugins loads runner factories from .so plugins under
// pluginsPath/runners, each exporting a Runner symbol.
func (r *Registry) LoadRunnerPlugins(pluginsPath string) ([]protocol.RunnerFactory, error) {
	return loadPlugin[protocol.RunnerFactory](r.logger, pluginsPath, "Runner")
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/" + strings.ToLower(symbolName) + "s"
	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			panic(err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			panic(err)
		}

		castV, ok := v.(T)
		if !ok {
			panic("Could not cast plugin")
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded runner plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
