package cmd

import (
	"context"
	"log/slog"

	"github.com/promoteai/superrag/pkg/registry"
)

func registerRunnerPlugins(ctx context.Context, reg *registry.Registry, pluginsPath string) {
	runnerPlugins, err := reg.LoadRunnerPlugins(pluginsPath)
	if err != nil {
		panic(err)
	}

	for _, plugin := range runnerPlugins {
		reg.RegisterRunner(plugin)
	}
}

// NewRegistry creates a runner registry with the native node set plus any
// runner plugins found under pluginsPath.
func NewRegistry(ctx context.Context, log *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(log)

	if pluginsPath != "" {
		registerRunnerPlugins(ctx, reg, pluginsPath)
	}

	reg.RegisterDefaultRunners()

	return reg
}
