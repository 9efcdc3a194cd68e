package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/protocol"
	"github.com/promoteai/superrag/pkg/scheduler"
)

// NewTaskScheduler creates the index task scheduler for a provider name.
// "eventbus" publishes IndexTaskRequested events on the given bus; "redis"
// produces onto a Redis stream at redisURL.
func NewTaskScheduler(ctx context.Context, provider string, logger *slog.Logger, bus eventbus.EventBus, redisURL string) (protocol.TaskScheduler, error) {
	switch provider {
	case "eventbus":
		return scheduler.NewEventBusScheduler(bus, logger), nil
	case "redis":
		return scheduler.NewRedisScheduler(ctx, logger, redisURL, "")
	default:
		return nil, fmt.Errorf("unsupported task scheduler provider: %s", provider)
	}
}
