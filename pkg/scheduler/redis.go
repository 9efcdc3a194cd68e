package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/promoteai/superrag/pkg/models"
)

const defaultTaskStream = "superrag:index:tasks"

// RedisScheduler dispatches index tasks onto a Redis stream. Index workers
// consume the stream through a consumer group; this side only produces.
type RedisScheduler struct {
	client redis.UniversalClient
	stream string
	logger *slog.Logger
}

type redisTask struct {
	ID          string           `json:"id"`
	DocumentID  string           `json:"document_id"`
	Action      string           `json:"action"`
	IndexTypes  []string         `json:"index_types"`
	TaskContext map[string]int64 `json:"task_context,omitempty"`
	Timestamp   string           `json:"timestamp"`
}

func NewRedisScheduler(ctx context.Context, logger *slog.Logger, redisURL, stream string) (*RedisScheduler, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if stream == "" {
		stream = defaultTaskStream
	}

	return &RedisScheduler{
		client: client,
		stream: stream,
		logger: logger.With("module", "scheduler", "stream", stream),
	}, nil
}

func (s *RedisScheduler) ScheduleCreateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	return s.enqueue(ctx, documentID, models.IndexActionCreate, indexTypes, taskContext)
}

func (s *RedisScheduler) ScheduleUpdateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	return s.enqueue(ctx, documentID, models.IndexActionUpdate, indexTypes, taskContext)
}

func (s *RedisScheduler) ScheduleDeleteIndex(ctx context.Context, documentID string, indexTypes []string) error {
	return s.enqueue(ctx, documentID, models.IndexActionDelete, indexTypes, nil)
}

func (s *RedisScheduler) enqueue(ctx context.Context, documentID string, action models.IndexAction, indexTypes []string, taskContext map[string]int64) error {
	task := redisTask{
		ID:          uuid.New().String(),
		DocumentID:  documentID,
		Action:      string(action),
		IndexTypes:  indexTypes,
		TaskContext: taskContext,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal index task: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"task": string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue index task for document %s: %w", documentID, err)
	}

	s.logger.InfoContext(ctx, "Enqueued index task",
		"document_id", documentID,
		"action", action,
		"index_types", indexTypes)

	return nil
}

func (s *RedisScheduler) Close() error {
	return s.client.Close()
}
