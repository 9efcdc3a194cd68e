package protocol

import "context"

// TaskScheduler dispatches index build work to an asynchronous execution
// substrate. All three calls are fire-and-forget: completion is reported back
// exclusively through the reconciler callbacks, never through a return value.
//
// taskContext carries "<INDEX_TYPE>_version" entries naming the desired-state
// generation each task targets, so completion callbacks can reject stale
// acknowledgements.
type TaskScheduler interface {
	ScheduleCreateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error
	ScheduleUpdateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error
	ScheduleDeleteIndex(ctx context.Context, documentID string, indexTypes []string) error
}
