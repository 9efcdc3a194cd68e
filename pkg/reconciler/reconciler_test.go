package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/mocks"
	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence/memory"
)

func newTestReconciler(t *testing.T) (*Reconciler, *memory.Repository, *mocks.MockTaskScheduler) {
	t.Helper()

	repo := memory.NewRepository(slog.Default())
	scheduler := &mocks.MockTaskScheduler{}

	return NewReconciler(repo, scheduler, slog.Default()), repo, scheduler
}

func TestReconcileAllDispatchesBatchedCreate(t *testing.T) {
	reconciler, repo, scheduler := newTestReconciler(t)
	ctx := context.Background()

	_, err := repo.DeclareIndex(ctx, "doc-1", "VECTOR")
	require.NoError(t, err)
	_, err = repo.DeclareIndex(ctx, "doc-1", "GRAPH")
	require.NoError(t, err)

	scheduler.On("ScheduleCreateIndex", mock.Anything, "doc-1",
		mock.MatchedBy(func(indexTypes []string) bool {
			return len(indexTypes) == 2
		}),
		map[string]int64{"VECTOR_version": 1, "GRAPH_version": 1},
	).Return(nil).Once()

	summary, err := reconciler.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocumentsSeen)
	assert.Equal(t, 1, summary.DocumentsDispatched)
	assert.Equal(t, 2, summary.IndexesClaimed)
	assert.Equal(t, 0, summary.DocumentsFailed)

	scheduler.AssertExpectations(t)

	// Both records moved to CREATING by the claim.
	for _, indexType := range []string{"VECTOR", "GRAPH"} {
		record, err := repo.GetIndexRecord(ctx, "doc-1", indexType)
		require.NoError(t, err)
		assert.Equal(t, models.IndexStatusCreating, record.Status)
	}
}

func TestReconcileAllSecondPassIsNoop(t *testing.T) {
	reconciler, repo, scheduler := newTestReconciler(t)
	ctx := context.Background()

	_, err := repo.DeclareIndex(ctx, "doc-1", "VECTOR")
	require.NoError(t, err)

	scheduler.On("ScheduleCreateIndex", mock.Anything, "doc-1", mock.Anything, mock.Anything).
		Return(nil).Once()

	_, err = reconciler.ReconcileAll(ctx)
	require.NoError(t, err)

	// CREATING records classify as nothing-to-do: second pass sees no work.
	summary, err := reconciler.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DocumentsSeen)
	assert.Equal(t, 0, summary.IndexesClaimed)
	scheduler.AssertNumberOfCalls(t, "ScheduleCreateIndex", 1)
}

func TestReconcileAllDispatchesUpdateAndDeleteSeparately(t *testing.T) {
	reconciler, repo, scheduler := newTestReconciler(t)
	ctx := context.Background()

	// VECTOR needs an update (version 2), GRAPH needs deletion.
	_, err := repo.DeclareIndex(ctx, "doc-1", "VECTOR")
	require.NoError(t, err)
	_, err = repo.DeclareIndex(ctx, "doc-1", "VECTOR")
	require.NoError(t, err)
	_, err = repo.DeclareIndex(ctx, "doc-1", "GRAPH")
	require.NoError(t, err)
	require.NoError(t, repo.MarkIndexDeleting(ctx, "doc-1", "GRAPH"))

	scheduler.On("ScheduleUpdateIndex", mock.Anything, "doc-1", []string{"VECTOR"},
		map[string]int64{"VECTOR_version": 2}).Return(nil).Once()
	scheduler.On("ScheduleDeleteIndex", mock.Anything, "doc-1", []string{"GRAPH"}).
		Return(nil).Once()

	summary, err := reconciler.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.IndexesClaimed)
	scheduler.AssertExpectations(t)
}

func TestReconcileAllIsolatesDocumentFailures(t *testing.T) {
	reconciler, repo, scheduler := newTestReconciler(t)
	ctx := context.Background()

	_, err := repo.DeclareIndex(ctx, "doc-a", "VECTOR")
	require.NoError(t, err)
	_, err = repo.DeclareIndex(ctx, "doc-b", "VECTOR")
	require.NoError(t, err)

	scheduler.On("ScheduleCreateIndex", mock.Anything, "doc-a", mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()
	scheduler.On("ScheduleCreateIndex", mock.Anything, "doc-b", mock.Anything, mock.Anything).
		Return(nil).Once()

	summary, err := reconciler.ReconcileAll(ctx)
	require.NoError(t, err, "one document's failure must not fail the pass")

	assert.Equal(t, 2, summary.DocumentsSeen)
	assert.Equal(t, 1, summary.DocumentsDispatched)
	assert.Equal(t, 1, summary.DocumentsFailed)
	scheduler.AssertExpectations(t)
}

func TestReconcileAllEmptyRepository(t *testing.T) {
	reconciler, _, scheduler := newTestReconciler(t)

	summary, err := reconciler.ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DocumentsSeen)
	scheduler.AssertNotCalled(t, "ScheduleCreateIndex")
}

func TestBuildPlansGroupsByDocumentAndAction(t *testing.T) {
	records := []*models.DocumentIndexRecord{
		{DocumentID: "doc-1", IndexType: "VECTOR", Status: models.IndexStatusPending, Version: 1},
		{DocumentID: "doc-1", IndexType: "GRAPH", Status: models.IndexStatusPending, Version: 2, ObservedVersion: 1},
		{DocumentID: "doc-2", IndexType: "VECTOR", Status: models.IndexStatusDeleting, Version: 1},
		{DocumentID: "doc-3", IndexType: "VECTOR", Status: models.IndexStatusActive, Version: 1, ObservedVersion: 1},
	}

	plans := buildPlans(records)
	require.Len(t, plans, 2, "doc-3 has nothing to do")

	assert.Equal(t, "doc-1", plans[0].documentID)
	assert.Len(t, plans[0].requests[models.IndexActionCreate], 1)
	assert.Len(t, plans[0].requests[models.IndexActionUpdate], 1)

	assert.Equal(t, "doc-2", plans[1].documentID)
	assert.Len(t, plans[1].requests[models.IndexActionDelete], 1)
}
