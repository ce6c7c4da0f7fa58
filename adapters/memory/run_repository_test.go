package memory

import (
	"context"
	"testing"
	"time"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/run"
	apperrors "creditrisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	r := run.NewRecord("applicants.csv", core.NewHash([]byte("x")))
	r.ClippedColumns = []string{"income"}
	require.NoError(t, repo.Save(ctx, r))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.DataPath, got.DataPath)

	// Mutating the returned copy leaves the ledger alone.
	got.ClippedColumns[0] = "age"
	again, _ := repo.Get(ctx, r.ID)
	assert.Equal(t, []string{"income"}, again.ClippedColumns)
}

func TestGetUnknownRun(t *testing.T) {
	_, err := NewRunRepository().Get(context.Background(), core.NewRunID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	err := NewRunRepository().Save(context.Background(), &run.Record{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestListNewestFirst(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []core.RunID
	for i := 0; i < 3; i++ {
		r := run.NewRecord("a.csv", "h")
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, r))
		ids = append(ids, r.ID)
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAttachMetrics(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	r := run.NewRecord("a.csv", "h")
	require.NoError(t, repo.Save(ctx, r))

	require.NoError(t, repo.AttachMetrics(ctx, r.ID, metrics.Bundle{Accuracy: 0.8}))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusEvaluated, got.Status)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, 0.8, got.Metrics.Accuracy)
	assert.NotNil(t, got.EvaluatedAt)

	err = repo.AttachMetrics(ctx, core.NewRunID(), metrics.Bundle{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
