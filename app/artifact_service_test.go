package app

import (
	"context"
	"testing"

	artifactstore "creditrisk/adapters/artifact"
	"creditrisk/domain/artifact"
	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/profile"
	"creditrisk/domain/run"
	apperrors "creditrisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newArtifactService(t *testing.T, repo *MockRunRepository) *ArtifactService {
	t.Helper()
	store, err := artifactstore.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	return NewArtifactService(store, repo, nil)
}

func TestArtifactServiceLifecycle(t *testing.T) {
	svc := newArtifactService(t, &MockRunRepository{})
	ctx := context.Background()

	a := artifact.NewModelArtifact("baseline", "logistic_regression", []string{"age", "income"},
		map[string]float64{"intercept": -1.2, "age": 0.03})
	_, err := svc.Save(ctx, a)
	require.NoError(t, err)

	got, err := svc.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Parameters, got.Parameters)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ArtifactID{a.ID}, ids)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Load(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArtifactServiceRejectsIncomplete(t *testing.T) {
	_, err := newArtifactService(t, &MockRunRepository{}).Save(context.Background(), &artifact.ModelArtifact{ID: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestExportRun(t *testing.T) {
	record := run.NewRecord("a.csv", "h")
	record.Status = run.StatusEvaluated
	record.Profiles = []profile.ColumnProfile{{Name: "age", Mean: 40, Median: 39, Q1: 30, Q3: 50}}
	record.Metrics = &metrics.Bundle{ROCAUC: 0.7}

	repo := &MockRunRepository{}
	repo.On("Get", mock.Anything, record.ID).Return(record, nil)
	svc := newArtifactService(t, repo)

	a, path, err := svc.ExportRun(context.Background(), record.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Equal(t, PreprocessingKind, a.Kind)
	assert.Equal(t, "run-"+record.ID.String(), a.Name)
	assert.Equal(t, record.ID, a.RunID)
	assert.Equal(t, []string{"age"}, a.Features)
	assert.Equal(t, 39.0, a.Parameters["age.median"])
	require.NotNil(t, a.Metrics)
	assert.Equal(t, 0.7, a.Metrics.ROCAUC)
}

func TestExportInvalidRun(t *testing.T) {
	record := run.NewRecord("a.csv", "h")
	record.Status = run.StatusInvalid
	repo := &MockRunRepository{}
	repo.On("Get", mock.Anything, record.ID).Return(record, nil)

	_, _, err := newArtifactService(t, repo).ExportRun(context.Background(), record.ID, "x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
