package config

import (
	stderrors "errors"
	"testing"

	apperrors "creditrisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATA_PATH", "TEST_FRACTION", "SPLIT_SEED", "IMPUTE_STRATEGY", "OUTLIER_METHOD", "CLIP_COLUMNS", "DATABASE_URL", "API_PORT", "ARTIFACT_DIR", "LABEL_COLUMN"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "credit_risk", cfg.Data.LabelColumn)
	assert.Equal(t, 0.2, cfg.Split.TestFraction)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Equal(t, "median", cfg.Cleaning.ImputeStrategy)
	assert.Equal(t, "iqr", cfg.Cleaning.OutlierMethod)
	assert.Equal(t, []string{"age", "income", "credit_score"}, cfg.Cleaning.ClipColumns)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./artifacts", cfg.Paths.ArtifactDir)
	assert.False(t, cfg.HasDatabase())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEST_FRACTION", "0.25")
	t.Setenv("SPLIT_SEED", "7")
	t.Setenv("IMPUTE_STRATEGY", "mode")
	t.Setenv("CLIP_COLUMNS", " income , ,credit_score")
	t.Setenv("DATABASE_URL", "postgres://localhost/creditrisk?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Split.TestFraction)
	assert.Equal(t, int64(7), cfg.Split.Seed)
	assert.Equal(t, "mode", cfg.Cleaning.ImputeStrategy)
	assert.Equal(t, []string{"income", "credit_score"}, cfg.Cleaning.ClipColumns)
	assert.True(t, cfg.HasDatabase())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"fraction above one", "TEST_FRACTION", "1.5"},
		{"fraction zero", "TEST_FRACTION", "0"},
		{"fraction not a number", "TEST_FRACTION", "abc"},
		{"seed not an integer", "SPLIT_SEED", "4.2"},
		{"unknown strategy", "IMPUTE_STRATEGY", "knn"},
		{"unknown outlier method", "OUTLIER_METHOD", "zscore"},
		{"port not numeric", "API_PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, apperrors.ErrConfigInvalid))
		})
	}
}
