package app

import (
	"context"
	"fmt"

	"creditrisk/domain/artifact"
	"creditrisk/domain/core"
	"creditrisk/domain/run"
	"creditrisk/internal/errors"
	"creditrisk/internal/logging"
	"creditrisk/ports"
)

// PreprocessingKind marks artifacts that hold the statistics a run
// learned from its data
const PreprocessingKind = "preprocessing"

// ArtifactService stores and retrieves model artifacts
type ArtifactService struct {
	store  ports.ArtifactStore
	runs   ports.RunRepository
	logger logging.Logger
}

// NewArtifactService creates an artifact service
func NewArtifactService(store ports.ArtifactStore, runs ports.RunRepository, logger logging.Logger) *ArtifactService {
	return &ArtifactService{store: store, runs: runs, logger: logging.OrNop(logger)}
}

// Save validates and stores an artifact, returning where it was written
func (s *ArtifactService) Save(ctx context.Context, a *artifact.ModelArtifact) (string, error) {
	if err := a.Validate(); err != nil {
		return "", errors.InvalidArgument("invalid artifact: %v", err)
	}
	return s.store.Save(ctx, a)
}

// Load reads an artifact by ID
func (s *ArtifactService) Load(ctx context.Context, id core.ArtifactID) (*artifact.ModelArtifact, error) {
	return s.store.Load(ctx, id)
}

// List returns the stored artifact IDs
func (s *ArtifactService) List(ctx context.Context) ([]core.ArtifactID, error) {
	return s.store.List(ctx)
}

// Delete removes an artifact
func (s *ArtifactService) Delete(ctx context.Context, id core.ArtifactID) error {
	return s.store.Delete(ctx, id)
}

// ExportRun saves the column statistics of a prepared run as a
// preprocessing artifact: median, quartiles and mean per profiled column,
// plus the run's metrics when it has been evaluated
func (s *ArtifactService) ExportRun(ctx context.Context, runID core.RunID, name string) (*artifact.ModelArtifact, string, error) {
	record, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, "", err
	}
	if record.Status == run.StatusInvalid {
		return nil, "", errors.InvalidArgument("run %s failed validation and has nothing to export", runID)
	}
	if name == "" {
		name = fmt.Sprintf("run-%s", runID)
	}

	features := make([]string, 0, len(record.Profiles))
	params := make(map[string]float64, 4*len(record.Profiles))
	for _, p := range record.Profiles {
		features = append(features, p.Name)
		params[p.Name+".mean"] = p.Mean
		params[p.Name+".median"] = p.Median
		params[p.Name+".q1"] = p.Q1
		params[p.Name+".q3"] = p.Q3
	}

	a := artifact.NewModelArtifact(name, PreprocessingKind, features, params)
	a.RunID = record.ID
	a.Metrics = record.Metrics

	path, err := s.Save(ctx, a)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Exported run %s as artifact %s", runID, a.ID)
	return a, path, nil
}
