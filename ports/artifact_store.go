package ports

import (
	"context"

	"creditrisk/domain/artifact"
	"creditrisk/domain/core"
)

// ArtifactStore persists model artifacts
type ArtifactStore interface {
	Save(ctx context.Context, a *artifact.ModelArtifact) (string, error)
	Load(ctx context.Context, id core.ArtifactID) (*artifact.ModelArtifact, error)
	List(ctx context.Context) ([]core.ArtifactID, error)
	Delete(ctx context.Context, id core.ArtifactID) error
}
