package ports

import (
	"context"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/run"
)

// DefaultListLimit caps List when the caller passes no limit
const DefaultListLimit = 20

// RunRepository is the run ledger: one record per pipeline execution
type RunRepository interface {
	Save(ctx context.Context, record *run.Record) error
	Get(ctx context.Context, id core.RunID) (*run.Record, error)
	// List returns the most recent records first
	List(ctx context.Context, limit int) ([]*run.Record, error)
	AttachMetrics(ctx context.Context, id core.RunID, bundle metrics.Bundle) error
}
