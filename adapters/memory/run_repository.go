// Package memory holds in-process implementations of the ports, used when
// no database is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/run"
	"creditrisk/internal/errors"
	"creditrisk/ports"
)

// RunRepository keeps run records in a map. Records are copied on the way
// in and out so callers cannot mutate the ledger.
type RunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*run.Record
}

var _ ports.RunRepository = (*RunRepository)(nil)

func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]*run.Record)}
}

func (r *RunRepository) Save(_ context.Context, record *run.Record) error {
	if record == nil || record.ID == "" {
		return errors.InvalidArgument("run record must have an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[record.ID] = copyRecord(record)
	return nil
}

func (r *RunRepository) Get(_ context.Context, id core.RunID) (*run.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.runs[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	return copyRecord(record), nil
}

func (r *RunRepository) List(_ context.Context, limit int) ([]*run.Record, error) {
	if limit <= 0 {
		limit = ports.DefaultListLimit
	}

	r.mu.RLock()
	records := make([]*run.Record, 0, len(r.runs))
	for _, record := range r.runs {
		records = append(records, copyRecord(record))
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *RunRepository) AttachMetrics(_ context.Context, id core.RunID, bundle metrics.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.runs[id]
	if !ok {
		return errors.NotFound(fmt.Sprintf("run %s", id))
	}
	record.AttachMetrics(bundle, time.Now())
	return nil
}

func copyRecord(r *run.Record) *run.Record {
	c := *r
	c.MissingColumns = append([]string{}, r.MissingColumns...)
	if r.ClippedColumns != nil {
		c.ClippedColumns = append([]string(nil), r.ClippedColumns...)
	}
	if r.Profiles != nil {
		c.Profiles = append(c.Profiles[:0:0], r.Profiles...)
	}
	if r.Metrics != nil {
		m := *r.Metrics
		c.Metrics = &m
	}
	if r.EvaluatedAt != nil {
		at := *r.EvaluatedAt
		c.EvaluatedAt = &at
	}
	c.Fingerprint.ClippedColumns = append([]string(nil), r.Fingerprint.ClippedColumns...)
	return &c
}
