package validation

import (
	"context"
	"sync"

	"creditrisk/domain/table"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many files are loaded at once
const DefaultConcurrency = 4

// Loader reads one file into a table
type Loader interface {
	Read(path string) (*table.Table, error)
}

// FileReport is the outcome of loading and validating one file
type FileReport struct {
	Path    string   `json:"path"`
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
	Err     error    `json:"-"`
}

// OK reports whether the file loaded and passed validation
func (r FileReport) OK() bool {
	return r.Err == nil && r.Valid
}

// BatchValidator loads and validates many files with bounded concurrency
type BatchValidator struct {
	newLoader   func() Loader
	validator   *Validator
	concurrency int
}

// NewBatchValidator creates a batch validator. newLoader is called once per
// file so loaders never need to be shared across goroutines.
func NewBatchValidator(newLoader func() Loader, validator *Validator, concurrency int) *BatchValidator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &BatchValidator{newLoader: newLoader, validator: validator, concurrency: concurrency}
}

// ValidateFiles returns one report per path, in input order. A file that
// fails to load is recorded in its report; only context cancellation
// stops the batch early.
func (b *BatchValidator) ValidateFiles(ctx context.Context, paths []string, required []string) ([]FileReport, error) {
	reports := make([]FileReport, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := FileReport{Path: path}
			t, err := b.newLoader().Read(path)
			if err != nil {
				report.Err = err
			} else {
				report.Rows, report.Columns = t.NumRows(), t.NumCols()
				report.Valid, report.Missing = b.validator.Validate(t, required)
			}

			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
