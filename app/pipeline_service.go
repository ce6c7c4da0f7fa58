// Package app orchestrates the pipeline components into the use cases
// exposed by the CLI and the API.
package app

import (
	"context"
	"fmt"
	"os"

	"creditrisk/adapters/tabular"
	"creditrisk/domain/core"
	"creditrisk/domain/run"
	"creditrisk/domain/table"
	"creditrisk/internal/cleaning"
	"creditrisk/internal/errors"
	"creditrisk/internal/ingestion"
	"creditrisk/internal/logging"
	"creditrisk/internal/profiling"
	"creditrisk/internal/split"
	"creditrisk/ports"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "creditrisk/1"

// PipelineService runs load, validate, clean and split for one data file
// and records the run in the ledger
type PipelineService struct {
	runs     ports.RunRepository
	reader   tabular.ReaderConfig
	profiler *profiling.DataProfiler
	logger   logging.Logger
}

// PrepareRequest defines the inputs of one pipeline run. An empty
// ImputeStrategy or OutlierMethod skips that step.
type PrepareRequest struct {
	DataPath       string
	Required       []string // nil means table.RequiredColumns
	LabelColumn    string
	ImputeStrategy string
	OutlierMethod  string
	ClipColumns    []string
	TestFraction   float64
	Seed           *int64
	RequireValid   bool
}

// PrepareResult is the output of a run. Split is nil when validation
// failed.
type PrepareResult struct {
	Record  *run.Record
	Cleaned *table.Table
	Split   *split.Result
}

// NewPipelineService creates a pipeline service
func NewPipelineService(runs ports.RunRepository, reader tabular.ReaderConfig, logger logging.Logger) *PipelineService {
	if reader.Schema == nil {
		reader = tabular.DefaultReaderConfig()
	}
	return &PipelineService{
		runs:     runs,
		reader:   reader,
		profiler: profiling.NewDataProfiler(),
		logger:   logging.OrNop(logger),
	}
}

// Prepare executes a full pipeline run
func (s *PipelineService) Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	if req.DataPath == "" {
		return nil, errors.InvalidArgument("data path is required")
	}

	session := ingestion.NewSession(req.DataPath, ingestion.Options{
		TestFraction: req.TestFraction,
		Seed:         req.Seed,
		LabelColumn:  req.LabelColumn,
		Reader:       s.reader,
	}, s.logger)

	data, err := session.Load()
	if err != nil {
		return nil, err
	}
	hash, err := fileHash(req.DataPath)
	if err != nil {
		return nil, err
	}

	record := run.NewRecord(req.DataPath, hash)
	record.Rows = data.NumRows()
	record.Columns = data.NumCols()
	record.TestFraction = session.TestFraction()
	record.Seed = session.Seed()

	profiles, err := s.profiler.ProfileTable(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to profile data")
	}
	record.Profiles = profiles

	valid, missing, err := session.Validate(req.Required)
	if err != nil {
		return nil, err
	}
	record.Valid = valid
	record.MissingColumns = missing

	if !valid {
		record.Status = run.StatusInvalid
		if err := s.runs.Save(ctx, record); err != nil {
			return nil, err
		}
		if req.RequireValid {
			return nil, errors.SchemaError(fmt.Sprintf("run %s: missing required columns %v", record.ID, missing))
		}
		return &PrepareResult{Record: record, Cleaned: data}, nil
	}

	cleaned, err := s.clean(data, req, record)
	if err != nil {
		return nil, err
	}

	res, err := split.Split(cleaned, session.LabelColumn(), record.TestFraction, record.Seed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Split %d rows into %d train and %d test (test fraction %.2f, seed %d)",
		cleaned.NumRows(), res.Train.Len(), res.Test.Len(), record.TestFraction, record.Seed)

	record.TrainRows = res.Train.Len()
	record.TestRows = res.Test.Len()
	record.Status = run.StatusPrepared
	record.Fingerprint = run.NewFingerprint(hash, record.ImputeStrategy, record.OutlierMethod,
		record.ClippedColumns, record.Seed, record.TestFraction, CodeVersion)

	if err := s.runs.Save(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Recorded run %s", record.ID)

	return &PrepareResult{Record: record, Cleaned: cleaned, Split: res}, nil
}

func (s *PipelineService) clean(data *table.Table, req PrepareRequest, record *run.Record) (*table.Table, error) {
	cleaner := cleaning.NewCleaner(s.reader.Schema, s.logger)
	out := data

	if req.ImputeStrategy != "" {
		strategy, err := cleaning.ParseStrategy(req.ImputeStrategy)
		if err != nil {
			return nil, err
		}
		if out, err = cleaner.Impute(out, strategy); err != nil {
			return nil, err
		}
		record.ImputeStrategy = string(strategy)
	}

	if req.OutlierMethod != "" && len(req.ClipColumns) > 0 {
		method, err := cleaning.ParseMethod(req.OutlierMethod)
		if err != nil {
			return nil, err
		}
		if out, err = cleaner.ClipOutliers(out, req.ClipColumns, method); err != nil {
			return nil, err
		}
		record.OutlierMethod = string(method)
		record.ClippedColumns = append([]string(nil), req.ClipColumns...)
	}
	return out, nil
}

func fileHash(path string) (core.Hash, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.IOError(fmt.Sprintf("failed to hash %s", path), err)
	}
	return core.NewHash(raw), nil
}
