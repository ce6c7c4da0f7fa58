// Package ingestion is the stateful entry point for loading, validating
// and splitting one credit applicant file.
package ingestion

import (
	"creditrisk/adapters/tabular"
	"creditrisk/domain/table"
	"creditrisk/internal/logging"
	"creditrisk/internal/split"
	"creditrisk/internal/validation"
)

// Options configures a Session. Zero values take the defaults.
type Options struct {
	TestFraction float64
	Seed         *int64
	LabelColumn  string
	Reader       tabular.ReaderConfig
}

// Session holds a data path and the last table loaded from it. Load,
// Validate and TrainTestSplit load the file on first use. A Session is
// not safe for concurrent use.
type Session struct {
	path         string
	testFraction float64
	seed         int64
	label        string

	reader    *tabular.Reader
	validator *validation.Validator
	logger    logging.Logger

	data *table.Table
}

// NewSession creates a session for the file at path
func NewSession(path string, opts Options, logger logging.Logger) *Session {
	logger = logging.OrNop(logger)

	s := &Session{
		path:         path,
		testFraction: split.DefaultTestFraction,
		seed:         split.DefaultSeed,
		label:        table.LabelColumn,
		validator:    validation.NewValidator(logger),
		logger:       logger,
	}
	if opts.TestFraction != 0 {
		s.testFraction = opts.TestFraction
	}
	if opts.Seed != nil {
		s.seed = *opts.Seed
	}
	if opts.LabelColumn != "" {
		s.label = opts.LabelColumn
	}

	readerConfig := opts.Reader
	if readerConfig.Schema == nil {
		readerConfig = tabular.DefaultReaderConfig()
	}
	s.reader = tabular.NewReader(readerConfig, logger)
	return s
}

// Path returns the data path
func (s *Session) Path() string { return s.path }

// TestFraction returns the share of rows held out for testing
func (s *Session) TestFraction() float64 { return s.testFraction }

// Seed returns the split seed
func (s *Session) Seed() int64 { return s.seed }

// LabelColumn returns the column the split stratifies on
func (s *Session) LabelColumn() string { return s.label }

// Data returns the cached table, or nil before the first load
func (s *Session) Data() *table.Table { return s.data }

// Load reads the file and replaces the cached table. On error the
// previous cache is kept.
func (s *Session) Load() (*table.Table, error) {
	t, err := s.reader.Read(s.path)
	if err != nil {
		return nil, err
	}
	s.data = t
	return t, nil
}

func (s *Session) ensureLoaded() (*table.Table, error) {
	if s.data != nil {
		return s.data, nil
	}
	return s.Load()
}

// Validate checks the cached table for the required columns
func (s *Session) Validate(required []string) (bool, []string, error) {
	t, err := s.ensureLoaded()
	if err != nil {
		return false, nil, err
	}
	if required == nil {
		required = table.RequiredColumns
	}
	valid, missing := s.validator.Validate(t, required)
	return valid, missing, nil
}

// TrainTestSplit splits the cached table on the label column
func (s *Session) TrainTestSplit() (*split.Result, error) {
	t, err := s.ensureLoaded()
	if err != nil {
		return nil, err
	}
	res, err := split.Split(t, s.label, s.testFraction, s.seed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Split %d rows into %d train and %d test (test fraction %.2f, seed %d)",
		t.NumRows(), res.Train.Len(), res.Test.Len(), s.testFraction, s.seed)
	return res, nil
}
