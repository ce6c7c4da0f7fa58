// Package run describes one execution of the data preparation pipeline.
package run

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/profile"
)

// Status is the outcome of a run
type Status string

const (
	StatusPrepared  Status = "prepared"  // loaded, cleaned and split
	StatusInvalid   Status = "invalid"   // required columns missing
	StatusEvaluated Status = "evaluated" // metrics attached
)

// Record is the ledger entry for one pipeline run
type Record struct {
	ID             core.RunID `json:"id"`
	Status         Status     `json:"status"`
	DataPath       string     `json:"data_path"`
	DataHash       core.Hash  `json:"data_hash"`
	Rows           int        `json:"rows"`
	Columns        int        `json:"columns"`
	Valid          bool       `json:"valid"`
	MissingColumns []string   `json:"missing_columns"`
	ImputeStrategy string     `json:"impute_strategy,omitempty"`
	OutlierMethod  string     `json:"outlier_method,omitempty"`
	ClippedColumns []string   `json:"clipped_columns,omitempty"`
	Seed           int64      `json:"seed"`
	TestFraction   float64    `json:"test_fraction"`
	TrainRows      int        `json:"train_rows"`
	TestRows       int        `json:"test_rows"`

	Profiles    []profile.ColumnProfile `json:"profiles,omitempty"`
	Metrics     *metrics.Bundle         `json:"metrics,omitempty"`
	Fingerprint Fingerprint             `json:"fingerprint"`

	CreatedAt   time.Time  `json:"created_at"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
}

// NewRecord starts a record for a data file
func NewRecord(dataPath string, dataHash core.Hash) *Record {
	return &Record{
		ID:             core.NewRunID(),
		DataPath:       dataPath,
		DataHash:       dataHash,
		MissingColumns: []string{},
		CreatedAt:      time.Now().UTC(),
	}
}

// AttachMetrics stores an evaluation result on the record
func (r *Record) AttachMetrics(b metrics.Bundle, at time.Time) {
	r.Metrics = &b
	at = at.UTC()
	r.EvaluatedAt = &at
	r.Status = StatusEvaluated
}

// Fingerprint identifies the inputs that determine a run's output, so two
// runs with equal fingerprints produce identical partitions
type Fingerprint struct {
	DataHash       core.Hash `json:"data_hash"`
	ImputeStrategy string    `json:"impute_strategy"`
	OutlierMethod  string    `json:"outlier_method"`
	ClippedColumns []string  `json:"clipped_columns"`
	Seed           int64     `json:"seed"`
	TestFraction   float64   `json:"test_fraction"`
	CodeVersion    string    `json:"code_version"`
	Hash           core.Hash `json:"hash"` // Hash of all above
}

// NewFingerprint creates a fingerprint from the determinism parameters
func NewFingerprint(dataHash core.Hash, strategy, method string, clipped []string,
	seed int64, testFraction float64, codeVersion string) Fingerprint {

	return Fingerprint{
		DataHash:       dataHash,
		ImputeStrategy: strategy,
		OutlierMethod:  method,
		ClippedColumns: clipped,
		Seed:           seed,
		TestFraction:   testFraction,
		CodeVersion:    codeVersion,
		Hash:           computeFingerprint(dataHash, strategy, method, clipped, seed, testFraction, codeVersion),
	}
}

// computeFingerprint generates a deterministic hash from all determinism parameters
func computeFingerprint(dataHash core.Hash, strategy, method string, clipped []string,
	seed int64, testFraction float64, codeVersion string) core.Hash {

	data := fmt.Sprintf("data:%s|impute:%s|outliers:%s|clip:%s|seed:%d|test:%g|code:%s",
		dataHash, strategy, method, strings.Join(clipped, ","), seed, testFraction, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
