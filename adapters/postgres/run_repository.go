package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/profile"
	"creditrisk/domain/run"
	"creditrisk/internal/errors"
	"creditrisk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// JSONB stores any JSON-encodable value in a JSONB column. A nil V is NULL.
type JSONB[T any] struct {
	V *T
}

// Value implements driver.Valuer interface
func (j JSONB[T]) Value() (driver.Value, error) {
	if j.V == nil {
		return nil, nil
	}
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONB[T]) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		j.V = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}

	if len(raw) == 0 {
		j.V = nil
		return nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	j.V = &out
	return nil
}

// runRow is the pipeline_runs row layout
type runRow struct {
	ID             string                         `db:"id"`
	Status         string                         `db:"status"`
	DataPath       string                         `db:"data_path"`
	DataHash       string                         `db:"data_hash"`
	Rows           int                            `db:"n_rows"`
	Columns        int                            `db:"n_columns"`
	Valid          bool                           `db:"valid"`
	MissingColumns pq.StringArray                 `db:"missing_columns"`
	ImputeStrategy string                         `db:"impute_strategy"`
	OutlierMethod  string                         `db:"outlier_method"`
	ClippedColumns pq.StringArray                 `db:"clipped_columns"`
	Seed           int64                          `db:"seed"`
	TestFraction   float64                        `db:"test_fraction"`
	TrainRows      int                            `db:"train_rows"`
	TestRows       int                            `db:"test_rows"`
	Profiles       JSONB[[]profile.ColumnProfile] `db:"profiles"`
	Metrics        JSONB[metrics.Bundle]          `db:"metrics"`
	Fingerprint    JSONB[run.Fingerprint]         `db:"fingerprint"`
	CreatedAt      time.Time                      `db:"created_at"`
	EvaluatedAt    *time.Time                     `db:"evaluated_at"`
}

const runColumns = `id, status, data_path, data_hash, n_rows, n_columns, valid, missing_columns,
	impute_strategy, outlier_method, clipped_columns, seed, test_fraction, train_rows, test_rows,
	profiles, metrics, fingerprint, created_at, evaluated_at`

func toRow(r *run.Record) runRow {
	row := runRow{
		ID:             r.ID.String(),
		Status:         string(r.Status),
		DataPath:       r.DataPath,
		DataHash:       r.DataHash.String(),
		Rows:           r.Rows,
		Columns:        r.Columns,
		Valid:          r.Valid,
		MissingColumns: pq.StringArray(nonNil(r.MissingColumns)),
		ImputeStrategy: r.ImputeStrategy,
		OutlierMethod:  r.OutlierMethod,
		ClippedColumns: pq.StringArray(nonNil(r.ClippedColumns)),
		Seed:           r.Seed,
		TestFraction:   r.TestFraction,
		TrainRows:      r.TrainRows,
		TestRows:       r.TestRows,
		Metrics:        JSONB[metrics.Bundle]{V: r.Metrics},
		Fingerprint:    JSONB[run.Fingerprint]{V: &r.Fingerprint},
		CreatedAt:      r.CreatedAt,
		EvaluatedAt:    r.EvaluatedAt,
	}
	if len(r.Profiles) > 0 {
		row.Profiles = JSONB[[]profile.ColumnProfile]{V: &r.Profiles}
	}
	return row
}

func (row runRow) toRecord() *run.Record {
	r := &run.Record{
		ID:             core.RunID(row.ID),
		Status:         run.Status(row.Status),
		DataPath:       row.DataPath,
		DataHash:       core.Hash(row.DataHash),
		Rows:           row.Rows,
		Columns:        row.Columns,
		Valid:          row.Valid,
		MissingColumns: nonNil(row.MissingColumns),
		ImputeStrategy: row.ImputeStrategy,
		OutlierMethod:  row.OutlierMethod,
		ClippedColumns: []string(row.ClippedColumns),
		Seed:           row.Seed,
		TestFraction:   row.TestFraction,
		TrainRows:      row.TrainRows,
		TestRows:       row.TestRows,
		Metrics:        row.Metrics.V,
		CreatedAt:      row.CreatedAt.UTC(),
	}
	if len(r.ClippedColumns) == 0 {
		r.ClippedColumns = nil
	}
	if row.Profiles.V != nil {
		r.Profiles = *row.Profiles.V
	}
	if row.Fingerprint.V != nil {
		r.Fingerprint = *row.Fingerprint.V
	}
	if row.EvaluatedAt != nil {
		at := row.EvaluatedAt.UTC()
		r.EvaluatedAt = &at
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RunRepository implements ports.RunRepository for PostgreSQL
type RunRepository struct {
	db *sqlx.DB
}

var _ ports.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new PostgreSQL run ledger
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts the record, or replaces it when the ID already exists
func (r *RunRepository) Save(ctx context.Context, record *run.Record) error {
	row := toRow(record)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			valid = EXCLUDED.valid,
			missing_columns = EXCLUDED.missing_columns,
			train_rows = EXCLUDED.train_rows,
			test_rows = EXCLUDED.test_rows,
			profiles = EXCLUDED.profiles,
			metrics = EXCLUDED.metrics,
			evaluated_at = EXCLUDED.evaluated_at
	`, row.ID, row.Status, row.DataPath, row.DataHash, row.Rows, row.Columns, row.Valid, row.MissingColumns,
		row.ImputeStrategy, row.OutlierMethod, row.ClippedColumns, row.Seed, row.TestFraction, row.TrainRows, row.TestRows,
		row.Profiles, row.Metrics, row.Fingerprint, row.CreatedAt, row.EvaluatedAt)
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to save run %s", record.ID), err)
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*run.Record, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("run %s", id))
		}
		return nil, errors.DatabaseError(fmt.Sprintf("failed to get run %s", id), err)
	}
	return row.toRecord(), nil
}

// List returns the most recent runs first
func (r *RunRepository) List(ctx context.Context, limit int) ([]*run.Record, error) {
	if limit <= 0 {
		limit = ports.DefaultListLimit
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+runColumns+`
		FROM pipeline_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	records := make([]*run.Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

// AttachMetrics stores an evaluation result on an existing run
func (r *RunRepository) AttachMetrics(ctx context.Context, id core.RunID, bundle metrics.Bundle) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pipeline_runs
		SET metrics = $2, evaluated_at = $3, status = $4
		WHERE id = $1
	`, id.String(), JSONB[metrics.Bundle]{V: &bundle}, time.Now().UTC(), string(run.StatusEvaluated))
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to attach metrics to run %s", id), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to read affected rows", err)
	}
	if n == 0 {
		return errors.NotFound(fmt.Sprintf("run %s", id))
	}
	return nil
}
