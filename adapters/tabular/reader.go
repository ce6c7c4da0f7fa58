// Package tabular reads CSV, Excel and JSON-records files into tables and
// writes tables back as CSV or Excel.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"creditrisk/adapters/datareadiness/coercer"
	"creditrisk/domain/table"
	"creditrisk/internal/errors"
	"creditrisk/internal/logging"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Reader loads CSV and Excel files into typed tables
type Reader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  logging.Logger
}

// NewReader creates a reader for the given configuration
func NewReader(config ReaderConfig, logger logging.Logger) *Reader {
	return &Reader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logging.OrNop(logger),
	}
}

// Read loads the file at path. A missing file is a NOT_FOUND error; any
// other read or parse failure is an IO_ERROR.
func (r *Reader) Read(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			r.logger.Error("File not found: %s", path)
			return nil, errors.NotFound(fmt.Sprintf("data file %s", path))
		}
		return nil, errors.IOError(fmt.Sprintf("failed to stat %s", path), err)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = r.readExcelRows(path)
	case ".json":
		rows, err = r.readJSONRows(path)
	default:
		rows, err = r.readCSVRows(path)
	}
	if err != nil {
		r.logger.Error("Error loading data: %v", err)
		return nil, err
	}

	t, err := r.buildTable(rows)
	if err != nil {
		r.logger.Error("Error loading data: %v", err)
		return nil, err
	}

	r.logger.Info("Data loaded: %d rows, %d columns (%s, %.2fms)",
		t.NumRows(), t.NumCols(), filepath.Base(path), float64(time.Since(start).Microseconds())/1000)
	return t, nil
}

// readCSVRows reads every record of a CSV file
func (r *Reader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to open CSV file %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read CSV file %s", path), err)
	}
	return rows, nil
}

// readExcelRows reads the configured sheet, padding ragged rows to the
// header width
func (r *Reader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to open Excel file %s", path), err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	if len(rows) > 0 {
		width := len(rows[0])
		for i, row := range rows {
			if len(row) > width {
				return nil, errors.IOError(fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), width), nil)
			}
			for len(row) < width {
				row = append(row, "")
			}
			rows[i] = row
		}
	}
	return rows, nil
}

// buildTable converts raw string rows (header first) into a typed table.
// Declared columns must coerce cleanly; undeclared columns are typed by
// inference and fall back to categorical if any cell refuses the
// inferred type.
func (r *Reader) buildTable(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, errors.IOError("file is empty: no header row", nil)
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if !utf8.ValidString(name) {
			return nil, errors.IOError(fmt.Sprintf("header column %d is not valid UTF-8", i+1), nil)
		}
		header[i] = name
	}

	data := rows[1:]
	columns := make([]*table.Column, len(header))
	for j, name := range header {
		raw := make([]string, len(data))
		for i, row := range data {
			if !utf8.ValidString(row[j]) {
				return nil, errors.IOError(fmt.Sprintf("row %d column %q is not valid UTF-8", i+2, name), nil)
			}
			raw[i] = row[j]
		}

		col, err := r.buildColumn(name, raw)
		if err != nil {
			return nil, err
		}
		columns[j] = col
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, errors.IOError("malformed table", err)
	}
	return t, nil
}

func (r *Reader) buildColumn(name string, raw []string) (*table.Column, error) {
	typ, declared := r.config.Schema.TypeOf(name)
	if !declared {
		typ = r.coercer.AnalyzeTypeDistribution(raw).RecommendedType
	}

	values, row, err := r.coerceAll(raw, typ)
	if err == nil {
		return table.NewColumn(name, typ, values), nil
	}
	if declared {
		return nil, errors.IOError(fmt.Sprintf("row %d column %q", row+2, name), err)
	}

	r.logger.Debug("Column %q does not fit inferred type %s, reading as categorical: %v", name, typ, err)
	values, _, err = r.coerceAll(raw, table.ColumnCategorical)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("column %q", name), err)
	}
	return table.NewColumn(name, table.ColumnCategorical, values), nil
}

func (r *Reader) coerceAll(raw []string, typ table.ColumnType) ([]table.Value, int, error) {
	values := make([]table.Value, len(raw))
	for i, cell := range raw {
		v, err := r.coercer.Coerce(cell, typ)
		if err != nil {
			return nil, i, err
		}
		values[i] = v
	}
	return values, 0, nil
}
