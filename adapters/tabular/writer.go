package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"creditrisk/domain/table"
	"creditrisk/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WriteCSV serializes a table as CSV: a header row then one record per
// row, missing cells empty
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return errors.IOError("failed to write CSV header", err)
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			record[j] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return errors.IOError(fmt.Sprintf("failed to write CSV row %d", i+1), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.IOError("failed to flush CSV", err)
	}
	return nil
}

// WriteXLSX serializes a table to a single-sheet workbook at path.
// Numeric cells are written as numbers, everything else as text.
func WriteXLSX(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, t.NumCols())
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.IOError("failed to write Excel header", err)
	}

	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, t.NumCols())
		for j, v := range t.Row(i) {
			switch {
			case v.IsMissing():
				row[j] = nil
			case v.IsNumeric():
				row[j] = v.NumericVal
			default:
				row[j] = v.String()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.IOError("failed to address Excel row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.IOError(fmt.Sprintf("failed to write Excel row %d", i+1), err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}

// WriteFile writes a table to path, choosing the format by extension
func WriteFile(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOError(fmt.Sprintf("failed to create directory for %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, t)
	default:
		file, err := os.Create(path)
		if err != nil {
			return errors.IOError(fmt.Sprintf("failed to create %s", path), err)
		}
		if err := WriteCSV(file, t); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return errors.IOError(fmt.Sprintf("failed to close %s", path), err)
		}
		return nil
	}
}
