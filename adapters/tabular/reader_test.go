package tabular

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creditrisk/domain/table"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applicantsCSV = `credit_risk,age,income,credit_score,home_ownership,has_guarantor
0,34,52000,710,rent,yes
1,NA,31000,580,own,no
0,45,"78,000",,mortgage,no
1,23,24000,545,,yes
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	rec := testkit.NewLogRecorder()
	r := NewReader(DefaultReaderConfig(), rec)

	tbl, err := r.Read(writeFile(t, "applicants.csv", applicantsCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, []string{"credit_risk", "age", "income", "credit_score", "home_ownership", "has_guarantor"}, tbl.ColumnNames())

	label, _ := tbl.Column("credit_risk")
	assert.Equal(t, table.ColumnCategorical, label.Type)
	assert.Equal(t, "1", label.Values[1].String())

	age, _ := tbl.Column("age")
	assert.Equal(t, table.ColumnNumeric, age.Type)
	assert.True(t, age.Values[1].IsMissing())

	income, _ := tbl.Column("income")
	assert.Equal(t, 78000.0, income.Values[2].NumericVal)

	home, _ := tbl.Column("home_ownership")
	assert.Equal(t, table.ColumnCategorical, home.Type)
	assert.Equal(t, 1, home.MissingCount())

	guarantor, _ := tbl.Column("has_guarantor")
	assert.Equal(t, table.ColumnBoolean, guarantor.Type)

	assert.True(t, rec.Contains("INFO", "Data loaded: 4 rows, 6 columns"))
}

func TestReadIsIdempotent(t *testing.T) {
	r := NewReader(DefaultReaderConfig(), nil)
	path := writeFile(t, "applicants.csv", applicantsCSV)

	first, err := r.Read(path)
	require.NoError(t, err)
	second, err := r.Read(path)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestReadNotFound(t *testing.T) {
	rec := testkit.NewLogRecorder()
	r := NewReader(DefaultReaderConfig(), rec)

	_, err := r.Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrNotFound))
	assert.True(t, rec.Contains("ERROR", "File not found"))
}

func TestReadIOErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"ragged row", "credit_risk,age\n0,31\n1\n"},
		{"bare quote", "credit_risk,age\n0,\"31\n"},
		{"declared numeric not a number", "credit_risk,age,income,credit_score\n0,thirty,1,600\n"},
		{"invalid utf-8", "credit_risk,age\n0,\xff\xfe\n"},
		{"empty file", ""},
		{"duplicate header", "age,age\n1,2\n"},
	}

	r := NewReader(DefaultReaderConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(writeFile(t, "bad.csv", tt.content))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, apperrors.ErrIO), "got %v", err)
		})
	}
}

func TestReadStripsBOMAndNamesBlankHeaders(t *testing.T) {
	r := NewReader(DefaultReaderConfig(), nil)

	tbl, err := r.Read(writeFile(t, "bom.csv", "\ufeff,credit_risk\n0,1\n1,0\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Unnamed: 0", "credit_risk"}, tbl.ColumnNames())
}

func TestReadInferredColumnFallsBackToCategorical(t *testing.T) {
	r := NewReader(DefaultReaderConfig(), nil)

	// 9 of 10 cells are numbers: inferred numeric, but "ten" forces categorical.
	content := "loan_term\n1\n2\n3\n4\n5\n6\n7\n8\n9\nten\n"
	tbl, err := r.Read(writeFile(t, "terms.csv", content))
	require.NoError(t, err)

	col, _ := tbl.Column("loan_term")
	assert.Equal(t, table.ColumnCategorical, col.Type)
	assert.Equal(t, "ten", col.Values[9].String())
}

func TestHeaderOnlyFile(t *testing.T) {
	r := NewReader(DefaultReaderConfig(), nil)

	tbl, err := r.Read(writeFile(t, "empty.csv", "credit_risk,age,income,credit_score\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, 4, tbl.NumCols())
}

// Load then re-serialize keeps the column names and the row count.
func TestLoadReserializeRoundTrip(t *testing.T) {
	r := NewReader(DefaultReaderConfig(), nil)
	path := writeFile(t, "applicants.csv", applicantsCSV)

	tbl, err := r.Read(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	original, err := csv.NewReader(strings.NewReader(applicantsCSV)).ReadAll()
	require.NoError(t, err)
	written, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, original[0], written[0])
	assert.Equal(t, len(original), len(written))

	reloaded, err := r.Read(writeFile(t, "again.csv", buf.String()))
	require.NoError(t, err)
	assert.True(t, tbl.Equal(reloaded))
}

func TestGeneratedDatasetRoundTrip(t *testing.T) {
	tbl := testkit.NewCreditGenerator(testkit.DefaultCreditConfig(7)).Generate(200)
	path := filepath.Join(t.TempDir(), "generated.csv")
	require.NoError(t, WriteFile(path, tbl))

	reloaded, err := NewReader(DefaultReaderConfig(), nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, tbl.ColumnNames(), reloaded.ColumnNames())
	assert.Equal(t, tbl.NumRows(), reloaded.NumRows())
	for _, name := range table.RequiredColumns {
		want, _ := tbl.Column(name)
		got, _ := reloaded.Column(name)
		assert.Equal(t, want.MissingCount(), got.MissingCount(), name)
	}
}

func TestExcelRoundTrip(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategoricalColumn("credit_risk", []string{"0", "1", "0"}),
		table.NewNumericColumn("age", []float64{29, math.NaN(), 51}),
		table.NewNumericColumn("income", []float64{41000.5, 38000, 99000}),
		table.NewNumericColumn("credit_score", []float64{690, 610, 745}),
		table.NewCategoricalColumn("purpose", []string{"car", "", "home"}),
	)

	path := filepath.Join(t.TempDir(), "applicants.xlsx")
	require.NoError(t, WriteFile(path, tbl))

	reloaded, err := NewReader(DefaultReaderConfig(), nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, tbl.ColumnNames(), reloaded.ColumnNames())
	assert.Equal(t, 3, reloaded.NumRows())
	age, _ := reloaded.Column("age")
	assert.True(t, age.Values[1].IsMissing())
	income, _ := reloaded.Column("income")
	assert.Equal(t, 41000.5, income.Values[0].NumericVal)
	purpose, _ := reloaded.Column("purpose")
	assert.Equal(t, "home", purpose.Values[2].String())
}

func TestReadJSONRecords(t *testing.T) {
	content := `{"meta":{"source":"bureau"},"data":{"applicants":[
		{"credit_risk":"0","age":34,"income":52000,"credit_score":710,"home_ownership":"rent"},
		{"credit_risk":"1","age":null,"income":31000,"credit_score":580},
		{"credit_risk":"0","age":45,"income":78000,"credit_score":655,"home_ownership":"own","has_guarantor":true}
	]}}`

	cfg := DefaultReaderConfig()
	cfg.RecordsPath = "data.applicants"
	tbl, err := NewReader(cfg, nil).Read(writeFile(t, "applicants.json", content))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"credit_risk", "age", "income", "credit_score", "home_ownership", "has_guarantor"}, tbl.ColumnNames())

	age, _ := tbl.Column("age")
	assert.True(t, age.Values[1].IsMissing())
	home, _ := tbl.Column("home_ownership")
	assert.True(t, home.Values[1].IsMissing())
	guarantor, _ := tbl.Column("has_guarantor")
	assert.Equal(t, table.ColumnBoolean, guarantor.Type)
}

func TestReadJSONRootArray(t *testing.T) {
	content := `[{"credit_risk":"1","age":29,"income":1,"credit_score":600}]`
	tbl, err := NewReader(DefaultReaderConfig(), nil).Read(writeFile(t, "one.json", content))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"invalid json", "", `[{"age":`},
		{"scalar document", "", `42`},
		{"missing records path", "rows", `{"data":[]}`},
		{"nested field", "", `[{"age":{"years":3}}]`},
		{"non-object record", "", `[1,2]`},
		{"no records", "", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultReaderConfig()
			cfg.RecordsPath = tt.path
			_, err := NewReader(cfg, nil).Read(writeFile(t, "bad.json", tt.content))
			assert.ErrorIs(t, err, apperrors.ErrIO)
		})
	}
}
