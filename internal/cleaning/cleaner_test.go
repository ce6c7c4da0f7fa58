package cleaning

import (
	"math"
	"testing"

	"creditrisk/domain/table"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/testkit"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func applicants() *table.Table {
	return table.MustNew(
		table.NewCategoricalColumn("credit_risk", []string{"0", "1", "0", "1", "0"}),
		table.NewNumericColumn("age", []float64{30, nan, 40, 50, nan}),
		table.NewNumericColumn("income", []float64{1, nan, 3, 10, 1}),
		table.NewNumericColumn("credit_score", []float64{700, 650, 600, 650, 700}),
		table.NewCategoricalColumn("home_ownership", []string{"rent", "own", "", "own", "rent"}),
	)
}

func TestImputeMean(t *testing.T) {
	rec := testkit.NewLogRecorder()
	c := NewCleaner(table.CreditRiskSchema(), rec)

	out, err := c.Impute(applicants(), StrategyMean)
	require.NoError(t, err)

	age, _ := out.Column("age")
	assert.Equal(t, 0, age.MissingCount())
	assert.Equal(t, 40.0, age.Values[1].NumericVal)
	assert.Equal(t, 40.0, age.Values[4].NumericVal)

	income, _ := out.Column("income")
	assert.InDelta(t, 3.75, income.Values[1].NumericVal, 1e-12)

	// Categorical columns are not touched by mean imputation.
	home, _ := out.Column("home_ownership")
	assert.Equal(t, 1, home.MissingCount())

	assert.True(t, rec.Contains("INFO", "strategy: mean"))
}

func TestImputeMeanPreservesColumnMeans(t *testing.T) {
	tbl := testkit.NewCreditGenerator(testkit.DefaultCreditConfig(11)).Generate(400)
	out, err := NewCleaner(table.CreditRiskSchema(), nil).Impute(tbl, StrategyMean)
	require.NoError(t, err)

	for _, name := range []string{"age", "income", "credit_score"} {
		before, _ := tbl.Column(name)
		after, _ := out.Column(name)
		require.Greater(t, before.MissingCount(), 0, name)
		assert.Equal(t, 0, after.MissingCount(), name)

		want, _ := stats.Mean(before.Floats())
		got, _ := stats.Mean(after.Floats())
		assert.InDelta(t, want, got, 1e-6*math.Abs(want), name)
	}
}

func TestImputeMedian(t *testing.T) {
	out, err := NewCleaner(table.CreditRiskSchema(), nil).Impute(applicants(), StrategyMedian)
	require.NoError(t, err)

	income, _ := out.Column("income")
	assert.Equal(t, 2.0, income.Values[1].NumericVal)
	age, _ := out.Column("age")
	assert.Equal(t, 40.0, age.Values[4].NumericVal)
}

func TestImputeModeIsPerColumn(t *testing.T) {
	out, err := NewCleaner(table.CreditRiskSchema(), nil).Impute(applicants(), StrategyMode)
	require.NoError(t, err)

	// income: 1 appears twice.
	income, _ := out.Column("income")
	assert.Equal(t, 1.0, income.Values[1].NumericVal)

	// age: 30, 40, 50 tie; smallest wins.
	age, _ := out.Column("age")
	assert.Equal(t, 30.0, age.Values[1].NumericVal)

	// home_ownership: own and rent tie; lexicographically smallest wins.
	home, _ := out.Column("home_ownership")
	assert.Equal(t, "own", home.Values[2].String())
	assert.Equal(t, table.ColumnCategorical, home.Type)
}

func TestImputeLeavesAllMissingColumn(t *testing.T) {
	tbl := table.MustNew(
		table.NewNumericColumn("age", []float64{nan, nan}),
		table.NewNumericColumn("income", []float64{1, nan}),
	)
	rec := testkit.NewLogRecorder()

	for _, strategy := range []Strategy{StrategyMean, StrategyMedian, StrategyMode} {
		out, err := NewCleaner(nil, rec).Impute(tbl, strategy)
		require.NoError(t, err)
		age, _ := out.Column("age")
		assert.Equal(t, 2, age.MissingCount())
		income, _ := out.Column("income")
		assert.Equal(t, 0, income.MissingCount())
	}
	assert.True(t, rec.Contains("WARN", `"age" has no observed values`))
}

func TestImputeUnknownStrategy(t *testing.T) {
	_, err := NewCleaner(nil, nil).Impute(applicants(), Strategy("max"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCleanerDoesNotMutateInput(t *testing.T) {
	tbl := applicants()
	snapshot := tbl.Clone()
	c := NewCleaner(table.CreditRiskSchema(), nil)

	_, err := c.Impute(tbl, StrategyMode)
	require.NoError(t, err)
	_, err = c.ClipOutliers(tbl, []string{"income"}, MethodIQR)
	require.NoError(t, err)

	assert.True(t, tbl.Equal(snapshot))
}

func outlierFixture() *table.Table {
	values := make([]float64, 0, 22)
	for i := 1; i <= 20; i++ {
		values = append(values, float64(i))
	}
	values = append(values, 1000, nan)
	return table.MustNew(table.NewNumericColumn("income", values))
}

func TestClipOutliersIQR(t *testing.T) {
	rec := testkit.NewLogRecorder()
	out, err := NewCleaner(table.CreditRiskSchema(), rec).ClipOutliers(outlierFixture(), []string{"income"}, MethodIQR)
	require.NoError(t, err)

	income, _ := out.Column("income")
	// Q1 = 6, Q3 = 16, upper fence = 31.
	assert.Equal(t, 31.0, income.Values[20].NumericVal)
	assert.Equal(t, 1.0, income.Values[0].NumericVal)
	assert.True(t, income.Values[21].IsMissing())
	assert.True(t, rec.Contains("INFO", "method iqr"))
}

func TestClipOutliersIsIdempotent(t *testing.T) {
	c := NewCleaner(table.CreditRiskSchema(), nil)

	once, err := c.ClipOutliers(outlierFixture(), []string{"income"}, MethodIQR)
	require.NoError(t, err)
	twice, err := c.ClipOutliers(once, []string{"income"}, MethodIQR)
	require.NoError(t, err)

	assert.True(t, once.Equal(twice))
}

// Fences are recomputed from the clipped data, so a second pass can move
// them again when clipping shifts a quartile.
func TestClipOutliersSecondPassCanMoveFences(t *testing.T) {
	c := NewCleaner(table.CreditRiskSchema(), nil)
	tbl := table.MustNew(table.NewNumericColumn("income", []float64{0, 0, 10, 10, 10, 10, 10, 10}))

	once, err := c.ClipOutliers(tbl, []string{"income"}, MethodIQR)
	require.NoError(t, err)
	twice, err := c.ClipOutliers(once, []string{"income"}, MethodIQR)
	require.NoError(t, err)

	// Q1 = 7.5, Q3 = 10, lower fence = 3.75.
	first, _ := once.Column("income")
	assert.Equal(t, []float64{3.75, 3.75, 10, 10, 10, 10, 10, 10}, first.Floats())

	// Q1 = 8.4375, Q3 = 10, lower fence = 6.09375.
	second, _ := twice.Column("income")
	assert.InDelta(t, 6.09375, second.Values[0].NumericVal, 1e-12)
	assert.InDelta(t, 6.09375, second.Values[1].NumericVal, 1e-12)
	assert.False(t, once.Equal(twice))
}

func TestClipOutliersErrors(t *testing.T) {
	c := NewCleaner(table.CreditRiskSchema(), nil)

	tests := []struct {
		name    string
		columns []string
		method  Method
	}{
		{"unknown method", []string{"income"}, Method("zscore")},
		{"unknown column", []string{"salary"}, MethodIQR},
		{"categorical column", []string{"home_ownership"}, MethodIQR},
		{"label column", []string{"credit_risk"}, MethodIQR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ClipOutliers(applicants(), tt.columns, tt.method)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestParseStrategyAndMethod(t *testing.T) {
	s, err := ParseStrategy(" Median ")
	require.NoError(t, err)
	assert.Equal(t, StrategyMedian, s)

	_, err = ParseStrategy("knn")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	m, err := ParseMethod("IQR")
	require.NoError(t, err)
	assert.Equal(t, MethodIQR, m)
}

func TestMode(t *testing.T) {
	v, ok := Mode([]table.Value{
		table.NewBooleanValue(true),
		table.NewBooleanValue(false),
		table.NewMissingValue(),
	})
	require.True(t, ok)
	assert.False(t, v.BooleanVal)

	_, ok = Mode([]table.Value{table.NewMissingValue()})
	assert.False(t, ok)
}
