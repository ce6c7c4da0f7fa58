package profiling

import (
	"math"
	"testing"

	"creditrisk/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantile(sorted, tt.p), 1e-12, "p=%v", tt.p)
	}

	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.25))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuartilesDoNotSortInput(t *testing.T) {
	data := []float64{10, 1, 5, 3}
	q1, q3 := Quartiles(data)
	assert.InDelta(t, 2.5, q1, 1e-12)
	assert.InDelta(t, 6.25, q3, 1e-12)
	assert.Equal(t, []float64{10, 1, 5, 3}, data)
}

func TestIQRFences(t *testing.T) {
	data := make([]float64, 0, 21)
	for i := 1; i <= 20; i++ {
		data = append(data, float64(i))
	}
	data = append(data, 1000)

	lower, upper := IQRFences(data, TukeyK)
	assert.Equal(t, -9.0, lower)
	assert.Equal(t, 31.0, upper)
}

func TestProfileTable(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategoricalColumn("credit_risk", []string{"0", "1", "0", "1", "0"}),
		table.NewNumericColumn("income", []float64{10, 20, math.NaN(), 30, 500}),
	)

	profiles, err := NewDataProfiler().ProfileTable(tbl)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "income", p.Name)
	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 1, p.Missing)
	assert.InDelta(t, 140.0, p.Mean, 1e-9)
	assert.InDelta(t, 25.0, p.Median, 1e-9)
	assert.Equal(t, 10.0, p.Min)
	assert.Equal(t, 500.0, p.Max)
	assert.Equal(t, 1, p.Outliers)
	assert.Greater(t, p.Skewness, 0.0)
}

func TestProfileEmptyColumn(t *testing.T) {
	col := table.NewNumericColumn("age", []float64{math.NaN(), math.NaN()})
	p, err := NewDataProfiler().ProfileColumn(col)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 2, p.Missing)
}
