package profiling

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted data by linear interpolation
// between closest ranks: h = (n-1)p, q = x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h]).
// sorted must be ascending and non-empty; p is clamped to [0,1].
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	p = math.Max(0, math.Min(1, p))

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Quartiles returns Q1 and Q3 of data, which need not be sorted
func Quartiles(data []float64) (q1, q3 float64) {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.25), Quantile(sorted, 0.75)
}

// IQRFences returns the Tukey fences Q1 - k·IQR and Q3 + k·IQR
func IQRFences(data []float64, k float64) (lower, upper float64) {
	q1, q3 := Quartiles(data)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
