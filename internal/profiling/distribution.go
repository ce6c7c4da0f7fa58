package profiling

import (
	"math"

	"creditrisk/domain/profile"

	"github.com/montanaflynn/stats"
)

// TukeyK is the fence multiplier used for IQR outlier detection
const TukeyK = 1.5

// ColumnProfile is the summary produced for each numeric column
type ColumnProfile = profile.ColumnProfile

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes the summary of the observed values of a
// column. missing is carried through for reporting. An empty data slice
// yields a profile with only Name and Missing set.
func (da *DistributionAnalyzer) AnalyzeDistribution(name string, data []float64, missing int) (ColumnProfile, error) {
	p := ColumnProfile{Name: name, Count: len(data), Missing: missing}
	if len(data) == 0 {
		return p, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return p, err
	}

	stdDev, err := stats.StandardDeviationSample(data)
	if err != nil {
		return p, err
	}
	if math.IsNaN(stdDev) { // single observation
		stdDev = 0
	}

	min, err := stats.Min(data)
	if err != nil {
		return p, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return p, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return p, err
	}

	q1, q3 := Quartiles(data)

	p.Mean = mean
	p.StdDev = stdDev
	p.Min = min
	p.Max = max
	p.Median = median
	p.Q1 = q1
	p.Q3 = q3
	p.Skewness = calculateSkewness(data, mean, stdDev)
	p.Kurtosis = calculateKurtosis(data, mean, stdDev)
	p.Outliers = detectOutliers(data, q1, q3)

	return p, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	return sumFourthDeviations/n - 3
}

// detectOutliers counts cells outside the IQR fences
func detectOutliers(data []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lowerBound := q1 - TukeyK*iqr
	upperBound := q3 + TukeyK*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
