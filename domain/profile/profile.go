// Package profile describes summary statistics of a numeric column.
package profile

// ColumnProfile summarizes one numeric column
type ColumnProfile struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"` // cells outside the IQR fences
}

// MissingRate is the share of cells with no value
func (p ColumnProfile) MissingRate() float64 {
	total := p.Count + p.Missing
	if total == 0 {
		return 0
	}
	return float64(p.Missing) / float64(total)
}
