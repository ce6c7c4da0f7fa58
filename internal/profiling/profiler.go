// Package profiling computes summary statistics for the numeric columns of
// a table. The profiles are attached to run records and rendered in reports.
package profiling

import (
	"fmt"

	"creditrisk/domain/table"
)

// DataProfiler profiles every numeric column of a table
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{analyzer: NewDistributionAnalyzer()}
}

// ProfileColumn profiles a single column
func (dp *DataProfiler) ProfileColumn(col *table.Column) (ColumnProfile, error) {
	profile, err := dp.analyzer.AnalyzeDistribution(col.Name, col.Floats(), col.MissingCount())
	if err != nil {
		return profile, fmt.Errorf("profile column %q: %w", col.Name, err)
	}
	return profile, nil
}

// ProfileTable profiles the numeric columns of t in column order
func (dp *DataProfiler) ProfileTable(t *table.Table) ([]ColumnProfile, error) {
	var profiles []ColumnProfile
	for _, col := range t.Columns() {
		if col.Type != table.ColumnNumeric {
			continue
		}
		profile, err := dp.ProfileColumn(col)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
