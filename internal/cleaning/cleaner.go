// Package cleaning fills missing values and clips numeric outliers.
package cleaning

import (
	"sort"
	"strings"

	"creditrisk/domain/table"
	"creditrisk/internal/errors"
	"creditrisk/internal/logging"
	"creditrisk/internal/profiling"

	"github.com/montanaflynn/stats"
)

// Strategy names an imputation strategy
type Strategy string

const (
	StrategyMean   Strategy = "mean"
	StrategyMedian Strategy = "median"
	StrategyMode   Strategy = "mode"
)

// Method names an outlier clipping method
type Method string

const (
	MethodIQR Method = "iqr"
)

// Cleaner imputes and clips. Every operation returns a new table; the
// input is never modified.
type Cleaner struct {
	schema table.Schema
	logger logging.Logger
}

// NewCleaner creates a cleaner. schema decides which columns are numeric;
// columns it does not declare keep the type they were loaded with.
func NewCleaner(schema table.Schema, logger logging.Logger) *Cleaner {
	return &Cleaner{schema: schema, logger: logging.OrNop(logger)}
}

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyMean, StrategyMedian, StrategyMode:
		return st, nil
	}
	return "", errors.InvalidArgument("unknown imputation strategy %q (want mean, median or mode)", s)
}

// ParseMethod validates an outlier method name
func ParseMethod(s string) (Method, error) {
	if m := Method(strings.ToLower(strings.TrimSpace(s))); m == MethodIQR {
		return m, nil
	}
	return "", errors.InvalidArgument("unknown outlier method %q (want iqr)", s)
}

func (c *Cleaner) isNumeric(col *table.Column) bool {
	if typ, ok := c.schema.TypeOf(col.Name); ok {
		return typ == table.ColumnNumeric
	}
	return col.Type == table.ColumnNumeric
}

// Impute fills missing cells. mean and median touch numeric columns only;
// mode fills every column with its own most frequent value. A column with
// no observed values is left as is.
func (c *Cleaner) Impute(t *table.Table, strategy Strategy) (*table.Table, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	c.logger.Info("Imputing missing values with strategy: %s", strategy)

	out := t.Clone()
	filled := 0
	for _, col := range out.Columns() {
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		if strategy != StrategyMode && !c.isNumeric(col) {
			continue
		}

		fill, ok, err := c.fillValue(col, strategy)
		if err != nil {
			return nil, errors.Wrapf(err, "impute column %q", col.Name)
		}
		if !ok {
			c.logger.Warn("Column %q has no observed values, leaving %d missing cells", col.Name, missing)
			continue
		}

		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = fill
			}
		}
		filled += missing
		c.logger.Debug("Filled %d cells of %q with %s", missing, col.Name, fill.String())
	}

	c.logger.Info("Imputation filled %d cells", filled)
	return out, nil
}

// fillValue returns the replacement for the missing cells of col, or
// false when the column has nothing to derive it from
func (c *Cleaner) fillValue(col *table.Column, strategy Strategy) (table.Value, bool, error) {
	if strategy == StrategyMode {
		v, ok := Mode(col.Values)
		return v, ok, nil
	}

	data := col.Floats()
	if len(data) == 0 {
		return table.Value{}, false, nil
	}

	var (
		fill float64
		err  error
	)
	switch strategy {
	case StrategyMean:
		fill, err = stats.Mean(data)
	case StrategyMedian:
		fill, err = stats.Median(data)
	}
	if err != nil {
		return table.Value{}, false, err
	}
	return table.NewNumericValue(fill), true, nil
}

// ClipOutliers clamps each named numeric column to its IQR fences
// [Q1 - 1.5·IQR, Q3 + 1.5·IQR]. Missing cells stay missing.
func (c *Cleaner) ClipOutliers(t *table.Table, columns []string, method Method) (*table.Table, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.InvalidArgument("cannot clip unknown column %q", name)
		}
		if !c.isNumeric(col) {
			return nil, errors.InvalidArgument("cannot clip non-numeric column %q", name)
		}
	}
	c.logger.Info("Clipping outliers with method %s on columns [%s]", method, strings.Join(columns, ", "))

	out := t.Clone()
	for _, name := range columns {
		col, _ := out.Column(name)
		data := col.Floats()
		if len(data) == 0 {
			c.logger.Warn("Column %q has no observed values, nothing to clip", name)
			continue
		}

		lower, upper := profiling.IQRFences(data, profiling.TukeyK)
		clipped := 0
		for i, v := range col.Values {
			if !v.IsNumeric() {
				continue
			}
			switch {
			case v.NumericVal < lower:
				col.Values[i] = table.NewNumericValue(lower)
				clipped++
			case v.NumericVal > upper:
				col.Values[i] = table.NewNumericValue(upper)
				clipped++
			}
		}
		c.logger.Debug("Column %q fences [%g, %g], clipped %d cells", name, lower, upper, clipped)
	}
	return out, nil
}

// Mode returns the most frequent non-missing value. Ties go to the
// smallest value: numbers before text, text lexicographically, false
// before true. It reports false when every value is missing.
func Mode(values []table.Value) (table.Value, bool) {
	observed := make([]table.Value, 0, len(values))
	for _, v := range values {
		if !v.IsMissing() {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return table.Value{}, false
	}

	sort.SliceStable(observed, func(i, j int) bool {
		return compareValues(observed[i], observed[j]) < 0
	})

	best, bestCount := observed[0], 0
	for i := 0; i < len(observed); {
		j := i
		for j < len(observed) && observed[j].Equal(observed[i]) {
			j++
		}
		if j-i > bestCount {
			best, bestCount = observed[i], j-i
		}
		i = j
	}
	return best, true
}

var typeRank = map[table.ValueType]int{
	table.ValueTypeNumeric: 0,
	table.ValueTypeBoolean: 1,
	table.ValueTypeString:  2,
}

func compareValues(a, b table.Value) int {
	if a.Type != b.Type {
		return typeRank[a.Type] - typeRank[b.Type]
	}
	switch a.Type {
	case table.ValueTypeNumeric:
		switch {
		case a.NumericVal < b.NumericVal:
			return -1
		case a.NumericVal > b.NumericVal:
			return 1
		}
		return 0
	case table.ValueTypeBoolean:
		if a.BooleanVal == b.BooleanVal {
			return 0
		}
		if !a.BooleanVal {
			return -1
		}
		return 1
	default:
		return strings.Compare(a.StringVal, b.StringVal)
	}
}
