package coercer

import (
	"testing"

	"creditrisk/domain/table"
)

func TestCoerceNumericFormats(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		raw  string
		want float64
	}{
		{"42", 42},
		{" 42.5 ", 42.5},
		{"$45000", 45000},
		{"55,000", 55000},
		{"1,234,567.89", 1234567.89},
		{"(120)", -120},
		{"12%", 12},
		{"1.234,56", 1234.56},
		{"0,5", 0.5},
		{"1e3", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := c.Coerce(tt.raw, table.ColumnNumeric)
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.raw, err)
			}
			if !v.IsNumeric() || v.NumericVal != tt.want {
				t.Errorf("Expected %v for %q, got %+v", tt.want, tt.raw, v)
			}
		})
	}
}

func TestCoerceMissingTokens(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, raw := range []string{"", "  ", "NA", "N/A", "NaN", "null", "None", "#N/A"} {
		for _, typ := range []table.ColumnType{table.ColumnNumeric, table.ColumnCategorical, table.ColumnBoolean} {
			v, err := c.Coerce(raw, typ)
			if err != nil {
				t.Fatalf("Unexpected error for %q as %s: %v", raw, typ, err)
			}
			if !v.IsMissing() {
				t.Errorf("Expected %q to be missing as %s, got %+v", raw, typ, v)
			}
		}
	}
}

func TestCoerceRejectsUnparseable(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	if _, err := c.Coerce("forty", table.ColumnNumeric); err == nil {
		t.Error("Expected error coercing text to numeric")
	}
	if _, err := c.Coerce("maybe", table.ColumnBoolean); err == nil {
		t.Error("Expected error coercing text to boolean")
	}
	if _, err := c.Coerce("x", table.ColumnType("date")); err == nil {
		t.Error("Expected error for unknown column type")
	}
}

func TestCoerceCategorical(t *testing.T) {
	raw := NewTypeCoercer(DefaultCoercionConfig())
	v, _ := raw.Coerce("  Self  Employed ", table.ColumnCategorical)
	if v.StringVal != "  Self  Employed " {
		t.Errorf("Expected categorical cell to be kept verbatim, got %q", v.StringVal)
	}

	cfg := DefaultCoercionConfig()
	cfg.NormalizeStrings = true
	normalized := NewTypeCoercer(cfg)
	v, _ = normalized.Coerce("  Self  Employed ", table.ColumnCategorical)
	if v.StringVal != "self employed" {
		t.Errorf("Expected normalized cell, got %q", v.StringVal)
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name   string
		values []string
		want   table.ColumnType
	}{
		{"numeric strings", []string{"25", "34", "45", "28", "52"}, table.ColumnNumeric},
		{"currency", []string{"$45000", "$78000", "$120000"}, table.ColumnNumeric},
		{"binary codes are numeric", []string{"0", "1", "1", "0"}, table.ColumnNumeric},
		{"yes/no is boolean", []string{"yes", "no", "yes", "no", "yes"}, table.ColumnBoolean},
		{"text is categorical", []string{"rent", "own", "mortgage"}, table.ColumnCategorical},
		{"missing cells ignored", []string{"1", "", "NA", "3"}, table.ColumnNumeric},
		{"all missing", []string{"", "NA"}, table.ColumnCategorical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := c.AnalyzeTypeDistribution(tt.values)
			if analysis.RecommendedType != tt.want {
				t.Errorf("Expected %s, got %s (analysis %+v)", tt.want, analysis.RecommendedType, analysis)
			}
			if analysis.TotalCount != len(tt.values) {
				t.Errorf("Expected total %d, got %d", len(tt.values), analysis.TotalCount)
			}
		})
	}
}
