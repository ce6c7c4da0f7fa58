package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"creditrisk/domain/table"
)

var (
	thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// TypeCoercer turns raw text cells into typed values
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the inference thresholds and parsing rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing cells that must parse as numbers
	BooleanThreshold float64  `json:"boolean_threshold"` // share of non-missing cells that must parse as booleans
	MissingTokens    []string `json:"missing_tokens"`
	NormalizeStrings bool     `json:"normalize_strings"` // trim, lower-case and collapse whitespace in categorical cells
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		BooleanThreshold: 0.9,
		MissingTokens:    []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"},
		NormalizeStrings: false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell is a missing-value token
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.TrimSpace(raw)]
	return ok
}

// Coerce converts a raw cell to a value of the given column type. A
// non-missing cell that does not parse as the declared type is an error.
func (c *TypeCoercer) Coerce(raw string, typ table.ColumnType) (table.Value, error) {
	if c.IsMissing(raw) {
		return table.NewMissingValue(), nil
	}

	switch typ {
	case table.ColumnNumeric:
		if v, ok := c.tryParseNumeric(raw); ok {
			return v, nil
		}
		return table.Value{}, fmt.Errorf("cannot parse %q as numeric", raw)
	case table.ColumnBoolean:
		if v, ok := c.tryParseBoolean(raw); ok {
			return v, nil
		}
		return table.Value{}, fmt.Errorf("cannot parse %q as boolean", raw)
	case table.ColumnCategorical:
		return c.coerceToString(raw), nil
	default:
		return table.Value{}, fmt.Errorf("unknown column type %q", typ)
	}
}

// AnalyzeTypeDistribution counts how many non-missing cells parse as each
// type and recommends a column type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		if c.IsMissing(val) {
			continue
		}
		analysis.ValidCount++

		if _, ok := c.tryParseNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseBoolean(val); ok {
			analysis.BooleanCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// coerceToString converts to a (optionally normalized) string value
func (c *TypeCoercer) coerceToString(strVal string) table.Value {
	if c.config.NormalizeStrings {
		strVal = c.normalizeString(strVal)
	}
	return table.NewStringValue(strVal)
}

// tryParseNumeric parses numbers leniently: parentheses for negatives,
// currency symbols, percent signs, thousands separators and European
// decimal commas
func (c *TypeCoercer) tryParseNumeric(strVal string) (table.Value, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return table.Value{}, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case thousandsPattern.MatchString(cleanVal):
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56
		cleanVal = strings.ReplaceAll(cleanVal, ".", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return table.Value{}, false
	}
	return table.NewNumericValue(val), true
}

// tryParseBoolean parses common boolean spellings
func (c *TypeCoercer) tryParseBoolean(strVal string) (table.Value, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "1", "yes", "y", "on":
		return table.NewBooleanValue(true), true
	case "false", "0", "no", "n", "off":
		return table.NewBooleanValue(false), true
	}
	return table.Value{}, false
}

// normalizeString applies deterministic string normalization
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// determineRecommendedType chooses the column type from the analysis.
// Numeric is checked first, so 0/1 columns are numeric.
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) table.ColumnType {
	if analysis.ValidCount == 0 {
		return table.ColumnCategorical
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return table.ColumnNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return table.ColumnBoolean
	}
	return table.ColumnCategorical
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int              `json:"total_count"`
	ValidCount      int              `json:"valid_count"`
	NumericCount    int              `json:"numeric_count"`
	BooleanCount    int              `json:"boolean_count"`
	NumericRatio    float64          `json:"numeric_ratio"`
	BooleanRatio    float64          `json:"boolean_ratio"`
	RecommendedType table.ColumnType `json:"recommended_type"`
}
