package table

// ColumnType is the declared type of a column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnBoolean     ColumnType = "boolean"
)

// Valid reports whether t is one of the known column types
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnNumeric, ColumnCategorical, ColumnBoolean:
		return true
	}
	return false
}

// Schema maps column names to declared types. Columns absent from a
// schema are typed by inference at load time.
type Schema map[string]ColumnType

// LabelColumn is the binary target of the credit risk dataset
const LabelColumn = "credit_risk"

// RequiredColumns lists the columns a credit risk table must carry, in
// reporting order.
var RequiredColumns = []string{LabelColumn, "age", "income", "credit_score"}

// CreditRiskSchema declares the required columns. The label is
// categorical so numeric imputation never rewrites it.
func CreditRiskSchema() Schema {
	return Schema{
		LabelColumn:    ColumnCategorical,
		"age":          ColumnNumeric,
		"income":       ColumnNumeric,
		"credit_score": ColumnNumeric,
	}
}

// PredictionsSchema declares the columns of a model predictions file
func PredictionsSchema() Schema {
	return Schema{
		"y_true":  ColumnNumeric,
		"y_pred":  ColumnNumeric,
		"y_proba": ColumnNumeric,
	}
}

// Merge returns a copy of s with the entries of other added or overriding
func (s Schema) Merge(other Schema) Schema {
	out := make(Schema, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// TypeOf returns the declared type of name, if any
func (s Schema) TypeOf(name string) (ColumnType, bool) {
	t, ok := s[name]
	return t, ok
}
