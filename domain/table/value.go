package table

import (
	"strconv"
)

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeMissing ValueType = "missing"
)

// Value represents a single typed cell
type Value struct {
	Type       ValueType `json:"type"`
	StringVal  string    `json:"string_val,omitempty"`
	NumericVal float64   `json:"numeric_val,omitempty"`
	BooleanVal bool      `json:"boolean_val,omitempty"`
}

// NewStringValue creates a string value; the empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: b}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// IsNumeric returns true if the value represents a number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric
}

// AsFloat64 returns the numeric value, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.Type == ValueTypeNumeric {
		return v.NumericVal
	}
	return 0.0
}

// String returns the canonical text form of the value. Missing values
// render as the empty string so a table can be re-serialized as CSV.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.NumericVal, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.BooleanVal)
	}
	return ""
}

// Equal compares two values by type and content
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.NumericVal == o.NumericVal
	case ValueTypeBoolean:
		return v.BooleanVal == o.BooleanVal
	default:
		return v.StringVal == o.StringVal
	}
}
