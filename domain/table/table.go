// Package table holds the in-memory tabular data model shared by the
// loader, cleaner and splitter.
package table

import (
	"fmt"
)

// Column is a named, typed sequence of cells
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// NewColumn creates a column
func NewColumn(name string, typ ColumnType, values []Value) *Column {
	return &Column{Name: name, Type: typ, Values: values}
}

// NewNumericColumn builds a numeric column; NaN entries become missing
func NewNumericColumn(name string, values []float64) *Column {
	out := make([]Value, len(values))
	for i, v := range values {
		if v != v {
			out[i] = NewMissingValue()
			continue
		}
		out[i] = NewNumericValue(v)
	}
	return NewColumn(name, ColumnNumeric, out)
}

// NewCategoricalColumn builds a categorical column; empty strings become missing
func NewCategoricalColumn(name string, values []string) *Column {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = NewStringValue(v)
	}
	return NewColumn(name, ColumnCategorical, out)
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Values)
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric cells in row order
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.IsNumeric() {
			out = append(out, v.NumericVal)
		}
	}
	return out
}

// Clone returns a deep copy
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Take returns a column holding the given rows in the given order
func (c *Column) Take(rows []int) *Column {
	values := make([]Value, len(rows))
	for i, r := range rows {
		values[i] = c.Values[r]
	}
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Equal compares name, type and cells
func (c *Column) Equal(o *Column) bool {
	if c.Name != o.Name || c.Type != o.Type || len(c.Values) != len(o.Values) {
		return false
	}
	for i := range c.Values {
		if !c.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

// Table is an ordered collection of equal-length named columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a table, rejecting duplicate names and ragged columns
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is New for fixtures known to be well formed
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not mutate them.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns the cells of one row in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	out := MustNew(cols...)
	out.rows = t.rows
	return out
}

// Take returns a table holding the given rows in the given order
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(rows)
	}
	out := MustNew(cols...)
	out.rows = len(rows)
	return out
}

// Without returns a copy of the table minus the named column
func (t *Table) Without(name string) *Table {
	cols := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Name != name {
			cols = append(cols, c.Clone())
		}
	}
	out := MustNew(cols...)
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out
}

// Replace returns a copy of the table with the named column swapped for col
func (t *Table) Replace(col *Column) (*Table, error) {
	i, ok := t.index[col.Name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", col.Name)
	}
	if col.Len() != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
	}
	out := t.Clone()
	out.columns[i] = col.Clone()
	return out, nil
}

// Equal reports structural equality: same columns, types and cells
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}
