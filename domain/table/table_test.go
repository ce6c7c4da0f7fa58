package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Table {
	return MustNew(
		NewCategoricalColumn("credit_risk", []string{"0", "1", "0"}),
		NewNumericColumn("age", []float64{25, math.NaN(), 41}),
		NewNumericColumn("income", []float64{42000, 55000, 61000}),
	)
}

func TestNewRejectsRaggedAndDuplicateColumns(t *testing.T) {
	_, err := New(
		NewNumericColumn("a", []float64{1, 2}),
		NewNumericColumn("b", []float64{1}),
	)
	assert.Error(t, err)

	_, err = New(
		NewNumericColumn("a", []float64{1}),
		NewNumericColumn("a", []float64{2}),
	)
	assert.Error(t, err)
}

func TestTableAccessors(t *testing.T) {
	tbl := fixture()

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 3, tbl.NumCols())
	assert.Equal(t, []string{"credit_risk", "age", "income"}, tbl.ColumnNames())
	assert.True(t, tbl.HasColumn("age"))
	assert.False(t, tbl.HasColumn("credit_score"))

	age, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Equal(t, 1, age.MissingCount())
	assert.Equal(t, []float64{25, 41}, age.Floats())

	row := tbl.Row(1)
	assert.Equal(t, "1", row[0].String())
	assert.True(t, row[1].IsMissing())
}

func TestCloneIsDeep(t *testing.T) {
	tbl := fixture()
	clone := tbl.Clone()
	require.True(t, tbl.Equal(clone))

	col, _ := clone.Column("income")
	col.Values[0] = NewNumericValue(1)

	orig, _ := tbl.Column("income")
	assert.Equal(t, 42000.0, orig.Values[0].NumericVal)
	assert.False(t, tbl.Equal(clone))
}

func TestTakeAndWithout(t *testing.T) {
	tbl := fixture()

	sub := tbl.Take([]int{2, 0})
	assert.Equal(t, 2, sub.NumRows())
	income, _ := sub.Column("income")
	assert.Equal(t, []float64{61000, 42000}, income.Floats())

	features := tbl.Without("credit_risk")
	assert.Equal(t, []string{"age", "income"}, features.ColumnNames())
	assert.Equal(t, 3, features.NumRows())
	assert.Equal(t, 3, tbl.NumCols())
}

func TestReplace(t *testing.T) {
	tbl := fixture()

	out, err := tbl.Replace(NewNumericColumn("age", []float64{1, 2, 3}))
	require.NoError(t, err)
	age, _ := out.Column("age")
	assert.Equal(t, []float64{1, 2, 3}, age.Floats())

	orig, _ := tbl.Column("age")
	assert.Equal(t, 1, orig.MissingCount())

	_, err = tbl.Replace(NewNumericColumn("age", []float64{1}))
	assert.Error(t, err)
	_, err = tbl.Replace(NewNumericColumn("unknown", []float64{1, 2, 3}))
	assert.Error(t, err)
}

func TestReplaceCopiesColumn(t *testing.T) {
	tbl := fixture()
	col := NewNumericColumn("age", []float64{1, 2, 3})

	out, err := tbl.Replace(col)
	require.NoError(t, err)
	col.Values[0] = NewNumericValue(99)

	age, _ := out.Column("age")
	assert.Equal(t, []float64{1, 2, 3}, age.Floats())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42000", NewNumericValue(42000).String())
	assert.Equal(t, "0.25", NewNumericValue(0.25).String())
	assert.Equal(t, "true", NewBooleanValue(true).String())
	assert.Equal(t, "", NewMissingValue().String())
	assert.True(t, NewStringValue("").IsMissing())
	assert.True(t, Value{}.IsMissing())
}

func TestSchemaMerge(t *testing.T) {
	s := CreditRiskSchema().Merge(Schema{"employment": ColumnCategorical, "age": ColumnCategorical})

	typ, ok := s.TypeOf("employment")
	assert.True(t, ok)
	assert.Equal(t, ColumnCategorical, typ)
	assert.Equal(t, ColumnCategorical, s["age"])
	assert.Equal(t, ColumnNumeric, CreditRiskSchema()["age"])
}
