package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprep/pkg/errors"
)

func str(s string) *string { return &s }

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		Floats("age", 25, 30, math.NaN(), 400),
		Strings("city", str("NY"), str("NY"), nil, str("LA")),
	)
	require.NoError(t, err)
	return ds
}

func TestNew(t *testing.T) {
	ds := sample(t)

	assert.Equal(t, []string{"age", "city"}, ds.Columns())
	assert.Equal(t, 4, ds.NumRows())
	assert.Equal(t, 2, ds.NumColumns())

	kind, err := ds.ColumnKind("age")
	require.NoError(t, err)
	assert.Equal(t, Numeric, kind)

	kind, err = ds.ColumnKind("city")
	require.NoError(t, err)
	assert.Equal(t, Categorical, kind)
}

func TestNewRejectsBadShape(t *testing.T) {
	_, err := New(Floats("a", 1, 2), Floats("b", 1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	_, err = New(Floats("a", 1), Floats("a", 2))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestUnknownColumn(t *testing.T) {
	ds := sample(t)

	_, err := ds.ColumnKind("salary")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownColumn))

	_, err = ds.Values("salary")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownColumn))

	_, err = ds.DropColumns("salary")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownColumn))
}

func TestValuesIncludeNulls(t *testing.T) {
	ds := sample(t)

	vals, err := ds.Values("age")
	require.NoError(t, err)
	require.Len(t, vals, 4)
	assert.Equal(t, 25.0, vals[0].Num)
	assert.True(t, vals[2].IsNull())
	assert.Nil(t, vals[2].Interface())

	cities, err := ds.Values("city")
	require.NoError(t, err)
	assert.Equal(t, "LA", cities[3].Interface())
	assert.True(t, cities[2].IsNull())
}

func TestWithColumnReplacesWithoutMutating(t *testing.T) {
	ds := sample(t)

	out, err := ds.WithColumn("age", Floats("ignored", 1, 2, 3, 4))
	require.NoError(t, err)

	vals, _ := out.Values("age")
	assert.Equal(t, 1.0, vals[0].Num)
	assert.Equal(t, []string{"age", "city"}, out.Columns())

	orig, _ := ds.Values("age")
	assert.Equal(t, 25.0, orig[0].Num, "original dataset must be untouched")
}

func TestWithColumnAppendsNewName(t *testing.T) {
	ds := sample(t)

	out, err := ds.WithColumn("score", Floats("score", 1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "city", "score"}, out.Columns())
	assert.False(t, ds.Has("score"))
}

func TestWithColumnShapeMismatch(t *testing.T) {
	ds := sample(t)

	_, err := ds.WithColumn("age", Floats("age", 1, 2))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestFilterRowsPreservesOrder(t *testing.T) {
	ds := sample(t)

	out, err := ds.FilterRows([]bool{false, true, true, true})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())

	ages, _ := out.Values("age")
	assert.Equal(t, 30.0, ages[0].Num)
	assert.True(t, ages[1].IsNull())
	assert.Equal(t, 400.0, ages[2].Num)

	cities, _ := out.Values("city")
	assert.Equal(t, "NY", cities[0].Str)
	assert.Equal(t, "LA", cities[2].Str)

	assert.Equal(t, 4, ds.NumRows())

	_, err = ds.FilterRows([]bool{true})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestFilterRowsAllFalse(t *testing.T) {
	ds := sample(t)

	out, err := ds.FilterRows(make([]bool, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{"age", "city"}, out.Columns())
}

func TestRowKey(t *testing.T) {
	ds := MustNew(
		Floats("a", 1, 1, 1, math.NaN()),
		Labels("b", "x", "x", "y", "x"),
	)

	assert.Equal(t, ds.RowKey(0), ds.RowKey(1))
	assert.NotEqual(t, ds.RowKey(0), ds.RowKey(2))
	assert.NotEqual(t, ds.RowKey(0), ds.RowKey(3))
}

func TestColumnMapKeepsNulls(t *testing.T) {
	col := Floats("x", 1, math.NaN(), 3)
	doubled := col.Map(func(v float64) float64 { return v * 2 })

	assert.Equal(t, []float64{2, 6}, doubled.NonNullFloats())
	assert.True(t, doubled.IsNull(1))
	assert.Equal(t, []float64{1, 3}, col.NonNullFloats())
}

func TestColumnFillNull(t *testing.T) {
	col := Strings("c", str("a"), nil)
	filled := col.FillNull(String("z"))

	assert.Equal(t, 0, filled.NullCount())
	v, ok := filled.Str(1)
	assert.True(t, ok)
	assert.Equal(t, "z", v)
	assert.Equal(t, 1, col.NullCount())
}

func TestCloneIsIndependent(t *testing.T) {
	ds := sample(t)
	cp := ds.Clone()

	assert.Equal(t, ds.Columns(), cp.Columns())
	assert.Equal(t, ds.RowKey(3), cp.RowKey(3))
	assert.NotSame(t, ds.ColumnAt(0), cp.ColumnAt(0))
}
