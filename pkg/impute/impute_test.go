package impute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

func str(s string) *string { return &s }

func people() *dataset.Dataset {
	return dataset.MustNew(
		dataset.Floats("age", 25, 30, math.NaN(), 400),
		dataset.Strings("city", str("NY"), str("NY"), nil, str("LA")),
	)
}

func floats(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	require.Zero(t, col.NullCount())
	return col.NonNullFloats()
}

func TestMeanAndMode(t *testing.T) {
	ds := people()

	out, warnings, err := Apply(ds, Options{Numeric: Mean, Categorical: Mode})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	ages := floats(t, out, "age")
	assert.InDelta(t, 151.666667, ages[2], 1e-6)

	city, _ := out.Column("city")
	assert.Equal(t, []string{"NY", "NY", "NY", "LA"}, city.NonNullStrings())

	orig, _ := ds.Column("age")
	assert.Equal(t, 1, orig.NullCount(), "input must not be mutated")
}

func TestDefaultsAreMeanAndMode(t *testing.T) {
	out, _, err := Apply(people(), Options{})
	require.NoError(t, err)
	assert.InDelta(t, 151.666667, floats(t, out, "age")[2], 1e-6)
}

func TestMedian(t *testing.T) {
	out, _, err := Apply(people(), Options{Numeric: Median})
	require.NoError(t, err)
	assert.Equal(t, 30.0, floats(t, out, "age")[2])
}

func TestConstant(t *testing.T) {
	out, _, err := Apply(people(), Options{Numeric: Constant, Categorical: Constant})
	require.NoError(t, err)
	assert.Equal(t, 0.0, floats(t, out, "age")[2])

	city, _ := out.Column("city")
	v, _ := city.Str(2)
	assert.Equal(t, DefaultFillLabel, v)

	out, _, err = Apply(people(), Options{Numeric: Constant, FillValue: -1, Categorical: Constant, FillLabel: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, -1.0, floats(t, out, "age")[2])
	city, _ = out.Column("city")
	v, _ = city.Str(2)
	assert.Equal(t, "unknown", v)
}

func TestNullCountZeroProperty(t *testing.T) {
	cases := [][]float64{
		{1, math.NaN()},
		{math.NaN(), math.NaN(), 5},
		{2, 4, math.NaN(), 8, math.NaN()},
	}
	for _, s := range []Strategy{Mean, Median} {
		for _, vals := range cases {
			ds := dataset.MustNew(dataset.Floats("x", vals...))
			out, _, err := Apply(ds, Options{Numeric: s})
			require.NoError(t, err)
			col, _ := out.Column("x")
			assert.Zero(t, col.NullCount(), "strategy %s on %v", s, vals)
		}
	}
}

func TestModeTieBreakFirstSeen(t *testing.T) {
	ds := dataset.MustNew(dataset.Strings("c", str("b"), str("a"), str("a"), str("b"), nil))
	out, _, err := Apply(ds, Options{})
	require.NoError(t, err)

	col, _ := out.Column("c")
	v, _ := col.Str(4)
	assert.Equal(t, "b", v)
}

func TestAllNullColumnWarns(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("empty", math.NaN(), math.NaN()),
		dataset.Strings("label", nil, nil),
		dataset.Floats("ok", 1, math.NaN()),
	)

	out, warnings, err := Apply(ds, Options{})
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, errors.WarningNoFillValue, warnings[0].Code)
	assert.Equal(t, "empty", warnings[0].Column)
	assert.Equal(t, "label", warnings[1].Column)

	empty, _ := out.Column("empty")
	assert.Equal(t, 2, empty.NullCount())
	ok, _ := out.Column("ok")
	assert.Zero(t, ok.NullCount())
}

func TestNumericStrategyOnCategoricalFails(t *testing.T) {
	_, _, err := Apply(people(), Options{Columns: map[string]Strategy{"city": Mean}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, _, err = Apply(people(), Options{Categorical: Median})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestPerColumnOverride(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("a", 1, 2, 9, math.NaN()),
		dataset.Floats("b", 1, 2, 9, math.NaN()),
	)
	out, _, err := Apply(ds, Options{Numeric: Mean, Columns: map[string]Strategy{"b": Median}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, floats(t, out, "a")[3])
	assert.Equal(t, 2.0, floats(t, out, "b")[3])

	_, _, err = Apply(ds, Options{Columns: map[string]Strategy{"zzz": Median}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownColumn))
}

func TestUnknownStrategy(t *testing.T) {
	_, _, err := Apply(people(), Options{Numeric: "bogus"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownStrategy))
	assert.Contains(t, err.Error(), "[mean, median, mode, constant]")
}

func TestFillZeros(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("a", 0, 2, 2, 5, math.NaN()),
		dataset.Floats("zeros", 0, 0, 0, 0, 0),
		dataset.Labels("c", "x", "y", "z", "w", "v"),
	)

	out, warnings, err := FillZeros(ds, Mean)
	require.NoError(t, err)
	a, _ := out.Column("a")
	v, _ := a.Float(0)
	assert.InDelta(t, 3.0, v, 1e-12)
	assert.True(t, a.IsNull(4), "nulls are not zeros")

	require.Len(t, warnings, 1)
	assert.Equal(t, "zeros", warnings[0].Column)

	out, _, err = FillZeros(ds, Mode)
	require.NoError(t, err)
	a, _ = out.Column("a")
	v, _ = a.Float(0)
	assert.Equal(t, 2.0, v)

	out, _, err = FillZeros(ds, Median)
	require.NoError(t, err)
	a, _ = out.Column("a")
	v, _ = a.Float(0)
	assert.Equal(t, 2.0, v)

	_, _, err = FillZeros(ds, Constant)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownStrategy))
}
