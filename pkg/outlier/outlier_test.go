package outlier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

func floats(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	return col.NonNullFloats()
}

func TestIQRKeepsValueInsideBounds(t *testing.T) {
	// ages after mean imputation: bounds are [-248.75, 491.25]
	ds := dataset.MustNew(
		dataset.Floats("age", 25, 30, 455.0/3, 400),
		dataset.Labels("city", "NY", "NY", "NY", "LA"),
	)
	out, report, err := Apply(ds, Options{Strategy: IQR, Columns: []string{"age"}})
	require.NoError(t, err)

	assert.Equal(t, 4, out.NumRows())
	require.Len(t, report, 1)
	assert.InDelta(t, -248.75, report[0].Lower, 1e-9)
	assert.InDelta(t, 491.25, report[0].Upper, 1e-9)
	assert.Zero(t, report[0].Removed)
}

func TestIQRRemovesOutlier(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("age", 25, 30, 400, 28, 35, 32, 27),
		dataset.Labels("id", "a", "b", "c", "d", "e", "f", "g"),
	)
	out, report, err := Apply(ds, Options{Columns: []string{"age"}})
	require.NoError(t, err)

	assert.Equal(t, []float64{25, 30, 28, 35, 32, 27}, floats(t, out, "age"))
	id, _ := out.Column("id")
	assert.Equal(t, []string{"a", "b", "d", "e", "f", "g"}, id.NonNullStrings())
	assert.Equal(t, Bounds{Column: "age", Lower: 18.5, Upper: 42.5, Removed: 1}, report[0])
	assert.Equal(t, 7, ds.NumRows(), "input must not be mutated")
}

func TestSingleColumnBoundsProperty(t *testing.T) {
	inputs := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 100},
		{-50, 0, 1, 1, 2, 3, 80},
		{10, 10, 10, 10, 20},
	}
	for _, s := range Strategies {
		for _, vals := range inputs {
			ds := dataset.MustNew(dataset.Floats("x", vals...))
			out, report, err := Apply(ds, Options{Strategy: s, Columns: []string{"x"}, Threshold: 2})
			require.NoError(t, err)

			b := report[0]
			kept := floats(t, out, "x")
			for _, v := range kept {
				assert.True(t, v >= b.Lower && v <= b.Upper, "%s kept %v outside [%v, %v]", s, v, b.Lower, b.Upper)
			}
			assert.Equal(t, len(vals)-len(kept), b.Removed)
		}
	}
}

func TestZScore(t *testing.T) {
	vals := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 100}
	ds := dataset.MustNew(dataset.Floats("x", vals...))

	// sample std is ~29.85, so z(100) is ~3.02
	out, _, err := Apply(ds, Options{Strategy: ZScore, Columns: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 10, out.NumRows())

	out, _, err = Apply(ds, Options{Strategy: ZScore, Columns: []string{"x"}, Threshold: 4})
	require.NoError(t, err)
	assert.Equal(t, 11, out.NumRows())
}

func TestZScoreConstantColumnKeepsRows(t *testing.T) {
	ds := dataset.MustNew(dataset.Floats("x", 5, 5, 5, math.NaN()))
	out, _, err := Apply(ds, Options{Strategy: ZScore, Columns: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, floats(t, out, "x"))
}

func TestNullTargetRowsAreRemoved(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("x", 1, math.NaN(), 2, 3),
		dataset.Floats("y", math.NaN(), 1, 1, 1),
	)
	out, _, err := Apply(ds, Options{Columns: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())

	y, _ := out.Column("y")
	assert.True(t, y.IsNull(0), "nulls outside the targets are untouched")
}

// Sequential filtering recomputes bounds on the rows left by earlier columns,
// so the order of target columns matters.
func TestSequentialOrderSensitivity(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("c1", 1, 2, 3, 4, 5, 100),
		dataset.Floats("c2", 10, 11, 12, 13, 20, 200),
	)

	c1First, _, err := Apply(ds, Options{Columns: []string{"c1", "c2"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, floats(t, c1First, "c1"))

	c2First, _, err := Apply(ds, Options{Columns: []string{"c2", "c1"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, floats(t, c2First, "c1"))
}

func TestIndependentModeIgnoresOrder(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("c1", 1, 2, 3, 4, 5, 100),
		dataset.Floats("c2", 10, 11, 12, 13, 20, 200),
	)
	for _, cols := range [][]string{{"c1", "c2"}, {"c2", "c1"}} {
		out, report, err := Apply(ds, Options{Columns: cols, Mode: Independent})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4, 5}, floats(t, out, "c1"), cols)
		assert.Len(t, report, 2)
	}
}

func TestEmptyDataset(t *testing.T) {
	ds := dataset.MustNew(dataset.Floats("x"))
	out, _, err := Apply(ds, Options{Columns: []string{"x"}})
	require.NoError(t, err)
	assert.Zero(t, out.NumRows())
}

func TestNoTargetsIsNoop(t *testing.T) {
	ds := dataset.MustNew(dataset.Floats("x", 1, 1000))
	out, report, err := Apply(ds, Options{})
	require.NoError(t, err)
	assert.Same(t, ds, out)
	assert.Empty(t, report)
}

func TestValidation(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("x", 1, 2),
		dataset.Labels("c", "a", "b"),
	)

	tests := []struct {
		name    string
		opts    Options
		errType errors.ErrorType
		msg     string
	}{
		{"unknown column", Options{Columns: []string{"nope"}}, errors.ErrorTypeUnknownColumn, `"nope"`},
		{"categorical column", Options{Columns: []string{"c"}}, errors.ErrorTypeTypeMismatch, "categorical"},
		{"unknown strategy", Options{Strategy: "IQR", Columns: []string{"x"}}, errors.ErrorTypeUnknownStrategy, "[iqr, zscore]"},
		{"negative threshold", Options{Strategy: ZScore, Threshold: -1}, errors.ErrorTypeValidation, "threshold"},
		{"unknown mode", Options{Mode: "parallel"}, errors.ErrorTypeUnknownStrategy, "[sequential, independent]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(ds, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), err.Error())
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
