package clean

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

func str(s string) *string { return &s }

func sparse() *dataset.Dataset {
	nan := math.NaN()
	return dataset.MustNew(
		dataset.Floats("a", 1, nan, nan, 4),
		dataset.Floats("b", 1, 2, nan, nan),
		dataset.Strings("c", str("x"), nil, nil, str("y")),
		dataset.Floats("d", 1, 2, nan, 4),
	)
}

func TestDropMissing(t *testing.T) {
	// null ratios per row: 0, 0.5, 1, 0.25
	tests := []struct {
		threshold float64
		want      int
	}{
		{DefaultMissingThreshold, 3},
		{0.25, 2},
		{0, 1},
		{1, 4},
	}
	for _, tt := range tests {
		out, err := DropMissing(sparse(), tt.threshold)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.NumRows(), "threshold %v", tt.threshold)
	}
}

func TestDropMissingKeepsOrder(t *testing.T) {
	out, err := DropMissing(sparse(), 0.5)
	require.NoError(t, err)
	d, _ := out.Column("d")
	assert.Equal(t, []float64{1, 2, 4}, d.NonNullFloats())
}

func TestDropMissingRejectsBadThreshold(t *testing.T) {
	for _, th := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := DropMissing(sparse(), th)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	}
}

func TestDropDuplicates(t *testing.T) {
	nan := math.NaN()
	ds := dataset.MustNew(
		dataset.Floats("n", 1, 2, 1, nan, nan, 1),
		dataset.Strings("s", str("a"), str("b"), str("a"), nil, nil, str("b")),
	)
	out, err := DropDuplicates(ds)
	require.NoError(t, err)
	require.Equal(t, 4, out.NumRows())

	s, _ := out.Column("s")
	assert.True(t, s.IsNull(2), "null rows compare equal")
	v, _ := s.Str(3)
	assert.Equal(t, "b", v)

	again, err := DropDuplicates(out)
	require.NoError(t, err)
	assert.Same(t, out, again)
}

func TestDropWhere(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("age", 25, -3, 40, math.NaN()),
		dataset.Floats("salary", 100, 50, -1, 10),
	)
	out, err := DropWhere(ds, func(r Row) bool {
		age, okA := r.Float("age")
		salary, okS := r.Float("salary")
		return (okA && age < 0) || (okS && salary < 0)
	})
	require.NoError(t, err)

	age, _ := out.Column("age")
	assert.Equal(t, 2, age.Len())
	assert.True(t, age.IsNull(1))

	_, err = DropWhere(ds, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRowAccessors(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("n", 7),
		dataset.Labels("s", "x"),
	)
	var seen Row
	_, err := DropWhere(ds, func(r Row) bool { seen = r; return false })
	require.NoError(t, err)

	assert.Equal(t, 0, seen.Index())
	n, ok := seen.Float("n")
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)
	s, ok := seen.Str("s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = seen.Float("s")
	assert.False(t, ok, "categorical cell is not a float")
	assert.True(t, seen.Value("missing").IsNull())
}
