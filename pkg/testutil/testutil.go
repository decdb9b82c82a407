// Package testutil provides testing utilities for tabprep
package testutil

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
)

// TestLogger creates a test logger that writes to the test output
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger creates a logger whose entries at or above level can be
// inspected by the test
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Str returns a pointer to s, for building nullable categorical columns
func Str(s string) *string { return &s }

// People returns the four-row table used throughout the pipeline tests:
// age=[25, 30, null, 400], city=["NY", "NY", null, "LA"]
func People() *dataset.Dataset {
	return dataset.MustNew(
		dataset.Floats("age", 25, 30, math.NaN(), 400),
		dataset.Strings("city", Str("NY"), Str("NY"), nil, Str("LA")),
	)
}

// PeopleExtended returns an eight-row variant of People whose age column
// has a clear IQR outlier: age=[25, 30, null, 400, 28, 35, 32, 27]
func PeopleExtended() *dataset.Dataset {
	return dataset.MustNew(
		dataset.Floats("age", 25, 30, math.NaN(), 400, 28, 35, 32, 27),
		dataset.Strings("city", Str("NY"), Str("NY"), nil, Str("LA"), Str("LA"), Str("NY"), Str("SF"), Str("NY")),
	)
}

// Floats returns every cell of a numeric column, failing the test if the
// column is absent or contains nulls
func Floats(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	require.Zero(t, col.NullCount(), "column %q has nulls", name)
	return col.NonNullFloats()
}

// Labels returns every non-null cell of a categorical column
func Labels(t *testing.T, ds *dataset.Dataset, name string) []string {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	return col.NonNullStrings()
}
