package pipeline

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/outlier"
	"github.com/ajitpratap0/tabprep/pkg/steps"
	"github.com/ajitpratap0/tabprep/pkg/testutil"
)

func scenario(numeric string) []steps.Spec {
	return []steps.Spec{
		{Kind: "impute", Params: map[string]interface{}{
			"numeric_strategy":     numeric,
			"categorical_strategy": "mode",
		}},
		{Kind: "filter_outliers", Params: map[string]interface{}{
			"strategy": "iqr",
			"columns":  []string{"age"},
		}},
		{Kind: "scale", Params: map[string]interface{}{"strategy": "minmax"}},
	}
}

func TestEndToEnd(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	p, err := New(scenario("mean"))
	require.NoError(t, err)
	assert.Equal(t, Idle, p.State())

	res, err := p.Run(ctx, testutil.People())
	require.NoError(t, err)
	assert.Equal(t, Completed, res.State)
	assert.Equal(t, Completed, p.State())
	require.Len(t, res.Trace, 3)

	// imputed ages are [25, 30, 151.67, 400]; the IQR bounds of that column
	// are [-248.75, 491.25], so no row is an outlier
	bounds := res.Trace[1].Diagnostics["bounds"].([]outlier.Bounds)
	assert.InDelta(t, 491.25, bounds[0].Upper, 1e-9)
	assert.Equal(t, 4, res.Trace[1].RowsOut)

	assert.InDeltaSlice(t, []float64{0, 5.0 / 375, (455.0/3 - 25) / 375, 1},
		testutil.Floats(t, res.Dataset, "age"), 1e-9)
	assert.Equal(t, []string{"NY", "NY", "NY", "LA"}, testutil.Labels(t, res.Dataset, "city"))
}

func TestEndToEndRemovesOutlier(t *testing.T) {
	p, err := New(scenario("median"))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testutil.PeopleExtended())
	require.NoError(t, err)

	// median fill is 30; bounds [20.25, 40.25] drop the 400 row
	assert.Equal(t, 8, res.Trace[1].RowsIn)
	assert.Equal(t, 7, res.Trace[1].RowsOut)
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.5, 0.3, 1, 0.7, 0.2},
		testutil.Floats(t, res.Dataset, "age"), 1e-9)
	assert.Equal(t, []string{"NY", "NY", "NY", "LA", "NY", "SF", "NY"}, testutil.Labels(t, res.Dataset, "city"))
}

func TestInputIsNotMutated(t *testing.T) {
	in := testutil.People()
	p, err := New(scenario("mean"))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), in)
	require.NoError(t, err)

	age, _ := in.Column("age")
	assert.True(t, age.IsNull(2))
	v, _ := age.Float(3)
	assert.Equal(t, 400.0, v)
}

func TestFailureAbortsRun(t *testing.T) {
	rec := &RecordingSink{}
	p, err := New([]steps.Spec{
		{Kind: "impute"},
		{Kind: "filter_outliers", Params: map[string]interface{}{"columns": []string{"city"}}},
		{Kind: "scale"},
	}, WithSink(rec))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testutil.People())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	assert.Contains(t, err.Error(), "step 1 (filter_outliers)")

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 1, e.Details["step_index"])

	assert.Nil(t, res.Dataset, "no partial dataset is exposed")
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, Failed, p.State())
	assert.Len(t, res.Trace, 1)

	var statuses []Status
	for _, ev := range rec.Events() {
		statuses = append(statuses, ev.Status)
	}
	assert.Equal(t, []Status{StatusStarted, StatusCompleted, StatusStarted, StatusFailed}, statuses)
}

func TestUnknownStepKind(t *testing.T) {
	_, err := New([]steps.Spec{{Kind: "impute"}, {Kind: "normalize"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownStep))
	assert.Contains(t, err.Error(), "step 1 (normalize)")
}

type cancelStep struct {
	cancel context.CancelFunc
}

func (cancelStep) Kind() steps.Kind { return "cancel" }

func (s cancelStep) Apply(ds *dataset.Dataset) (steps.Outcome, error) {
	s.cancel()
	return steps.Outcome{Dataset: ds}, nil
}

func TestContextCheckedBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scaleStep, err := steps.Build(steps.Spec{Kind: "scale"})
	require.NoError(t, err)
	rec := &RecordingSink{}
	p := FromSteps([]steps.Step{cancelStep{cancel: cancel}, scaleStep}, WithSink(rec))

	res, err := p.Run(ctx, testutil.People())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "before step 1 (scale)")
	assert.Nil(t, res.Dataset)
	assert.Len(t, res.Trace, 1, "the running step completes")
	assert.Len(t, rec.Events(), 2, "the scale step never starts")
}

func TestWarningsSurfaceInTrace(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("empty", math.NaN(), math.NaN()),
		dataset.Floats("x", 1, math.NaN()),
	)
	p, err := New([]steps.Spec{{Kind: "impute"}})
	require.NoError(t, err)

	res, err := p.Run(context.Background(), ds)
	require.NoError(t, err)
	warnings := res.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.WarningNoFillValue, warnings[0].Code)
	assert.Equal(t, "empty", warnings[0].Column)
}

func TestEmptyPipelineReturnsInput(t *testing.T) {
	ds := testutil.People()
	p := FromSteps(nil, WithRunIDs(func() string { return "fixed" }))
	res, err := p.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Same(t, ds, res.Dataset)
	assert.Equal(t, "fixed", res.RunID)
	assert.Empty(t, res.Trace)
}

func TestRunIDsAreUnique(t *testing.T) {
	p := FromSteps(nil)
	a, err := p.Run(context.Background(), testutil.People())
	require.NoError(t, err)
	b, err := p.Run(context.Background(), testutil.People())
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestNilInput(t *testing.T) {
	_, err := FromSteps(nil).Run(context.Background(), nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestStateText(t *testing.T) {
	text, err := Failed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
	assert.Equal(t, "state(9)", State(9).String())
}
