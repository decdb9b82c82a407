// Package pipeline runs an ordered sequence of preparation steps over a
// dataset.
//
// # Overview
//
// A Pipeline threads a dataset through its steps in order: each step
// receives the output of the previous one, or the input for the first step.
// A run is atomic. Either every step succeeds and the final dataset is
// returned, or the first failing step aborts the run and no dataset is
// exposed.
//
// # Basic Usage
//
//	p, err := pipeline.New([]steps.Spec{
//	    {Kind: "impute", Params: map[string]interface{}{"numeric_strategy": "mean"}},
//	    {Kind: "filter_outliers", Params: map[string]interface{}{"columns": []string{"age"}}},
//	    {Kind: "scale", Params: map[string]interface{}{"strategy": "minmax"}},
//	}, pipeline.WithSink(pipeline.NewLoggerSink(logger)))
//
//	res, err := p.Run(ctx, ds)
//
// # Execution
//
// Runs are single-threaded and synchronous. The context is checked between
// steps, never in the middle of one, so a step either fully applies or does
// not run at all. The pipeline performs no retries.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/metrics"
	"github.com/ajitpratap0/tabprep/pkg/steps"
)

// State is the lifecycle state of a pipeline run
type State int

const (
	// Idle means constructed and not yet run
	Idle State = iota
	// Running means steps are executing
	Running
	// Completed means every step succeeded
	Completed
	// Failed means a step failed or the run was canceled
	Failed
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TraceEntry describes one successfully applied step
type TraceEntry struct {
	Index       int                    `json:"index"`
	Kind        steps.Kind             `json:"kind"`
	RowsIn      int                    `json:"rows_in"`
	RowsOut     int                    `json:"rows_out"`
	Duration    time.Duration          `json:"duration"`
	Warnings    []errors.Warning       `json:"warnings,omitempty"`
	Diagnostics map[string]interface{} `json:"diagnostics,omitempty"`
}

// Result is the outcome of a run
type Result struct {
	RunID string `json:"run_id"`
	// Dataset is the final dataset; nil unless State is Completed
	Dataset *dataset.Dataset `json:"-"`
	State   State            `json:"state"`
	// Trace lists the steps that were applied, in order
	Trace []TraceEntry `json:"trace"`
}

// Warnings returns the warnings of every applied step in step order
func (r *Result) Warnings() []errors.Warning {
	var out []errors.Warning
	for _, e := range r.Trace {
		out = append(out, e.Warnings...)
	}
	return out
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithSink sets the event sink notified of every step
func WithSink(sink EventSink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithRunIDs overrides the run ID generator
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newRunID = next
		}
	}
}

// Pipeline is an ordered sequence of steps. It keeps no dataset between runs.
type Pipeline struct {
	steps    []steps.Step
	sink     EventSink
	newRunID func() string

	mu    sync.Mutex
	state State
}

// New builds a pipeline from step specs. It fails on the first spec with an
// unknown kind or invalid parameters.
func New(specs []steps.Spec, opts ...Option) (*Pipeline, error) {
	built, err := steps.BuildAll(specs)
	if err != nil {
		return nil, err
	}
	return FromSteps(built, opts...), nil
}

// FromSteps builds a pipeline from already constructed steps
func FromSteps(s []steps.Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:    append([]steps.Step(nil), s...),
		sink:     nopSink{},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Len returns the number of steps
func (p *Pipeline) Len() int { return len(p.steps) }

// State returns the state of the most recent run
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run applies every step to ds in order. ds itself is never modified. On
// failure the returned Result carries the trace of the steps that succeeded
// and a nil Dataset, and the error names the failing step index and kind.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if ds == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "input dataset is nil")
	}
	p.setState(Running)
	res := &Result{RunID: p.newRunID(), State: Running, Trace: make([]TraceEntry, 0, len(p.steps))}

	fail := func(err error) (*Result, error) {
		p.setState(Failed)
		res.State = Failed
		return res, err
	}

	cur := ds
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fail(errors.Wrap(err, errors.ErrorTypeInternal,
				fmt.Sprintf("run canceled before step %d (%s)", i, step.Kind())).
				WithDetail("step_index", i).
				WithDetail("step_kind", string(step.Kind())))
		}

		ev := Event{RunID: res.RunID, Index: i, Kind: step.Kind(), Status: StatusStarted, RowsIn: cur.NumRows()}
		p.sink.OnStep(ctx, ev)

		timer := metrics.NewTimer()
		out, err := step.Apply(cur)
		if err == nil && out.Dataset == nil {
			err = errors.New(errors.ErrorTypeInternal, "step returned no dataset")
		}
		ev.Duration = timer.Stop()

		if err != nil {
			ev.Status, ev.Err = StatusFailed, err
			p.sink.OnStep(ctx, ev)
			return fail(errors.Wrap(err, errors.TypeOf(err), fmt.Sprintf("step %d (%s)", i, step.Kind())).
				WithDetail("step_index", i).
				WithDetail("step_kind", string(step.Kind())))
		}

		ev.Status = StatusCompleted
		ev.RowsOut = out.Dataset.NumRows()
		ev.Warnings = out.Warnings
		ev.Diagnostics = out.Diagnostics
		p.sink.OnStep(ctx, ev)

		res.Trace = append(res.Trace, TraceEntry{
			Index:       i,
			Kind:        step.Kind(),
			RowsIn:      ev.RowsIn,
			RowsOut:     ev.RowsOut,
			Duration:    ev.Duration,
			Warnings:    out.Warnings,
			Diagnostics: out.Diagnostics,
		})
		cur = out.Dataset
	}

	p.setState(Completed)
	res.State = Completed
	res.Dataset = cur
	return res, nil
}
