// Package steps is the registry of pipeline step kinds.
//
// A step is described by a Spec: a kind name plus a loose parameter mapping
// as decoded from YAML or JSON. Build turns a Spec into an executable Step,
// decoding and validating its parameters. Unrecognized parameter keys are
// ignored and missing keys take the defaults documented on each kind.
//
//	impute           numeric_strategy (mean), categorical_strategy (mode),
//	                 column_strategies {column: strategy}, fill_value (0),
//	                 fill_label ("missing")
//	scale            strategy (standard), exclude_cols ([])
//	filter_outliers  strategy (iqr), columns (every numeric column when empty),
//	                 z_thresh (3.0), mode (sequential)
//	fill_zeros       strategy (mode)
//	drop_missing     threshold (0.5)
//	drop_duplicates  no parameters
package steps

import (
	"fmt"

	"github.com/ajitpratap0/tabprep/pkg/clean"
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/impute"
	"github.com/ajitpratap0/tabprep/pkg/outlier"
	"github.com/ajitpratap0/tabprep/pkg/scale"
)

// Kind names a step
type Kind string

const (
	Impute         Kind = "impute"
	Scale          Kind = "scale"
	FilterOutliers Kind = "filter_outliers"
	FillZeros      Kind = "fill_zeros"
	DropMissing    Kind = "drop_missing"
	DropDuplicates Kind = "drop_duplicates"
)

// Kinds lists every step kind in registry order
var Kinds = []Kind{Impute, Scale, FilterOutliers, FillZeros, DropMissing, DropDuplicates}

// KindNames returns the registry as strings
func KindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}

// ParseKind validates a step kind name
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", errors.UnknownStep(name, KindNames())
}

// Spec is a (kind, parameters) pair as supplied by configuration
type Spec struct {
	Kind   string                 `yaml:"kind" json:"kind" mapstructure:"kind"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty" mapstructure:"params"`
}

// Outcome is the result of applying one step
type Outcome struct {
	Dataset *dataset.Dataset
	// Warnings are non-fatal conditions raised by the step
	Warnings []errors.Warning
	// Diagnostics carries step-specific details such as outlier bounds
	Diagnostics map[string]interface{}
}

// Step transforms a dataset into a new one
type Step interface {
	Kind() Kind
	Apply(ds *dataset.Dataset) (Outcome, error)
}

// Build decodes spec into an executable step
func Build(spec Spec) (Step, error) {
	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}
	p := params(spec.Params)

	switch kind {
	case Impute:
		return buildImpute(p)
	case Scale:
		return buildScale(p)
	case FilterOutliers:
		return buildOutliers(p)
	case FillZeros:
		return buildFillZeros(p)
	case DropMissing:
		return buildDropMissing(p)
	default:
		return dropDuplicatesStep{}, nil
	}
}

// BuildAll builds every spec in order. An error names the index and kind of
// the offending spec.
func BuildAll(specs []Spec) ([]Step, error) {
	out := make([]Step, 0, len(specs))
	for i, spec := range specs {
		s, err := Build(spec)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), fmt.Sprintf("step %d (%s)", i, spec.Kind)).
				WithDetail("step_index", i).
				WithDetail("step_kind", spec.Kind)
		}
		out = append(out, s)
	}
	return out, nil
}

type imputeStep struct {
	imp *impute.Imputer
}

func (imputeStep) Kind() Kind { return Impute }

func (s imputeStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	out, warnings, err := s.imp.Apply(ds)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Dataset: out, Warnings: warnings}, nil
}

type scaleStep struct {
	sc *scale.Scaler
}

func (scaleStep) Kind() Kind { return Scale }

func (s scaleStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	candidates := s.sc.Candidates(ds)
	out, err := s.sc.Apply(ds)
	if err != nil {
		return Outcome{}, err
	}
	o := Outcome{Dataset: out, Diagnostics: map[string]interface{}{"scaled_columns": candidates}}
	if len(candidates) == 0 {
		o.Warnings = []errors.Warning{{
			Code:    errors.WarningNoCandidates,
			Message: "no numeric columns to scale",
		}}
	}
	return o, nil
}

type outlierStep struct {
	opts outlier.Options
}

func (outlierStep) Kind() Kind { return FilterOutliers }

func (s outlierStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	opts := s.opts
	if len(opts.Columns) == 0 {
		opts.Columns = ds.NumericColumns()
	}
	out, bounds, err := outlier.Apply(ds, opts)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Dataset: out, Diagnostics: map[string]interface{}{"bounds": bounds}}, nil
}

type fillZerosStep struct {
	strategy impute.Strategy
}

func (fillZerosStep) Kind() Kind { return FillZeros }

func (s fillZerosStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	out, warnings, err := impute.FillZeros(ds, s.strategy)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Dataset: out, Warnings: warnings}, nil
}

type dropMissingStep struct {
	threshold float64
}

func (dropMissingStep) Kind() Kind { return DropMissing }

func (s dropMissingStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	out, err := clean.DropMissing(ds, s.threshold)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Dataset: out}, nil
}

type dropDuplicatesStep struct{}

func (dropDuplicatesStep) Kind() Kind { return DropDuplicates }

func (dropDuplicatesStep) Apply(ds *dataset.Dataset) (Outcome, error) {
	out, err := clean.DropDuplicates(ds)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Dataset: out}, nil
}
