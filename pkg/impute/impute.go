// Package impute fills missing cells.
//
// Fill values are always derived from the non-null cells of the column being
// filled. A column without any value to derive a fill from is left unchanged
// and reported through an errors.WarningNoFillValue warning instead of
// failing the whole operation.
package impute

import (
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/stats"
)

// Strategy names a fill rule
type Strategy string

const (
	// Mean fills numeric nulls with the column mean
	Mean Strategy = "mean"
	// Median fills numeric nulls with the column median
	Median Strategy = "median"
	// Mode fills nulls with the most frequent value, ties to the first seen
	Mode Strategy = "mode"
	// Constant fills nulls with Options.FillValue (numeric, default 0) or
	// Options.FillLabel (categorical, default "missing")
	Constant Strategy = "constant"
)

// Strategies lists every imputation strategy in registry order
var Strategies = []Strategy{Mean, Median, Mode, Constant}

// DefaultFillLabel is the categorical constant used when none is configured
const DefaultFillLabel = "missing"

// StrategyNames returns the registry as strings
func StrategyNames() []string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = string(s)
	}
	return names
}

// ParseStrategy validates a strategy name against the registry
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case Mean, Median, Mode, Constant:
		return s, nil
	default:
		return "", errors.UnknownStrategy("impute", name, StrategyNames())
	}
}

// numericOnly reports whether the strategy needs numeric values
func (s Strategy) numericOnly() bool {
	return s == Mean || s == Median
}

// Options selects strategies for an imputation
type Options struct {
	// Numeric applies to numeric columns; defaults to Mean
	Numeric Strategy
	// Categorical applies to categorical columns; defaults to Mode
	Categorical Strategy
	// Columns overrides the per-kind strategy for individual columns
	Columns map[string]Strategy
	// FillValue is the numeric constant
	FillValue float64
	// FillLabel is the categorical constant; defaults to DefaultFillLabel
	FillLabel string
}

// Imputer fills missing values of every column that has at least one null
type Imputer struct {
	opts Options
}

// New validates opts and returns an Imputer
func New(opts Options) (*Imputer, error) {
	if opts.Numeric == "" {
		opts.Numeric = Mean
	}
	if opts.Categorical == "" {
		opts.Categorical = Mode
	}
	if opts.FillLabel == "" {
		opts.FillLabel = DefaultFillLabel
	}
	if _, err := ParseStrategy(string(opts.Numeric)); err != nil {
		return nil, err
	}
	if _, err := ParseStrategy(string(opts.Categorical)); err != nil {
		return nil, err
	}
	if opts.Categorical.numericOnly() {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"strategy %q cannot be applied to categorical columns", opts.Categorical).
			WithDetail("strategy", string(opts.Categorical))
	}
	for col, s := range opts.Columns {
		if _, err := ParseStrategy(string(s)); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnknownStrategy, "column "+col)
		}
	}
	return &Imputer{opts: opts}, nil
}

// Apply returns a copy of ds with nulls filled. ds is not modified.
func (im *Imputer) Apply(ds *dataset.Dataset) (*dataset.Dataset, []errors.Warning, error) {
	for col, s := range im.opts.Columns {
		kind, err := ds.ColumnKind(col)
		if err != nil {
			return nil, nil, err
		}
		if kind == dataset.Categorical && s.numericOnly() {
			return nil, nil, errors.TypeMismatch(col, dataset.Numeric.String(), kind.String()).
				WithDetail("strategy", string(s))
		}
	}

	var warnings []errors.Warning
	out := ds
	for _, name := range ds.Columns() {
		col, _ := ds.Column(name)
		if col.NullCount() == 0 {
			continue
		}
		strategy := im.strategyFor(col)
		fill, ok := im.fillValue(col, strategy)
		if !ok {
			warnings = append(warnings, errors.Warning{
				Code:    errors.WarningNoFillValue,
				Column:  name,
				Message: "column has no non-null values, left unchanged",
			})
			continue
		}
		var err error
		if out, err = out.WithColumn(name, col.FillNull(fill)); err != nil {
			return nil, nil, err
		}
	}
	return out, warnings, nil
}

func (im *Imputer) strategyFor(col *dataset.Column) Strategy {
	if s, ok := im.opts.Columns[col.Name()]; ok {
		return s
	}
	if col.Kind() == dataset.Numeric {
		return im.opts.Numeric
	}
	return im.opts.Categorical
}

func (im *Imputer) fillValue(col *dataset.Column, s Strategy) (dataset.Value, bool) {
	if col.Kind() == dataset.Categorical {
		switch s {
		case Constant:
			return dataset.String(im.opts.FillLabel), true
		default:
			v, ok := stats.Mode(col.NonNullStrings())
			return dataset.String(v), ok
		}
	}

	if s == Constant {
		return dataset.Float(im.opts.FillValue), true
	}
	vals := col.NonNullFloats()
	if len(vals) == 0 {
		return dataset.Value{}, false
	}
	switch s {
	case Median:
		return dataset.Float(stats.Median(vals)), true
	case Mode:
		v, _ := stats.Mode(vals)
		return dataset.Float(v), true
	default:
		return dataset.Float(stats.Mean(vals)), true
	}
}

// Apply is a convenience wrapper around New and Imputer.Apply
func Apply(ds *dataset.Dataset, opts Options) (*dataset.Dataset, []errors.Warning, error) {
	im, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return im.Apply(ds)
}
