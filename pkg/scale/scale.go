// Package scale rescales numeric columns.
//
// Each column is transformed from statistics of its own non-null values;
// null cells stay null and categorical or excluded columns pass through
// unchanged. A column whose spread is zero under the chosen strategy
// (constant column, zero deviation, zero IQR) maps every value to 0.
//
// Standard scaling uses the population standard deviation, so a scaled
// column has mean 0 and population deviation 1. Every strategy is idempotent:
// scaling an already scaled column again leaves it unchanged.
package scale

import (
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/stats"
)

// Strategy names a normalization
type Strategy string

const (
	// MinMax maps values to [0, 1]: (x - min) / (max - min)
	MinMax Strategy = "minmax"
	// Standard centers on the mean and divides by the population deviation
	Standard Strategy = "standard"
	// Robust centers on the median and divides by the IQR
	Robust Strategy = "robust"
)

// Strategies lists every scaling strategy in registry order
var Strategies = []Strategy{MinMax, Standard, Robust}

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
	case MinMax, Standard, Robust:
		return s, nil
	default:
		return "", errors.UnknownStrategy("scale", name, StrategyNames())
	}
}

// Options configures a Scaler
type Options struct {
	// Strategy defaults to Standard
	Strategy Strategy
	// Exclude lists numeric columns to leave untouched
	Exclude []string
}

// Scaler rescales the numeric columns of a dataset
type Scaler struct {
	strategy Strategy
	exclude  map[string]bool
}

// New validates opts and returns a Scaler
func New(opts Options) (*Scaler, error) {
	if opts.Strategy == "" {
		opts.Strategy = Standard
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, err
	}
	exclude := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		exclude[name] = true
	}
	return &Scaler{strategy: opts.Strategy, exclude: exclude}, nil
}

// Candidates returns the numeric, non-excluded columns of ds in order
func (s *Scaler) Candidates(ds *dataset.Dataset) []string {
	var out []string
	for _, name := range ds.NumericColumns() {
		if !s.exclude[name] {
			out = append(out, name)
		}
	}
	return out
}

// Apply returns a copy of ds with every candidate column rescaled. When there
// is no candidate column ds is returned as is.
func (s *Scaler) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds
	for _, name := range s.Candidates(ds) {
		col, _ := ds.Column(name)
		scaled := col.Map(s.transform(col.NonNullFloats()))
		var err error
		if out, err = out.WithColumn(name, scaled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// transform returns the per-value function for a column with the given values
func (s *Scaler) transform(vals []float64) func(float64) float64 {
	if len(vals) == 0 {
		return identity
	}

	var center, spread float64
	switch s.strategy {
	case MinMax:
		lo, hi := stats.MinMax(vals)
		center, spread = lo, hi-lo
	case Robust:
		q1, median, q3 := stats.Quartiles(vals)
		center, spread = median, q3-q1
	default:
		center, spread = stats.Mean(vals), stats.PopStdDev(vals)
	}

	if spread == 0 {
		return zero
	}
	return func(x float64) float64 { return (x - center) / spread }
}

func identity(x float64) float64 { return x }

func zero(float64) float64 { return 0 }

// Apply is a convenience wrapper around New and Scaler.Apply
func Apply(ds *dataset.Dataset, opts Options) (*dataset.Dataset, error) {
	sc, err := New(opts)
	if err != nil {
		return nil, err
	}
	return sc.Apply(ds)
}
