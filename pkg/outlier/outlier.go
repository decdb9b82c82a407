// Package outlier removes rows whose numeric values fall outside an
// acceptance range computed from the data.
//
// # Multi-column order
//
// With the default Sequential mode, target columns are processed in the
// order given and the bounds of each column are computed from the rows that
// survived the previous columns. Swapping two target columns can therefore
// change the result. Independent mode computes every column's bounds once on
// the input and keeps the rows that pass all of them; it is order-independent
// and must be asked for explicitly.
//
// # Nulls
//
// A null cell is never inside the bounds: rows with a null in a target
// column are removed. Bounds are computed from non-null values only.
package outlier

import (
	"math"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/stats"
)

// Strategy names an acceptance rule
type Strategy string

const (
	// IQR keeps values within [Q1 - 1.5 IQR, Q3 + 1.5 IQR]
	IQR Strategy = "iqr"
	// ZScore keeps values with |x - mean| / std <= threshold
	ZScore Strategy = "zscore"
)

// Strategies lists every outlier strategy in registry order
var Strategies = []Strategy{IQR, ZScore}

// DefaultThreshold is the z-score threshold used when none is configured
const DefaultThreshold = 3.0

// IQRMultiplier scales the IQR on each side of the quartiles
const IQRMultiplier = 1.5

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
	case IQR, ZScore:
		return s, nil
	default:
		return "", errors.UnknownStrategy("outlier", name, StrategyNames())
	}
}

// Mode selects how several target columns combine
type Mode string

const (
	// Sequential filters column by column, recomputing bounds on the survivors
	Sequential Mode = "sequential"
	// Independent computes all bounds on the input and intersects the masks
	Independent Mode = "independent"
)

// Options configures a Filter
type Options struct {
	// Strategy defaults to IQR
	Strategy Strategy
	// Columns are the numeric target columns, in application order
	Columns []string
	// Threshold is the z-score limit; defaults to DefaultThreshold
	Threshold float64
	// Mode defaults to Sequential
	Mode Mode
}

// Bounds reports the acceptance range applied to one column
type Bounds struct {
	Column  string  `json:"column"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Removed int     `json:"removed"`
}

// Filter removes outlier rows
type Filter struct {
	opts Options
}

// New validates opts and returns a Filter
func New(opts Options) (*Filter, error) {
	if opts.Strategy == "" {
		opts.Strategy = IQR
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, err
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Threshold < 0 || math.IsNaN(opts.Threshold) {
		return nil, errors.Newf(errors.ErrorTypeValidation, "z-score threshold must be positive, got %v", opts.Threshold)
	}
	switch opts.Mode {
	case "":
		opts.Mode = Sequential
	case Sequential, Independent:
	default:
		return nil, errors.UnknownStrategy("outlier mode", string(opts.Mode),
			[]string{string(Sequential), string(Independent)})
	}
	return &Filter{opts: opts}, nil
}

// Apply returns a copy of ds without outlier rows and the bounds applied to
// each target column, in target order
func (f *Filter) Apply(ds *dataset.Dataset) (*dataset.Dataset, []Bounds, error) {
	for _, name := range f.opts.Columns {
		kind, err := ds.ColumnKind(name)
		if err != nil {
			return nil, nil, err
		}
		if kind != dataset.Numeric {
			return nil, nil, errors.TypeMismatch(name, dataset.Numeric.String(), kind.String())
		}
	}

	if f.opts.Mode == Independent {
		return f.applyIndependent(ds)
	}

	report := make([]Bounds, 0, len(f.opts.Columns))
	cur := ds
	for _, name := range f.opts.Columns {
		col, _ := cur.Column(name)
		b, mask := f.bounds(col)
		report = append(report, b)
		if b.Removed == 0 {
			continue
		}
		var err error
		if cur, err = cur.FilterRows(mask); err != nil {
			return nil, nil, err
		}
	}
	return cur, report, nil
}

func (f *Filter) applyIndependent(ds *dataset.Dataset) (*dataset.Dataset, []Bounds, error) {
	keep := make([]bool, ds.NumRows())
	for i := range keep {
		keep[i] = true
	}
	removed := 0
	report := make([]Bounds, 0, len(f.opts.Columns))
	for _, name := range f.opts.Columns {
		col, _ := ds.Column(name)
		b, mask := f.bounds(col)
		report = append(report, b)
		for i, ok := range mask {
			if keep[i] && !ok {
				keep[i] = false
				removed++
			}
		}
	}
	if removed == 0 {
		return ds, report, nil
	}
	out, err := ds.FilterRows(keep)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}

// bounds computes the acceptance range of col and the keep mask over its rows
func (f *Filter) bounds(col *dataset.Column) (Bounds, []bool) {
	b := Bounds{Column: col.Name()}
	vals := col.NonNullFloats()

	accept := func(float64) bool { return true }
	switch {
	case len(vals) == 0:
		b.Lower, b.Upper = math.NaN(), math.NaN()
	case f.opts.Strategy == ZScore:
		mean, std := stats.Mean(vals), stats.StdDev(vals)
		if std == 0 || math.IsNaN(std) {
			// every value sits on the mean
			b.Lower, b.Upper = mean, mean
			break
		}
		b.Lower = mean - f.opts.Threshold*std
		b.Upper = mean + f.opts.Threshold*std
		accept = func(x float64) bool { return math.Abs((x-mean)/std) <= f.opts.Threshold }
	default:
		q1, _, q3 := stats.Quartiles(vals)
		iqr := q3 - q1
		b.Lower = q1 - IQRMultiplier*iqr
		b.Upper = q3 + IQRMultiplier*iqr
		lo, hi := b.Lower, b.Upper
		accept = func(x float64) bool { return x >= lo && x <= hi }
	}

	mask := make([]bool, col.Len())
	for i := range mask {
		v, ok := col.Float(i)
		mask[i] = ok && accept(v)
		if !mask[i] {
			b.Removed++
		}
	}
	return b, mask
}

// Apply is a convenience wrapper around New and Filter.Apply
func Apply(ds *dataset.Dataset, opts Options) (*dataset.Dataset, []Bounds, error) {
	f, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return f.Apply(ds)
}
