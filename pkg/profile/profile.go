// Package profile computes descriptive statistics over a dataset.
//
// A Statistics value is a point-in-time snapshot: it reads the dataset it was
// built from and caches nothing, so every method performs a fresh pass over
// the columns it needs. Because datasets are immutable the snapshot can never
// observe a half-updated table; after a transformation, build a new snapshot
// from the transformed dataset.
package profile

import (
	"math/rand"
	"time"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/stats"
)

// Statistics is a read-only view over a dataset
type Statistics struct {
	ds  *dataset.Dataset
	rng *rand.Rand
}

// Option configures a Statistics snapshot
type Option func(*Statistics)

// WithRand sets the random source used by Sample
func WithRand(rng *rand.Rand) Option {
	return func(s *Statistics) { s.rng = rng }
}

// New returns a statistics snapshot of ds
func New(ds *dataset.Dataset, opts ...Option) *Statistics {
	s := &Statistics{ds: ds}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // sampling, not security
	}
	return s
}

// BasicStats holds the table dimensions
type BasicStats struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
	TotalCells  int `json:"total_cells"`
}

// Basic returns the table dimensions
func (s *Statistics) Basic() BasicStats {
	return BasicStats{
		RowCount:    s.ds.NumRows(),
		ColumnCount: s.ds.NumColumns(),
		TotalCells:  s.ds.NumRows() * s.ds.NumColumns(),
	}
}

// NullCounts maps each column that has at least one null to its null count
func (s *Statistics) NullCounts() map[string]int {
	out := make(map[string]int)
	for i := 0; i < s.ds.NumColumns(); i++ {
		c := s.ds.ColumnAt(i)
		if n := c.NullCount(); n > 0 {
			out[c.Name()] = n
		}
	}
	return out
}

// ZeroCounts maps every numeric column to its count of exact-zero cells
func (s *Statistics) ZeroCounts() map[string]int {
	out := make(map[string]int)
	for i := 0; i < s.ds.NumColumns(); i++ {
		c := s.ds.ColumnAt(i)
		if c.Kind() != dataset.Numeric {
			continue
		}
		n := 0
		for j := 0; j < c.Len(); j++ {
			if v, ok := c.Float(j); ok && v == 0 {
				n++
			}
		}
		out[c.Name()] = n
	}
	return out
}

// ZeroReport is ZeroCounts in column order plus the table total
type ZeroReport struct {
	Columns []ColumnCount `json:"columns"`
	Total   int           `json:"total"`
}

// ColumnCount pairs a column name with a count
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Zeros returns the zero count of every numeric column in order, with a total
func (s *Statistics) Zeros() ZeroReport {
	counts := s.ZeroCounts()
	report := ZeroReport{Columns: make([]ColumnCount, 0, len(counts))}
	for _, name := range s.ds.NumericColumns() {
		report.Columns = append(report.Columns, ColumnCount{Column: name, Count: counts[name]})
		report.Total += counts[name]
	}
	return report
}

// DuplicateRowCount returns the number of rows that exactly duplicate an
// earlier row. The first occurrence of each distinct row is not counted.
func (s *Statistics) DuplicateRowCount() int {
	seen := make(map[string]struct{}, s.ds.NumRows())
	dups := 0
	for i := 0; i < s.ds.NumRows(); i++ {
		key := s.ds.RowKey(i)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// ValueCount is a value with its number of occurrences
type ValueCount struct {
	Value interface{} `json:"value"`
	Count int         `json:"count"`
}

// DuplicateValues returns, per column, every non-null value that occurs more
// than once, in order of first occurrence. Columns without repeats are omitted.
func (s *Statistics) DuplicateValues() map[string][]ValueCount {
	out := make(map[string][]ValueCount)
	for i := 0; i < s.ds.NumColumns(); i++ {
		c := s.ds.ColumnAt(i)
		counts := make(map[interface{}]int)
		order := make([]interface{}, 0)
		for j := 0; j < c.Len(); j++ {
			v := c.Value(j).Interface()
			if v == nil {
				continue
			}
			if counts[v] == 0 {
				order = append(order, v)
			}
			counts[v]++
		}
		var repeated []ValueCount
		for _, v := range order {
			if counts[v] > 1 {
				repeated = append(repeated, ValueCount{Value: v, Count: counts[v]})
			}
		}
		if len(repeated) > 0 {
			out[c.Name()] = repeated
		}
	}
	return out
}

// NumericColumns returns numeric column names in dataset order
func (s *Statistics) NumericColumns() []string { return s.ds.NumericColumns() }

// CategoricalColumns returns categorical column names in dataset order
func (s *Statistics) CategoricalColumns() []string { return s.ds.CategoricalColumns() }

// Sample returns min(n, rows) uniformly chosen rows without replacement,
// kept in their original relative order. n larger than the row count is
// clamped; n <= 0 yields an empty dataset.
func (s *Statistics) Sample(n int) *dataset.Dataset {
	rows := s.ds.NumRows()
	if n > rows {
		n = rows
	}
	if n < 0 {
		n = 0
	}
	mask := make([]bool, rows)
	for _, i := range s.rng.Perm(rows)[:n] {
		mask[i] = true
	}
	out, _ := s.ds.FilterRows(mask)
	return out
}

// SplitTarget returns the dataset without the target column, and the target column
func (s *Statistics) SplitTarget(target string) (*dataset.Dataset, *dataset.Column, error) {
	col, err := s.ds.Column(target)
	if err != nil {
		return nil, nil, err
	}
	features, err := s.ds.DropColumns(target)
	if err != nil {
		return nil, nil, err
	}
	return features, col, nil
}

// ColumnSummary describes a single column. Numeric fields are set for
// numeric columns with at least one value, Distinct/Top for categorical ones.
type ColumnSummary struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Count    int      `json:"count"`
	Nulls    int      `json:"nulls"`
	Mean     *float64 `json:"mean,omitempty"`
	StdDev   *float64 `json:"std,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Q1       *float64 `json:"q1,omitempty"`
	Median   *float64 `json:"median,omitempty"`
	Q3       *float64 `json:"q3,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Distinct int      `json:"distinct,omitempty"`
	Top      *string  `json:"top,omitempty"`
	TopFreq  int      `json:"top_freq,omitempty"`
}

// Describe summarizes every column in dataset order
func (s *Statistics) Describe() []ColumnSummary {
	out := make([]ColumnSummary, 0, s.ds.NumColumns())
	for i := 0; i < s.ds.NumColumns(); i++ {
		out = append(out, describe(s.ds.ColumnAt(i)))
	}
	return out
}

func describe(c *dataset.Column) ColumnSummary {
	sum := ColumnSummary{
		Name:  c.Name(),
		Kind:  c.Kind().String(),
		Nulls: c.NullCount(),
	}
	sum.Count = c.Len() - sum.Nulls

	if c.Kind() == dataset.Numeric {
		vals := c.NonNullFloats()
		if len(vals) == 0 {
			return sum
		}
		lo, hi := stats.MinMax(vals)
		q1, med, q3 := stats.Quartiles(vals)
		sum.Mean = ptr(stats.Mean(vals))
		if len(vals) > 1 {
			sum.StdDev = ptr(stats.StdDev(vals))
		}
		sum.Min, sum.Q1, sum.Median, sum.Q3, sum.Max = ptr(lo), ptr(q1), ptr(med), ptr(q3), ptr(hi)
		return sum
	}

	vals := c.NonNullStrings()
	distinct := make(map[string]int, len(vals))
	for _, v := range vals {
		distinct[v]++
	}
	sum.Distinct = len(distinct)
	if top, ok := stats.Mode(vals); ok {
		sum.Top = &top
		sum.TopFreq = distinct[top]
	}
	return sum
}

func ptr(f float64) *float64 { return &f }

// Report bundles every snapshot metric for serialization
type Report struct {
	Basic              BasicStats              `json:"basic"`
	NullCounts         map[string]int          `json:"null_counts"`
	ZeroCounts         map[string]int          `json:"zero_counts"`
	DuplicateRows      int                     `json:"duplicate_rows"`
	DuplicateValues    map[string][]ValueCount `json:"duplicate_values,omitempty"`
	NumericColumns     []string                `json:"numeric_columns"`
	CategoricalColumns []string                `json:"categorical_columns"`
	Columns            []ColumnSummary         `json:"columns"`
}

// Report computes every metric of the snapshot
func (s *Statistics) Report() Report {
	return Report{
		Basic:              s.Basic(),
		NullCounts:         s.NullCounts(),
		ZeroCounts:         s.ZeroCounts(),
		DuplicateRows:      s.DuplicateRowCount(),
		DuplicateValues:    s.DuplicateValues(),
		NumericColumns:     s.NumericColumns(),
		CategoricalColumns: s.CategoricalColumns(),
		Columns:            s.Describe(),
	}
}
