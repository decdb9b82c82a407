// Package clean removes whole rows from a dataset: rows with too many nulls,
// exact duplicate rows and rows matching a caller predicate.
//
// Every function returns a new dataset and preserves the relative order of
// the rows it keeps.
package clean

import (
	"math"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// DefaultMissingThreshold is the null ratio above which DropMissing removes a row
const DefaultMissingThreshold = 0.5

// DropMissing removes every row whose fraction of null cells is strictly
// greater than threshold. threshold must lie in [0, 1].
func DropMissing(ds *dataset.Dataset, threshold float64) (*dataset.Dataset, error) {
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return nil, errors.Newf(errors.ErrorTypeValidation,
			"missing threshold must be within [0, 1], got %v", threshold).
			WithDetail("threshold", threshold)
	}
	width := ds.NumColumns()
	if width == 0 {
		return ds, nil
	}

	nulls := make([]int, ds.NumRows())
	for c := 0; c < width; c++ {
		col := ds.ColumnAt(c)
		for i := range nulls {
			if col.IsNull(i) {
				nulls[i]++
			}
		}
	}
	return filter(ds, func(i int) bool {
		return float64(nulls[i])/float64(width) <= threshold
	})
}

// DropDuplicates keeps the first occurrence of each distinct row. Two rows are
// duplicates when every cell is equal, with null equal to null.
func DropDuplicates(ds *dataset.Dataset) (*dataset.Dataset, error) {
	seen := make(map[string]struct{}, ds.NumRows())
	return filter(ds, func(i int) bool {
		key := ds.RowKey(i)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// DropWhere removes every row for which drop returns true
func DropWhere(ds *dataset.Dataset, drop func(Row) bool) (*dataset.Dataset, error) {
	if drop == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "drop predicate is nil")
	}
	return filter(ds, func(i int) bool {
		return !drop(Row{ds: ds, index: i})
	})
}

// Row is a read-only view of one dataset row passed to DropWhere predicates
type Row struct {
	ds    *dataset.Dataset
	index int
}

// Index returns the row position in the dataset being filtered
func (r Row) Index() int { return r.index }

// Value returns the named cell. An unknown column yields a null cell.
func (r Row) Value(column string) dataset.Value {
	col, err := r.ds.Column(column)
	if err != nil {
		return dataset.Null(dataset.Numeric)
	}
	return col.Value(r.index)
}

// Float returns the named numeric cell and whether it is non-null
func (r Row) Float(column string) (float64, bool) {
	v := r.Value(column)
	return v.Num, v.Valid && v.Kind() == dataset.Numeric
}

// Str returns the named categorical cell and whether it is non-null
func (r Row) Str(column string) (string, bool) {
	v := r.Value(column)
	return v.Str, v.Valid && v.Kind() == dataset.Categorical
}

// filter keeps the rows for which keep returns true. ds itself is returned
// when nothing is removed.
func filter(ds *dataset.Dataset, keep func(i int) bool) (*dataset.Dataset, error) {
	mask := make([]bool, ds.NumRows())
	removed := 0
	for i := range mask {
		mask[i] = keep(i)
		if !mask[i] {
			removed++
		}
	}
	if removed == 0 {
		return ds, nil
	}
	return ds.FilterRows(mask)
}
