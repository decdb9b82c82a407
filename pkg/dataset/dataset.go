// Package dataset provides the in-memory table consumed and produced by every
// tabprep transformation.
//
// A Dataset is an ordered set of uniquely named columns of equal length. Each
// column is either numeric (float64) or categorical (string) and nullable.
// Datasets and columns are immutable: every operation that changes a table
// returns a new Dataset and leaves the receiver untouched, so a dataset can be
// handed to any number of steps without copying first.
//
//	ds, err := dataset.New(
//	    dataset.Floats("age", 25, 30, math.NaN(), 400),
//	    dataset.Labels("city", "NY", "NY", "LA", "LA"),
//	)
//	adults, err := ds.FilterRows([]bool{true, true, false, true})
package dataset

import (
	"strconv"
	"strings"

	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// Dataset is an immutable table of named columns
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a dataset from columns in the given order. Every column must
// have the same length and names must be unique.
func New(cols ...*Column) (*Dataset, error) {
	d := &Dataset{
		columns: make([]*Column, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c == nil {
			return nil, errors.Newf(errors.ErrorTypeValidation, "column %d is nil", i)
		}
		if _, dup := d.index[c.name]; dup {
			return nil, errors.Newf(errors.ErrorTypeValidation, "duplicate column name %q", c.name).
				WithDetail("column", c.name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, errors.ShapeMismatch(c.name, d.rows, c.Len())
		}
		d.index[c.name] = len(d.columns)
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Dataset {
	d, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

// Empty returns a dataset with no columns and no rows
func Empty() *Dataset {
	return &Dataset{index: map[string]int{}}
}

// Columns returns the column names in order
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// NumRows returns the row count
func (d *Dataset) NumRows() int { return d.rows }

// NumColumns returns the column count
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Has reports whether a column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, errors.UnknownColumn(name)
	}
	return d.columns[i], nil
}

// ColumnAt returns the i-th column
func (d *Dataset) ColumnAt(i int) *Column { return d.columns[i] }

// ColumnKind returns the kind of the named column
func (d *Dataset) ColumnKind(name string) (Kind, error) {
	c, err := d.Column(name)
	if err != nil {
		return 0, err
	}
	return c.kind, nil
}

// Values returns the cells of the named column, nulls included
func (d *Dataset) Values(name string) ([]Value, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	return c.Values(), nil
}

// NumericColumns returns numeric column names in order
func (d *Dataset) NumericColumns() []string { return d.namesOf(Numeric) }

// CategoricalColumns returns categorical column names in order
func (d *Dataset) CategoricalColumns() []string { return d.namesOf(Categorical) }

func (d *Dataset) namesOf(kind Kind) []string {
	names := make([]string, 0, len(d.columns))
	for _, c := range d.columns {
		if c.kind == kind {
			names = append(names, c.name)
		}
	}
	return names
}

// WithColumn returns a new dataset where the named column is replaced by col
// (renamed to name). A name that does not exist is appended as a new last
// column. The column length must match the row count unless the dataset has
// no columns yet.
func (d *Dataset) WithColumn(name string, col *Column) (*Dataset, error) {
	if col == nil {
		return nil, errors.Newf(errors.ErrorTypeValidation, "column %q is nil", name)
	}
	if len(d.columns) > 0 && col.Len() != d.rows {
		return nil, errors.ShapeMismatch(name, d.rows, col.Len())
	}
	if col.name != name {
		col = col.Rename(name)
	}

	out := &Dataset{
		columns: append([]*Column(nil), d.columns...),
		index:   make(map[string]int, len(d.index)+1),
		rows:    col.Len(),
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	if i, ok := d.index[name]; ok {
		out.columns[i] = col
	} else {
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, col)
	}
	return out, nil
}

// FilterRows returns a new dataset with only the rows where mask is true,
// preserving relative row order
func (d *Dataset) FilterRows(mask []bool) (*Dataset, error) {
	if len(mask) != d.rows {
		return nil, errors.ShapeMismatch("mask", d.rows, len(mask))
	}
	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}
	out := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.index)),
		rows:    kept,
	}
	for i, c := range d.columns {
		out.columns[i] = c.take(mask)
		out.index[c.name] = i
	}
	return out, nil
}

// DropColumns returns a new dataset without the named columns
func (d *Dataset) DropColumns(names ...string) (*Dataset, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !d.Has(n) {
			return nil, errors.UnknownColumn(n)
		}
		drop[n] = true
	}
	out := &Dataset{index: make(map[string]int, len(d.columns)), rows: d.rows}
	for _, c := range d.columns {
		if drop[c.name] {
			continue
		}
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out, nil
}

// Select returns a new dataset with only the named columns, in the given order
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := d.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = d.rows
	}
	return out, nil
}

// Row returns the cells of row i in column order
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.columns))
	for j, c := range d.columns {
		row[j] = c.Value(i)
	}
	return row
}

// RowKey returns a string uniquely identifying the contents of row i.
// Two rows have equal keys exactly when every cell is equal.
func (d *Dataset) RowKey(i int) string {
	var b strings.Builder
	for j, c := range d.columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		v := c.Value(i)
		switch {
		case !v.Valid:
			b.WriteByte('N')
		case c.kind == Numeric:
			b.WriteByte('F')
			b.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
		default:
			b.WriteByte('S')
			b.WriteString(strconv.Quote(v.Str))
		}
	}
	return b.String()
}

// Clone returns an independent copy of the dataset
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.index)),
		rows:    d.rows,
	}
	for i, c := range d.columns {
		out.columns[i] = c.clone()
		out.index[c.name] = i
	}
	return out
}
