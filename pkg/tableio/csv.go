// Package tableio reads and writes datasets as CSV and JSON files.
//
// A CSV file must start with a header row. Cells equal to one of the null
// tokens are null; a column is numeric when every non-null cell parses as a
// float64 and categorical otherwise. Files are transparently compressed or
// decompressed according to their extension (see package compression).
package tableio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// DefaultNullTokens are the cell values read as null
var DefaultNullTokens = []string{"", "NA", "NaN", "null", "None"}

// CSVOptions configures ReadCSV and WriteCSV
type CSVOptions struct {
	// Delimiter defaults to ','
	Delimiter rune
	// NullTokens defaults to DefaultNullTokens
	NullTokens []string
	// NullOutput is written for null cells; defaults to the empty string
	NullOutput string
}

func (o CSVOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o CSVOptions) nulls() map[string]bool {
	tokens := o.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// ReadCSV parses a CSV table with a header row
func ReadCSV(r io.Reader, opts CSVOptions) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.delimiter()

	header, err := cr.Read()
	if err == io.EOF {
		return dataset.Empty(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv header")
	}

	cells := make([][]string, len(header))
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv record")
		}
		for j, cell := range record {
			cells[j] = append(cells[j], cell)
		}
	}

	nulls := opts.nulls()
	cols := make([]*dataset.Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(name, cells[j], nulls)
	}
	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "invalid csv table")
	}
	return ds, nil
}

// inferColumn builds a numeric column when every non-null cell is a float
func inferColumn(name string, cells []string, nulls map[string]bool) *dataset.Column {
	valid := make([]bool, len(cells))
	nums := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if nulls[cell] {
			continue
		}
		valid[i] = true
		if !numeric {
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			continue
		}
		nums[i] = f
	}
	if numeric {
		return dataset.NewNumeric(name, nums, valid)
	}
	strs := make([]string, len(cells))
	for i, cell := range cells {
		if valid[i] {
			strs[i] = cell
		}
	}
	return dataset.NewCategorical(name, strs, valid)
}

// WriteCSV writes ds with a header row. Numbers use the shortest
// representation that round-trips.
func WriteCSV(w io.Writer, ds *dataset.Dataset, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.delimiter()

	if err := cw.Write(ds.Columns()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv header")
	}
	record := make([]string, ds.NumColumns())
	for i := 0; i < ds.NumRows(); i++ {
		for j, v := range ds.Row(i) {
			record[j] = formatCell(v, opts.NullOutput)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv record").
				WithDetail("row", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush csv")
	}
	return nil
}

func formatCell(v dataset.Value, null string) string {
	switch {
	case v.IsNull():
		return null
	case v.Kind() == dataset.Numeric:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}
