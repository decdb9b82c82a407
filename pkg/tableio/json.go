package tableio

import (
	"io"
	"math"
	"sort"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/json"
)

// WriteJSON writes ds as an array of row objects with keys in column order.
// Null cells are written as JSON null.
func WriteJSON(w io.Writer, ds *dataset.Dataset) error {
	names := ds.Columns()
	keys := make([][]byte, len(names))
	for j, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode column name")
		}
		keys[j] = k
	}

	aw := json.NewArrayWriter(w)
	row := json.GetBuffer()
	defer json.PutBuffer(row)
	for i := 0; i < ds.NumRows(); i++ {
		row.Reset()
		row.WriteByte('{')
		for j, v := range ds.Row(i) {
			if j > 0 {
				row.WriteByte(',')
			}
			row.Write(keys[j])
			row.WriteByte(':')
			cell, err := marshalCell(v)
			if err != nil {
				_ = aw.Close()
				return errors.Wrap(err, errors.ErrorTypeData, "failed to encode cell").
					WithDetail("row", i).WithDetail("column", names[j])
			}
			row.Write(cell)
		}
		row.WriteByte('}')
		if err := aw.WriteRaw(row.Bytes()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write json")
		}
	}
	if err := aw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write json")
	}
	return nil
}

func marshalCell(v dataset.Value) ([]byte, error) {
	if v.IsNull() || (v.Kind() == dataset.Numeric && (math.IsInf(v.Num, 0) || math.IsNaN(v.Num))) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// ReadJSON parses an array of row objects. Columns are the union of the row
// keys, sorted by name; a key missing from a row is null in that row. A column
// is numeric when every non-null value is a JSON number.
func ReadJSON(r io.Reader) (*dataset.Dataset, error) {
	var rows []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return dataset.Empty(), nil
		}
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode json rows")
	}

	seen := map[string]bool{}
	var order []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	sort.Strings(order)

	cols := make([]*dataset.Column, len(order))
	for j, name := range order {
		values := make([]interface{}, len(rows))
		for i, row := range rows {
			values[i] = row[name]
		}
		col, err := jsonColumn(name, values)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return dataset.New(cols...)
}

func jsonColumn(name string, values []interface{}) (*dataset.Column, error) {
	numeric := true
	for _, v := range values {
		switch v.(type) {
		case nil, float64:
		case string, bool:
			numeric = false
		default:
			return nil, errors.Newf(errors.ErrorTypeData, "column %q holds a nested json value", name).
				WithDetail("column", name)
		}
	}

	valid := make([]bool, len(values))
	if numeric {
		nums := make([]float64, len(values))
		for i, v := range values {
			if f, ok := v.(float64); ok {
				nums[i], valid[i] = f, true
			}
		}
		return dataset.NewNumeric(name, nums, valid), nil
	}
	strs := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
		case string:
			strs[i], valid[i] = x, true
		default:
			b, _ := json.Marshal(x)
			strs[i], valid[i] = string(b), true
		}
	}
	return dataset.NewCategorical(name, strs, valid), nil
}
