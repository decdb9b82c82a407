// Package arrowconv converts between datasets and Arrow record batches.
//
// Floating point and integer Arrow columns become numeric columns, string
// columns become categorical ones. Any other Arrow type is rejected. ToRecord
// writes numeric columns as float64 and categorical columns as utf8, both
// nullable; the record must be released by the caller.
package arrowconv

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// FromRecord copies rec into a dataset
func FromRecord(rec arrow.Record) (*dataset.Dataset, error) {
	schema := rec.Schema()
	cols := make([]*dataset.Column, rec.NumCols())
	for i := range cols {
		col, err := fromArray(schema.Field(i).Name, rec.Column(i))
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return dataset.New(cols...)
}

func fromArray(name string, arr arrow.Array) (*dataset.Column, error) {
	n := arr.Len()
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}

	if a, ok := arr.(*array.String); ok {
		strs := make([]string, n)
		for i := range strs {
			if valid[i] {
				strs[i] = a.Value(i)
			}
		}
		return dataset.NewCategorical(name, strs, valid), nil
	}
	if a, ok := arr.(*array.LargeString); ok {
		strs := make([]string, n)
		for i := range strs {
			if valid[i] {
				strs[i] = a.Value(i)
			}
		}
		return dataset.NewCategorical(name, strs, valid), nil
	}

	value, ok := numericAccessor(arr)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation,
			"column %q has unsupported arrow type %s", name, arr.DataType()).
			WithDetail("column", name).WithDetail("type", arr.DataType().String())
	}
	nums := make([]float64, n)
	for i := range nums {
		if valid[i] {
			nums[i] = value(i)
		}
	}
	return dataset.NewNumeric(name, nums, valid), nil
}

// numericAccessor returns a float64 view of integer and floating arrays
func numericAccessor(arr arrow.Array) (func(int) float64, bool) {
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value, true
	case *array.Float32:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Int64:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Int32:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Int16:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Int8:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Uint64:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Uint32:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Uint16:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Uint8:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	default:
		return nil, false
	}
}

// Schema returns the Arrow schema ToRecord produces for ds
func Schema(ds *dataset.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, ds.NumColumns())
	for i := range fields {
		col := ds.ColumnAt(i)
		dt := arrow.DataType(arrow.PrimitiveTypes.Float64)
		if col.Kind() == dataset.Categorical {
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord builds a record batch from ds. A nil mem uses the Go allocator.
func ToRecord(ds *dataset.Dataset, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	b := array.NewRecordBuilder(mem, Schema(ds))
	defer b.Release()

	rows := ds.NumRows()
	for i := 0; i < ds.NumColumns(); i++ {
		col := ds.ColumnAt(i)
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			fb.Reserve(rows)
			for r := 0; r < rows; r++ {
				if v, ok := col.Float(r); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			fb.Reserve(rows)
			for r := 0; r < rows; r++ {
				if v, ok := col.Str(r); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		}
	}
	return b.NewRecord()
}
