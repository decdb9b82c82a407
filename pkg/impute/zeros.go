package impute

import (
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/stats"
)

// ZeroStrategies lists the strategies accepted by FillZeros
var ZeroStrategies = []Strategy{Mode, Mean, Median}

// FillZeros replaces exact-zero cells of every numeric column with a
// statistic of that column's non-zero, non-null values. Zeros are excluded
// from the statistic. Columns whose only values are zero are left unchanged
// and reported with a warning.
func FillZeros(ds *dataset.Dataset, strategy Strategy) (*dataset.Dataset, []errors.Warning, error) {
	switch strategy {
	case Mode, Mean, Median:
	default:
		names := make([]string, len(ZeroStrategies))
		for i, s := range ZeroStrategies {
			names[i] = string(s)
		}
		return nil, nil, errors.UnknownStrategy("fill_zeros", string(strategy), names)
	}

	isZero := func(v dataset.Value) bool { return v.Valid && v.Num == 0 }

	var warnings []errors.Warning
	out := ds
	for _, name := range ds.NumericColumns() {
		col, _ := ds.Column(name)

		var nonZero []float64
		zeros := 0
		for _, v := range col.NonNullFloats() {
			if v == 0 {
				zeros++
				continue
			}
			nonZero = append(nonZero, v)
		}
		if zeros == 0 {
			continue
		}
		if len(nonZero) == 0 {
			warnings = append(warnings, errors.Warning{
				Code:    errors.WarningNoFillValue,
				Column:  name,
				Message: "column has no non-zero values, left unchanged",
			})
			continue
		}

		var fill float64
		switch strategy {
		case Mean:
			fill = stats.Mean(nonZero)
		case Median:
			fill = stats.Median(nonZero)
		default:
			fill, _ = stats.Mode(nonZero)
		}

		var err error
		if out, err = out.WithColumn(name, col.Replace(isZero, dataset.Float(fill))); err != nil {
			return nil, nil, err
		}
	}
	return out, warnings, nil
}
