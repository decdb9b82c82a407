// Package stats implements the numeric summaries shared by the profiling,
// scaling, imputation and outlier packages.
//
// All functions take the non-null values of a column and never modify their
// input. Summaries of an empty slice are NaN; callers decide how an empty
// column is handled.
//
// Two deviation conventions are kept apart by name. StdDev is the sample
// deviation (n-1 denominator) used for z-scores and descriptive output.
// PopStdDev is the population deviation (n denominator) used by standard
// scaling; a standard-scaled column has PopStdDev exactly 1.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation. It is NaN for fewer than two values.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// PopStdDev returns the population standard deviation
func PopStdDev(x []float64) float64 {
	switch len(x) {
	case 0:
		return math.NaN()
	case 1:
		return 0
	}
	_, variance := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return math.Sqrt(variance * (n - 1) / n)
}

// MinMax returns the smallest and largest values
func MinMax(x []float64) (lo, hi float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(x), floats.Max(x)
}

// Quantile returns the p-quantile (0 <= p <= 1) using linear interpolation
// between the closest ranks: h = (n-1)p, q = x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h]).
// This matches the default quantile definition of most dataframe libraries.
func Quantile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Median returns the 0.5 quantile
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Quartiles returns Q1, the median and Q3 with a single sort
func Quartiles(x []float64) (q1, median, q3 float64) {
	if len(x) == 0 {
		nan := math.NaN()
		return nan, nan, nan
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.5), quantileSorted(sorted, 0.75)
}

// IQR returns Q3 - Q1
func IQR(x []float64) float64 {
	q1, _, q3 := Quartiles(x)
	return q3 - q1
}

// Mode returns the most frequent value. Ties go to the value encountered
// first. ok is false for an empty slice.
func Mode[T comparable](x []T) (mode T, ok bool) {
	counts := make(map[T]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	best := 0
	for _, v := range x {
		if c := counts[v]; c > best {
			best = c
			mode = v
		}
	}
	return mode, best > 0
}
