// Package tabprep profiles tabular data and prepares it for modeling.
//
// tabprep loads a table of numeric and categorical columns, fills missing
// values, removes outlier rows and rescales numeric columns through an
// ordered, configurable pipeline. Every transformation is pure: it takes an
// immutable dataset and returns a new one.
//
// # Packages
//
//   - dataset: the immutable table with nullable numeric and categorical columns
//   - stats: quantiles, moments and mode over plain float slices
//   - profile: read-only column statistics and reports
//   - impute: missing value and zero filling
//   - outlier: IQR and z-score row filtering
//   - scale: min-max, standard and robust scaling
//   - clean: row removal by null ratio, duplication or predicate
//   - steps: the step registry built from (kind, params) pairs
//   - config: YAML pipeline files
//   - tableio, arrowconv, compression: CSV, JSON and Arrow adapters
//
// The pipeline runner lives in internal/pipeline and the command line tool in
// cmd/tabprep.
//
// # Quick Start
//
//	ds, err := tableio.ReadFile("people.csv", tableio.CSVOptions{})
//	p, err := pipeline.New([]steps.Spec{
//	    {Kind: "impute", Params: map[string]interface{}{"numeric_strategy": "median"}},
//	    {Kind: "filter_outliers", Params: map[string]interface{}{"columns": []string{"age"}}},
//	    {Kind: "scale", Params: map[string]interface{}{"strategy": "minmax"}},
//	})
//	res, err := p.Run(ctx, ds)
//
// Or from the command line:
//
//	tabprep run --input people.csv --pipeline prep.yaml --output clean.csv
package tabprep
