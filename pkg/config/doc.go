// Package config loads pipeline definitions from YAML files.
//
// # File format
//
//	name: clean-people
//	logging:
//	  level: ${LOG_LEVEL:-info}
//	steps:
//	  - kind: impute
//	    params:
//	      numeric_strategy: median
//	  - kind: filter_outliers
//	    params:
//	      strategy: iqr
//	      columns: [age]
//	  - kind: scale
//	    params:
//	      strategy: minmax
//
// # Environment Variable Substitution
//
// ${VAR} is replaced by the value of VAR before the YAML is parsed, and
// ${VAR:-default} falls back to default when VAR is unset or empty.
//
// Step kinds and parameters are validated when the file is loaded, so an
// unknown kind or an out-of-range parameter is reported before any data is
// read.
package config
