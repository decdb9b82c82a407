package steps

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"github.com/ajitpratap0/tabprep/pkg/clean"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/impute"
	"github.com/ajitpratap0/tabprep/pkg/outlier"
	"github.com/ajitpratap0/tabprep/pkg/scale"
)

// Parameter keys
const (
	ParamNumericStrategy     = "numeric_strategy"
	ParamCategoricalStrategy = "categorical_strategy"
	ParamColumnStrategies    = "column_strategies"
	ParamFillValue           = "fill_value"
	ParamFillLabel           = "fill_label"
	ParamStrategy            = "strategy"
	ParamExcludeCols         = "exclude_cols"
	ParamColumns             = "columns"
	ParamZThresh             = "z_thresh"
	ParamMode                = "mode"
	ParamThreshold           = "threshold"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report parameter keys rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("param"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type imputeParams struct {
	Numeric     string            `param:"numeric_strategy"`
	Categorical string            `param:"categorical_strategy"`
	Columns     map[string]string `param:"column_strategies" validate:"dive,keys,required,endkeys,required"`
	FillValue   float64           `param:"fill_value"`
	FillLabel   string            `param:"fill_label" validate:"required"`
}

type scaleParams struct {
	Strategy string   `param:"strategy"`
	Exclude  []string `param:"exclude_cols" validate:"dive,required"`
}

type outlierParams struct {
	Strategy  string   `param:"strategy"`
	Columns   []string `param:"columns" validate:"omitempty,dive,required"`
	Threshold float64  `param:"z_thresh" validate:"gt=0"`
	Mode      string   `param:"mode"`
}

type fillZerosParams struct {
	Strategy string `param:"strategy" validate:"required"`
}

type dropMissingParams struct {
	Threshold float64 `param:"threshold" validate:"gte=0,lte=1"`
}

// params is a loosely typed parameter mapping. Scalars are coerced with
// cast, so "3.5" and 3 are both accepted for a float parameter.
type params map[string]interface{}

func (p params) has(key string) bool {
	_, ok := p[key]
	return ok && p[key] != nil
}

func (p params) getString(key, def string) (string, error) {
	if !p.has(key) {
		return def, nil
	}
	s, err := cast.ToStringE(p[key])
	if err != nil {
		return "", paramError(key, err)
	}
	return s, nil
}

func (p params) getFloat(key string, def float64) (float64, error) {
	if !p.has(key) {
		return def, nil
	}
	f, err := cast.ToFloat64E(p[key])
	if err != nil {
		return 0, paramError(key, err)
	}
	return f, nil
}

func (p params) getList(key string, def []string) ([]string, error) {
	if !p.has(key) {
		return def, nil
	}
	if s, ok := p[key].(string); ok {
		return splitList(s), nil
	}
	out, err := cast.ToStringSliceE(p[key])
	if err != nil {
		return nil, paramError(key, err)
	}
	return out, nil
}

func (p params) getMap(key string) (map[string]string, error) {
	if !p.has(key) {
		return nil, nil
	}
	m, err := cast.ToStringMapStringE(p[key])
	if err != nil {
		return nil, paramError(key, err)
	}
	return m, nil
}

// splitList accepts "a,b" as well as "a b" for list parameters
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimSpace(f))
	}
	return out
}

func paramError(key string, err error) error {
	return errors.Wrap(err, errors.ErrorTypeValidation, fmt.Sprintf("invalid parameter %q", key)).
		WithDetail("param", key)
}

// check runs struct validation and converts failures to a validation error
func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.Wrap(err, errors.ErrorTypeValidation, "invalid step parameters")
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = formatFieldError(fe)
	}
	return errors.New(errors.ErrorTypeValidation, strings.Join(msgs, "; ")).
		WithDetail("param", fieldErrs[0].Field())
}

func formatFieldError(fe validator.FieldError) string {
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("parameter %q must not be empty", name)
	case "gt":
		return fmt.Sprintf("parameter %q must be greater than %s, got %v", name, fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("parameter %q must be within [0, 1], got %v", name, fe.Value())
	default:
		return fmt.Sprintf("parameter %q failed %s validation", name, fe.Tag())
	}
}

func buildImpute(p params) (Step, error) {
	var (
		ip  imputeParams
		err error
	)
	if ip.Numeric, err = p.getString(ParamNumericStrategy, string(impute.Mean)); err != nil {
		return nil, err
	}
	if ip.Categorical, err = p.getString(ParamCategoricalStrategy, string(impute.Mode)); err != nil {
		return nil, err
	}
	if ip.Columns, err = p.getMap(ParamColumnStrategies); err != nil {
		return nil, err
	}
	if ip.FillValue, err = p.getFloat(ParamFillValue, 0); err != nil {
		return nil, err
	}
	if ip.FillLabel, err = p.getString(ParamFillLabel, impute.DefaultFillLabel); err != nil {
		return nil, err
	}
	if err := check(ip); err != nil {
		return nil, err
	}

	opts := impute.Options{
		Numeric:     impute.Strategy(ip.Numeric),
		Categorical: impute.Strategy(ip.Categorical),
		FillValue:   ip.FillValue,
		FillLabel:   ip.FillLabel,
	}
	if len(ip.Columns) > 0 {
		opts.Columns = make(map[string]impute.Strategy, len(ip.Columns))
		for col, s := range ip.Columns {
			opts.Columns[col] = impute.Strategy(s)
		}
	}
	imp, err := impute.New(opts)
	if err != nil {
		return nil, err
	}
	return imputeStep{imp: imp}, nil
}

func buildScale(p params) (Step, error) {
	var (
		sp  scaleParams
		err error
	)
	if sp.Strategy, err = p.getString(ParamStrategy, string(scale.Standard)); err != nil {
		return nil, err
	}
	if sp.Exclude, err = p.getList(ParamExcludeCols, nil); err != nil {
		return nil, err
	}
	if err := check(sp); err != nil {
		return nil, err
	}
	sc, err := scale.New(scale.Options{Strategy: scale.Strategy(sp.Strategy), Exclude: sp.Exclude})
	if err != nil {
		return nil, err
	}
	return scaleStep{sc: sc}, nil
}

func buildOutliers(p params) (Step, error) {
	var (
		op  outlierParams
		err error
	)
	if op.Strategy, err = p.getString(ParamStrategy, string(outlier.IQR)); err != nil {
		return nil, err
	}
	if op.Columns, err = p.getList(ParamColumns, nil); err != nil {
		return nil, err
	}
	if op.Threshold, err = p.getFloat(ParamZThresh, outlier.DefaultThreshold); err != nil {
		return nil, err
	}
	if op.Mode, err = p.getString(ParamMode, string(outlier.Sequential)); err != nil {
		return nil, err
	}
	if err := check(op); err != nil {
		return nil, err
	}

	opts := outlier.Options{
		Strategy:  outlier.Strategy(op.Strategy),
		Columns:   op.Columns,
		Threshold: op.Threshold,
		Mode:      outlier.Mode(op.Mode),
	}
	if _, err := outlier.New(opts); err != nil {
		return nil, err
	}
	return outlierStep{opts: opts}, nil
}

func buildFillZeros(p params) (Step, error) {
	var (
		fp  fillZerosParams
		err error
	)
	if fp.Strategy, err = p.getString(ParamStrategy, string(impute.Mode)); err != nil {
		return nil, err
	}
	if err := check(fp); err != nil {
		return nil, err
	}
	strategy := impute.Strategy(fp.Strategy)
	switch strategy {
	case impute.Mode, impute.Mean, impute.Median:
	default:
		names := make([]string, len(impute.ZeroStrategies))
		for i, s := range impute.ZeroStrategies {
			names[i] = string(s)
		}
		return nil, errors.UnknownStrategy("fill_zeros", fp.Strategy, names)
	}
	return fillZerosStep{strategy: strategy}, nil
}

func buildDropMissing(p params) (Step, error) {
	var (
		dp  dropMissingParams
		err error
	)
	if dp.Threshold, err = p.getFloat(ParamThreshold, clean.DefaultMissingThreshold); err != nil {
		return nil, err
	}
	if err := check(dp); err != nil {
		return nil, err
	}
	return dropMissingStep{threshold: dp.Threshold}, nil
}
