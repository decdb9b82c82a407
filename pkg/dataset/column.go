package dataset

import (
	"math"
	"strconv"
)

// Kind distinguishes numeric from categorical columns
type Kind int

const (
	// Numeric columns hold float64 values
	Numeric Kind = iota
	// Categorical columns hold string values
	Categorical
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single nullable cell
type Value struct {
	Num   float64
	Str   string
	Valid bool
	kind  Kind
}

// Float returns a non-null numeric value
func Float(f float64) Value { return Value{Num: f, Valid: true, kind: Numeric} }

// String returns a non-null categorical value
func String(s string) Value { return Value{Str: s, Valid: true, kind: Categorical} }

// Null returns a null cell of the given kind
func Null(kind Kind) Value { return Value{kind: kind} }

// Kind returns the kind of column the value belongs to
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is null
func (v Value) IsNull() bool { return !v.Valid }

// Interface returns nil, float64 or string
func (v Value) Interface() interface{} {
	if !v.Valid {
		return nil
	}
	if v.kind == Numeric {
		return v.Num
	}
	return v.Str
}

// Column is an immutable, named, nullable sequence of values.
// Numeric columns store floats, categorical columns store strings; a
// validity mask marks non-null cells.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	valid []bool
}

// NewNumeric creates a numeric column. A nil valid mask marks every cell
// non-null except NaN values, which are always treated as null.
func NewNumeric(name string, values []float64, valid []bool) *Column {
	c := &Column{
		name:  name,
		kind:  Numeric,
		nums:  make([]float64, len(values)),
		valid: make([]bool, len(values)),
	}
	copy(c.nums, values)
	for i, v := range values {
		ok := !math.IsNaN(v)
		if valid != nil && i < len(valid) {
			ok = ok && valid[i]
		}
		c.valid[i] = ok
		if !ok {
			c.nums[i] = 0
		}
	}
	return c
}

// Floats creates a numeric column where NaN marks a null cell
func Floats(name string, values ...float64) *Column {
	return NewNumeric(name, values, nil)
}

// NewCategorical creates a categorical column. A nil valid mask marks every
// cell non-null.
func NewCategorical(name string, values []string, valid []bool) *Column {
	c := &Column{
		name:  name,
		kind:  Categorical,
		strs:  make([]string, len(values)),
		valid: make([]bool, len(values)),
	}
	copy(c.strs, values)
	for i := range values {
		ok := true
		if valid != nil && i < len(valid) {
			ok = valid[i]
		}
		c.valid[i] = ok
		if !ok {
			c.strs[i] = ""
		}
	}
	return c
}

// Strings creates a categorical column where a nil pointer marks a null cell
func Strings(name string, values ...*string) *Column {
	strs := make([]string, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v != nil {
			strs[i] = *v
			valid[i] = true
		}
	}
	return NewCategorical(name, strs, valid)
}

// Labels creates a categorical column with no null cells
func Labels(name string, values ...string) *Column {
	return NewCategorical(name, values, nil)
}

// FromValues creates a column of the given kind from cells
func FromValues(name string, kind Kind, values []Value) *Column {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = v.Valid
	}
	if kind == Numeric {
		nums := make([]float64, len(values))
		for i, v := range values {
			nums[i] = v.Num
		}
		return NewNumeric(name, nums, valid)
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.Str
	}
	return NewCategorical(name, strs, valid)
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells including nulls
func (c *Column) Len() int { return len(c.valid) }

// IsNull reports whether cell i is null
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// Float returns cell i of a numeric column; ok is false for nulls
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.kind != Numeric || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Str returns cell i of a categorical column; ok is false for nulls
func (c *Column) Str(i int) (v string, ok bool) {
	if c.kind != Categorical || !c.valid[i] {
		return "", false
	}
	return c.strs[i], true
}

// Value returns cell i
func (c *Column) Value(i int) Value {
	if !c.valid[i] {
		return Null(c.kind)
	}
	if c.kind == Numeric {
		return Float(c.nums[i])
	}
	return String(c.strs[i])
}

// Values returns a copy of all cells, nulls included
func (c *Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// NullCount returns the number of null cells
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// NonNullFloats returns the non-null values of a numeric column in row order
func (c *Column) NonNullFloats() []float64 {
	if c.kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// NonNullStrings returns the non-null values of a categorical column in row order
func (c *Column) NonNullStrings() []string {
	if c.kind != Categorical {
		return nil
	}
	out := make([]string, 0, len(c.strs))
	for i, v := range c.strs {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Map returns a new numeric column with fn applied to every non-null cell.
// Null cells stay null. Map on a categorical column returns a copy.
func (c *Column) Map(fn func(float64) float64) *Column {
	out := c.clone()
	if c.kind != Numeric {
		return out
	}
	for i, v := range out.nums {
		if out.valid[i] {
			out.nums[i] = fn(v)
		}
	}
	return out
}

// Replace returns a new column where every cell for which match returns true
// is replaced by v. v must be a non-null value of the column's kind.
func (c *Column) Replace(match func(Value) bool, v Value) *Column {
	out := c.clone()
	for i := range out.valid {
		if !match(c.Value(i)) {
			continue
		}
		out.valid[i] = v.Valid
		if c.kind == Numeric {
			out.nums[i] = v.Num
		} else {
			out.strs[i] = v.Str
		}
	}
	return out
}

// FillNull returns a new column with every null cell set to v
func (c *Column) FillNull(v Value) *Column {
	return c.Replace(Value.IsNull, v)
}

// Rename returns a copy of the column under a new name
func (c *Column) Rename(name string) *Column {
	out := c.clone()
	out.name = name
	return out
}

func (c *Column) take(mask []bool) *Column {
	out := &Column{name: c.name, kind: c.kind}
	for i, keep := range mask {
		if !keep {
			continue
		}
		out.valid = append(out.valid, c.valid[i])
		if c.kind == Numeric {
			out.nums = append(out.nums, c.nums[i])
		} else {
			out.strs = append(out.strs, c.strs[i])
		}
	}
	if out.valid == nil {
		out.valid = []bool{}
	}
	return out
}

func (c *Column) clone() *Column {
	out := &Column{
		name:  c.name,
		kind:  c.kind,
		valid: append([]bool(nil), c.valid...),
	}
	if c.kind == Numeric {
		out.nums = append([]float64(nil), c.nums...)
	} else {
		out.strs = append([]string(nil), c.strs...)
	}
	return out
}
