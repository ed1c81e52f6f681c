package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/rebeliceyang/lazytab/internal/dataset"
)

// Evaluate folds an expression tree into a per-row inclusion mask over
// a table. An empty AND group is all-true, an empty OR group is
// all-false; non-empty groups left-fold their children's masks. The
// first child error aborts the fold, annotated with the failing node's
// path.
//
// Evaluation is pure and read-only; the same tree may be evaluated
// concurrently from multiple goroutines.
func Evaluate(e Expr, tbl *dataset.Table) (Mask, error) {
	return evaluate(e, tbl, Root())
}

func evaluate(e Expr, tbl *dataset.Table, at Path) (Mask, error) {
	switch n := e.(type) {
	case *Condition:
		m, err := evalCondition(n, tbl)
		if err != nil {
			return nil, fmt.Errorf("at %s: %w", at, err)
		}
		return m, nil
	case *Group:
		if len(n.Children) == 0 {
			if n.Op == GroupAnd {
				return AllTrue(tbl.NumRows()), nil
			}
			return AllFalse(tbl.NumRows()), nil
		}
		result, err := evaluate(n.Children[0], tbl, at.Child(0))
		if err != nil {
			return nil, err
		}
		for i, child := range n.Children[1:] {
			m, err := evaluate(child, tbl, at.Child(i+1))
			if err != nil {
				return nil, err
			}
			if n.Op == GroupAnd {
				result.And(m)
			} else {
				result.Or(m)
			}
		}
		return result, nil
	}
	return nil, fmt.Errorf("at %s: unknown expression node %T", at, e)
}

// evalCondition dispatches one predicate against one column. Null rows
// never match a value predicate; only IsNull selects them.
func evalCondition(c *Condition, tbl *dataset.Table) (Mask, error) {
	col, ok := tbl.Column(c.Column)
	if !ok {
		return nil, &ColumnNotFoundError{Column: c.Column}
	}

	switch p := c.Pred.(type) {
	case Contains:
		needle := p.Value
		if !p.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		return textMask(c, col, func(s string) bool {
			if !p.CaseSensitive {
				s = strings.ToLower(s)
			}
			return strings.Contains(s, needle)
		})

	case Regex:
		pattern := p.Pattern
		if !p.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Pattern, Type: col.DataType(), Err: err}
		}
		return textMask(c, col, re.MatchString)

	case Equals:
		switch a := col.(type) {
		case *array.String:
			want := p.Value
			if !p.CaseSensitive {
				want = strings.ToLower(want)
			}
			return stringColMask(a, func(s string) bool {
				if !p.CaseSensitive {
					s = strings.ToLower(s)
				}
				return s == want
			}), nil
		case *array.LargeString:
			want := p.Value
			if !p.CaseSensitive {
				want = strings.ToLower(want)
			}
			return largeStringColMask(a, func(s string) bool {
				if !p.CaseSensitive {
					s = strings.ToLower(s)
				}
				return s == want
			}), nil
		case *array.Boolean:
			want, err := strconv.ParseBool(p.Value)
			if err != nil {
				return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Value, Type: col.DataType(), Err: err}
			}
			m := make(Mask, a.Len())
			for i := range m {
				m[i] = a.IsValid(i) && a.Value(i) == want
			}
			return m, nil
		default:
			return numericCompare(c, col, p.Value, func(cmp int) bool { return cmp == 0 })
		}

	case GreaterThan:
		return numericCompare(c, col, p.Value, func(cmp int) bool { return cmp > 0 })
	case LessThan:
		return numericCompare(c, col, p.Value, func(cmp int) bool { return cmp < 0 })
	case GreaterThanOrEqual:
		return numericCompare(c, col, p.Value, func(cmp int) bool { return cmp >= 0 })
	case LessThanOrEqual:
		return numericCompare(c, col, p.Value, func(cmp int) bool { return cmp <= 0 })

	case NotNull:
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i)
		}
		return m, nil
	case IsNull:
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsNull(i)
		}
		return m, nil

	case IsEmpty:
		return stringLengthMask(c, col, func(n int) bool { return n == 0 })
	case IsNotEmpty:
		return stringLengthMask(c, col, func(n int) bool { return n != 0 })

	case Between:
		return evalBetween(c, col, p)

	case InList:
		set := make(map[string]struct{}, len(p.Values))
		for _, v := range p.Values {
			if !p.CaseSensitive {
				v = strings.ToLower(v)
			}
			set[v] = struct{}{}
		}
		return textMask(c, col, func(s string) bool {
			if !p.CaseSensitive {
				s = strings.ToLower(s)
			}
			_, hit := set[s]
			return hit
		})

	case StringLength:
		return stringLengthMask(c, col, func(n int) bool {
			switch p.Op {
			case CmpEq:
				return n == p.Length
			case CmpNe:
				return n != p.Length
			case CmpLt:
				return n < p.Length
			case CmpGt:
				return n > p.Length
			case CmpLte:
				return n <= p.Length
			case CmpGte:
				return n >= p.Length
			}
			return false
		})
	}

	return nil, &UnsupportedTypeError{Column: c.Column, Operator: c.Pred.Name(), Type: col.DataType()}
}

// textMask evaluates a predicate on the printed text form of each row.
// Numeric and boolean columns match against their decimal/true-false
// form; null rows never match.
func textMask(c *Condition, col arrow.Array, match func(string) bool) (Mask, error) {
	get, ok := textGetter(col)
	if !ok {
		return nil, &UnsupportedTypeError{Column: c.Column, Operator: c.Pred.Name(), Type: col.DataType()}
	}
	m := make(Mask, col.Len())
	for i := range m {
		m[i] = col.IsValid(i) && match(get(i))
	}
	return m, nil
}

func stringColMask(a *array.String, match func(string) bool) Mask {
	m := make(Mask, a.Len())
	for i := range m {
		m[i] = a.IsValid(i) && match(a.Value(i))
	}
	return m
}

func largeStringColMask(a *array.LargeString, match func(string) bool) Mask {
	m := make(Mask, a.Len())
	for i := range m {
		m[i] = a.IsValid(i) && match(a.Value(i))
	}
	return m
}

// stringLengthMask evaluates a length test on string columns. Null
// rows never match, so a null is neither empty nor not-empty.
func stringLengthMask(c *Condition, col arrow.Array, match func(int) bool) (Mask, error) {
	switch a := col.(type) {
	case *array.String:
		return stringColMask(a, func(s string) bool { return match(len(s)) }), nil
	case *array.LargeString:
		return largeStringColMask(a, func(s string) bool { return match(len(s)) }), nil
	}
	return nil, &UnsupportedTypeError{Column: c.Column, Operator: c.Pred.Name(), Type: col.DataType()}
}

// numericCompare parses the operand into the column's canonical width
// (int64, uint64 or float64) and compares row by row. String and
// boolean columns are unsupported for relational operators.
func numericCompare(c *Condition, col arrow.Array, operand string, want func(int) bool) (Mask, error) {
	if get, ok := int64Getter(col); ok {
		v, err := strconv.ParseInt(operand, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: c.Pred.Name(), Value: operand, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && want(compareInt64(get(i), v))
		}
		return m, nil
	}
	if get, ok := uint64Getter(col); ok {
		v, err := strconv.ParseUint(operand, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: c.Pred.Name(), Value: operand, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && want(compareUint64(get(i), v))
		}
		return m, nil
	}
	if get, ok := float64Getter(col); ok {
		v, err := strconv.ParseFloat(operand, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: c.Pred.Name(), Value: operand, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && want(compareFloat64(get(i), v))
		}
		return m, nil
	}
	return nil, &UnsupportedTypeError{Column: c.Column, Operator: c.Pred.Name(), Type: col.DataType()}
}

func evalBetween(c *Condition, col arrow.Array, p Between) (Mask, error) {
	inside := func(cmpMin, cmpMax int) bool {
		if p.Inclusive {
			return cmpMin >= 0 && cmpMax <= 0
		}
		return cmpMin > 0 && cmpMax < 0
	}
	if get, ok := int64Getter(col); ok {
		lo, err := strconv.ParseInt(p.Min, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Min, Type: col.DataType(), Err: err}
		}
		hi, err := strconv.ParseInt(p.Max, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Max, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && inside(compareInt64(get(i), lo), compareInt64(get(i), hi))
		}
		return m, nil
	}
	if get, ok := uint64Getter(col); ok {
		lo, err := strconv.ParseUint(p.Min, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Min, Type: col.DataType(), Err: err}
		}
		hi, err := strconv.ParseUint(p.Max, 10, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Max, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && inside(compareUint64(get(i), lo), compareUint64(get(i), hi))
		}
		return m, nil
	}
	if get, ok := float64Getter(col); ok {
		lo, err := strconv.ParseFloat(p.Min, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Min, Type: col.DataType(), Err: err}
		}
		hi, err := strconv.ParseFloat(p.Max, 64)
		if err != nil {
			return nil, &OperandParseError{Column: c.Column, Operator: p.Name(), Value: p.Max, Type: col.DataType(), Err: err}
		}
		m := make(Mask, col.Len())
		for i := range m {
			m[i] = col.IsValid(i) && inside(compareFloat64(get(i), lo), compareFloat64(get(i), hi))
		}
		return m, nil
	}
	return nil, &UnsupportedTypeError{Column: c.Column, Operator: p.Name(), Type: col.DataType()}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// int64Getter widens any signed integer column to int64.
func int64Getter(col arrow.Array) (func(int) int64, bool) {
	switch a := col.(type) {
	case *array.Int8:
		return func(i int) int64 { return int64(a.Value(i)) }, true
	case *array.Int16:
		return func(i int) int64 { return int64(a.Value(i)) }, true
	case *array.Int32:
		return func(i int) int64 { return int64(a.Value(i)) }, true
	case *array.Int64:
		return a.Value, true
	}
	return nil, false
}

// uint64Getter widens any unsigned integer column to uint64.
func uint64Getter(col arrow.Array) (func(int) uint64, bool) {
	switch a := col.(type) {
	case *array.Uint8:
		return func(i int) uint64 { return uint64(a.Value(i)) }, true
	case *array.Uint16:
		return func(i int) uint64 { return uint64(a.Value(i)) }, true
	case *array.Uint32:
		return func(i int) uint64 { return uint64(a.Value(i)) }, true
	case *array.Uint64:
		return a.Value, true
	}
	return nil, false
}

// float64Getter widens any float column to float64.
func float64Getter(col arrow.Array) (func(int) float64, bool) {
	switch a := col.(type) {
	case *array.Float32:
		return func(i int) float64 { return float64(a.Value(i)) }, true
	case *array.Float64:
		return a.Value, true
	}
	return nil, false
}

// textGetter returns the printed form of each row: text columns as-is,
// integers and floats in decimal, booleans as true/false.
func textGetter(col arrow.Array) (func(int) string, bool) {
	switch a := col.(type) {
	case *array.String:
		return a.Value, true
	case *array.LargeString:
		return a.Value, true
	case *array.Boolean:
		return func(i int) string { return strconv.FormatBool(a.Value(i)) }, true
	case *array.Float32:
		return func(i int) string { return strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32) }, true
	case *array.Float64:
		return func(i int) string { return strconv.FormatFloat(a.Value(i), 'g', -1, 64) }, true
	}
	if get, ok := int64Getter(col); ok {
		return func(i int) string { return strconv.FormatInt(get(i), 10) }, true
	}
	if get, ok := uint64Getter(col); ok {
		return func(i int) string { return strconv.FormatUint(get(i), 10) }, true
	}
	return nil, false
}
