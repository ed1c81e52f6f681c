package filter

import (
	"fmt"
	"strings"
)

// Predicate is a single column-level test. Operand values are stored as
// text and parsed against the target column's runtime type only at
// evaluation time, so predicates are type- and column-agnostic when
// built.
type Predicate interface {
	// Name is the stable tag used in persistence and error messages.
	Name() string
	summary(column string) string
}

// CompareOp is the comparison used by StringLength.
type CompareOp string

const (
	CmpEq  CompareOp = "Eq"
	CmpNe  CompareOp = "Ne"
	CmpLt  CompareOp = "Lt"
	CmpGt  CompareOp = "Gt"
	CmpLte CompareOp = "Lte"
	CmpGte CompareOp = "Gte"
)

func (op CompareOp) symbol() string {
	switch op {
	case CmpEq:
		return "="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpGt:
		return ">"
	case CmpLte:
		return "<="
	case CmpGte:
		return ">="
	}
	return string(op)
}

// Contains matches rows whose value contains the literal text.
type Contains struct {
	Value         string
	CaseSensitive bool
}

// Regex matches rows whose value matches the pattern.
type Regex struct {
	Pattern       string
	CaseSensitive bool
}

// Equals matches rows whose value equals the operand.
type Equals struct {
	Value         string
	CaseSensitive bool
}

// GreaterThan matches rows strictly greater than the operand.
type GreaterThan struct {
	Value string
}

// LessThan matches rows strictly less than the operand.
type LessThan struct {
	Value string
}

// GreaterThanOrEqual matches rows greater than or equal to the operand.
type GreaterThanOrEqual struct {
	Value string
}

// LessThanOrEqual matches rows less than or equal to the operand.
type LessThanOrEqual struct {
	Value string
}

// IsEmpty matches string rows of length zero. Nulls are not empty.
type IsEmpty struct{}

// IsNotEmpty matches string rows of nonzero length.
type IsNotEmpty struct{}

// NotNull matches rows that are not null.
type NotNull struct{}

// IsNull matches rows that are null.
type IsNull struct{}

// Between matches numeric rows inside [Min, Max] (or (Min, Max) when
// not inclusive).
type Between struct {
	Min       string
	Max       string
	Inclusive bool
}

// InList matches rows whose value equals any of the listed values.
type InList struct {
	Values        []string
	CaseSensitive bool
}

// StringLength compares the length of string rows against a constant.
type StringLength struct {
	Op     CompareOp
	Length int
}

func (Contains) Name() string           { return "Contains" }
func (Regex) Name() string              { return "Regex" }
func (Equals) Name() string             { return "Equals" }
func (GreaterThan) Name() string        { return "GreaterThan" }
func (LessThan) Name() string           { return "LessThan" }
func (GreaterThanOrEqual) Name() string { return "GreaterThanOrEqual" }
func (LessThanOrEqual) Name() string    { return "LessThanOrEqual" }
func (IsEmpty) Name() string            { return "IsEmpty" }
func (IsNotEmpty) Name() string         { return "IsNotEmpty" }
func (NotNull) Name() string            { return "NotNull" }
func (IsNull) Name() string             { return "IsNull" }
func (Between) Name() string            { return "Between" }
func (InList) Name() string             { return "InList" }
func (StringLength) Name() string       { return "StringLength" }

func caseTag(sensitive bool) string {
	if sensitive {
		return " [Aa]"
	}
	return " [aA]"
}

func (p Contains) summary(column string) string {
	return fmt.Sprintf("%s contains %q%s", column, p.Value, caseTag(p.CaseSensitive))
}

func (p Regex) summary(column string) string {
	return fmt.Sprintf("%s matches /%s/%s", column, p.Pattern, caseTag(p.CaseSensitive))
}

func (p Equals) summary(column string) string {
	return fmt.Sprintf("%s = %q%s", column, p.Value, caseTag(p.CaseSensitive))
}

func (p GreaterThan) summary(column string) string {
	return fmt.Sprintf("%s > %s", column, p.Value)
}

func (p LessThan) summary(column string) string {
	return fmt.Sprintf("%s < %s", column, p.Value)
}

func (p GreaterThanOrEqual) summary(column string) string {
	return fmt.Sprintf("%s >= %s", column, p.Value)
}

func (p LessThanOrEqual) summary(column string) string {
	return fmt.Sprintf("%s <= %s", column, p.Value)
}

func (IsEmpty) summary(column string) string {
	return column + " is empty"
}

func (IsNotEmpty) summary(column string) string {
	return column + " is not empty"
}

func (NotNull) summary(column string) string {
	return column + " is not null"
}

func (IsNull) summary(column string) string {
	return column + " is null"
}

func (p Between) summary(column string) string {
	op := "between"
	if !p.Inclusive {
		op = "between (exclusive)"
	}
	return fmt.Sprintf("%s %s %s and %s", column, op, p.Min, p.Max)
}

func (p InList) summary(column string) string {
	display := strings.Join(p.Values, ", ")
	if len(p.Values) > 3 {
		display = fmt.Sprintf("%s, %s... (%d total)", p.Values[0], p.Values[1], len(p.Values))
	}
	return fmt.Sprintf("%s in [%s]%s", column, display, caseTag(p.CaseSensitive))
}

func (p StringLength) summary(column string) string {
	return fmt.Sprintf("len(%s) %s %d", column, p.Op.symbol(), p.Length)
}

func predicateEqual(a, b Predicate) bool {
	if a.Name() != b.Name() {
		return false
	}
	ia, ok := a.(InList)
	if !ok {
		return a == b
	}
	ib := b.(InList)
	if ia.CaseSensitive != ib.CaseSensitive || len(ia.Values) != len(ib.Values) {
		return false
	}
	for i := range ia.Values {
		if ia.Values[i] != ib.Values[i] {
			return false
		}
	}
	return true
}
