package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazytab/internal/filter"
)

// predicateFromKind builds a predicate from the builder's form state.
// Between expects "min,max", InList a comma-separated list, and
// StringLength an optional comparator prefix (">=3", "!=0", "5").
func predicateFromKind(kind, value string, caseSensitive bool) (filter.Predicate, error) {
	switch kind {
	case "Contains":
		return filter.Contains{Value: value, CaseSensitive: caseSensitive}, nil
	case "Regex":
		return filter.Regex{Pattern: value, CaseSensitive: caseSensitive}, nil
	case "Equals":
		return filter.Equals{Value: value, CaseSensitive: caseSensitive}, nil
	case "GreaterThan":
		return filter.GreaterThan{Value: value}, nil
	case "GreaterThanOrEqual":
		return filter.GreaterThanOrEqual{Value: value}, nil
	case "LessThan":
		return filter.LessThan{Value: value}, nil
	case "LessThanOrEqual":
		return filter.LessThanOrEqual{Value: value}, nil
	case "Between":
		parts := strings.SplitN(value, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("between needs \"min,max\"")
		}
		return filter.Between{
			Min:       strings.TrimSpace(parts[0]),
			Max:       strings.TrimSpace(parts[1]),
			Inclusive: true,
		}, nil
	case "InList":
		raw := strings.Split(value, ",")
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("in-list needs at least one value")
		}
		return filter.InList{Values: values, CaseSensitive: caseSensitive}, nil
	case "StringLength":
		op, rest := splitComparator(value)
		length, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("string length needs an integer, got %q", rest)
		}
		return filter.StringLength{Op: op, Length: length}, nil
	case "IsEmpty":
		return filter.IsEmpty{}, nil
	case "IsNotEmpty":
		return filter.IsNotEmpty{}, nil
	case "IsNull":
		return filter.IsNull{}, nil
	case "NotNull":
		return filter.NotNull{}, nil
	}
	return nil, fmt.Errorf("unknown condition type %q", kind)
}

func splitComparator(s string) (filter.CompareOp, string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, ">="):
		return filter.CmpGte, s[2:]
	case strings.HasPrefix(s, "<="):
		return filter.CmpLte, s[2:]
	case strings.HasPrefix(s, "!="):
		return filter.CmpNe, s[2:]
	case strings.HasPrefix(s, "="):
		return filter.CmpEq, s[1:]
	case strings.HasPrefix(s, ">"):
		return filter.CmpGt, s[1:]
	case strings.HasPrefix(s, "<"):
		return filter.CmpLt, s[1:]
	}
	return filter.CmpEq, s
}

func comparatorSymbol(op filter.CompareOp) string {
	switch op {
	case filter.CmpNe:
		return "!="
	case filter.CmpLt:
		return "<"
	case filter.CmpGt:
		return ">"
	case filter.CmpLte:
		return "<="
	case filter.CmpGte:
		return ">="
	}
	return "="
}

// predicateValueText is the inverse of predicateFromKind's value
// field, used to prefill the form when editing.
func predicateValueText(p filter.Predicate) string {
	switch pred := p.(type) {
	case filter.Contains:
		return pred.Value
	case filter.Regex:
		return pred.Pattern
	case filter.Equals:
		return pred.Value
	case filter.GreaterThan:
		return pred.Value
	case filter.GreaterThanOrEqual:
		return pred.Value
	case filter.LessThan:
		return pred.Value
	case filter.LessThanOrEqual:
		return pred.Value
	case filter.Between:
		return pred.Min + "," + pred.Max
	case filter.InList:
		return strings.Join(pred.Values, ",")
	case filter.StringLength:
		return comparatorSymbol(pred.Op) + strconv.Itoa(pred.Length)
	}
	return ""
}

func predicateCaseSensitive(p filter.Predicate) bool {
	switch pred := p.(type) {
	case filter.Contains:
		return pred.CaseSensitive
	case filter.Regex:
		return pred.CaseSensitive
	case filter.Equals:
		return pred.CaseSensitive
	case filter.InList:
		return pred.CaseSensitive
	}
	return false
}
