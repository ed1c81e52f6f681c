package filter

import (
	"encoding/json"
	"fmt"
	"io"
)

// The persisted form mirrors the tree as a tagged JSON union:
//
//	{"And": [{"Condition": {"column": "age",
//	                        "condition": {"GreaterThan": {"value": "30"}}}},
//	         {"Or": []}]}
//
// Operand-less predicates are bare strings ("IsNull"). The codec is
// filesystem-agnostic and never serializes evaluation state; a
// round-trip reproduces the tree exactly.

type conditionJSON struct {
	Column    string          `json:"column"`
	Condition json.RawMessage `json:"condition"`
}

type valueCaseJSON struct {
	Value         string `json:"value"`
	CaseSensitive bool   `json:"case_sensitive"`
}

type patternCaseJSON struct {
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"case_sensitive"`
}

type valueJSON struct {
	Value string `json:"value"`
}

type betweenJSON struct {
	Min       string `json:"min"`
	Max       string `json:"max"`
	Inclusive bool   `json:"inclusive"`
}

type inListJSON struct {
	Values        []string `json:"values"`
	CaseSensitive bool     `json:"case_sensitive"`
}

type stringLengthJSON struct {
	Operator string `json:"operator"`
	Length   int    `json:"length"`
}

// Marshal encodes a tree to its persisted JSON form.
func Marshal(e Expr) ([]byte, error) {
	return json.MarshalIndent(exprValue(e), "", "  ")
}

// Write encodes a tree onto a byte stream.
func Write(w io.Writer, e Expr) error {
	data, err := Marshal(e)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Unmarshal decodes a persisted tree. Malformed input yields a
// *DecodeError, never a panic.
func Unmarshal(data []byte) (Expr, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	return decodeExpr(raw)
}

// Read decodes a persisted tree from a byte stream.
func Read(r io.Reader) (Expr, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Reason: "reading stream", Err: err}
	}
	return Unmarshal(data)
}

func exprValue(e Expr) any {
	switch n := e.(type) {
	case *Condition:
		return map[string]any{
			"Condition": map[string]any{
				"column":    n.Column,
				"condition": predicateValue(n.Pred),
			},
		}
	case *Group:
		children := make([]any, 0, len(n.Children))
		for _, child := range n.Children {
			children = append(children, exprValue(child))
		}
		return map[string]any{string(n.Op): children}
	}
	return nil
}

func predicateValue(p Predicate) any {
	switch pred := p.(type) {
	case Contains:
		return map[string]any{pred.Name(): valueCaseJSON{pred.Value, pred.CaseSensitive}}
	case Regex:
		return map[string]any{pred.Name(): patternCaseJSON{pred.Pattern, pred.CaseSensitive}}
	case Equals:
		return map[string]any{pred.Name(): valueCaseJSON{pred.Value, pred.CaseSensitive}}
	case GreaterThan:
		return map[string]any{pred.Name(): valueJSON{pred.Value}}
	case LessThan:
		return map[string]any{pred.Name(): valueJSON{pred.Value}}
	case GreaterThanOrEqual:
		return map[string]any{pred.Name(): valueJSON{pred.Value}}
	case LessThanOrEqual:
		return map[string]any{pred.Name(): valueJSON{pred.Value}}
	case Between:
		return map[string]any{pred.Name(): betweenJSON{pred.Min, pred.Max, pred.Inclusive}}
	case InList:
		values := pred.Values
		if values == nil {
			values = []string{}
		}
		return map[string]any{pred.Name(): inListJSON{values, pred.CaseSensitive}}
	case StringLength:
		return map[string]any{pred.Name(): stringLengthJSON{string(pred.Op), pred.Length}}
	default:
		// Operand-less predicates persist as their bare tag.
		return p.Name()
	}
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, &DecodeError{Reason: "expected a tagged expression object", Err: err}
	}
	if len(tagged) != 1 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected exactly one expression tag, got %d", len(tagged))}
	}
	for tag, payload := range tagged {
		switch tag {
		case "Condition":
			var cond conditionJSON
			if err := json.Unmarshal(payload, &cond); err != nil {
				return nil, &DecodeError{Reason: "invalid Condition payload", Err: err}
			}
			if cond.Condition == nil {
				return nil, &DecodeError{Reason: "Condition is missing its predicate"}
			}
			pred, err := decodePredicate(cond.Condition)
			if err != nil {
				return nil, err
			}
			return &Condition{Column: cond.Column, Pred: pred}, nil
		case string(GroupAnd), string(GroupOr):
			var rawChildren []json.RawMessage
			if err := json.Unmarshal(payload, &rawChildren); err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("invalid %s children", tag), Err: err}
			}
			children := make([]Expr, 0, len(rawChildren))
			for _, rc := range rawChildren {
				child, err := decodeExpr(rc)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			return &Group{Op: GroupOp(tag), Children: children}, nil
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("unknown expression tag %q", tag)}
		}
	}
	return nil, &DecodeError{Reason: "empty expression object"}
}

func decodePredicate(raw json.RawMessage) (Predicate, error) {
	var unit string
	if err := json.Unmarshal(raw, &unit); err == nil {
		switch unit {
		case "IsEmpty":
			return IsEmpty{}, nil
		case "IsNotEmpty":
			return IsNotEmpty{}, nil
		case "NotNull":
			return NotNull{}, nil
		case "IsNull":
			return IsNull{}, nil
		}
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown predicate tag %q", unit)}
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, &DecodeError{Reason: "expected a predicate tag or object", Err: err}
	}
	if len(tagged) != 1 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected exactly one predicate tag, got %d", len(tagged))}
	}
	for tag, payload := range tagged {
		switch tag {
		case "Contains":
			var p valueCaseJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid Contains payload", Err: err}
			}
			return Contains{Value: p.Value, CaseSensitive: p.CaseSensitive}, nil
		case "Regex":
			var p patternCaseJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid Regex payload", Err: err}
			}
			return Regex{Pattern: p.Pattern, CaseSensitive: p.CaseSensitive}, nil
		case "Equals":
			var p valueCaseJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid Equals payload", Err: err}
			}
			return Equals{Value: p.Value, CaseSensitive: p.CaseSensitive}, nil
		case "GreaterThan", "LessThan", "GreaterThanOrEqual", "LessThanOrEqual":
			var p valueJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid " + tag + " payload", Err: err}
			}
			switch tag {
			case "GreaterThan":
				return GreaterThan{Value: p.Value}, nil
			case "LessThan":
				return LessThan{Value: p.Value}, nil
			case "GreaterThanOrEqual":
				return GreaterThanOrEqual{Value: p.Value}, nil
			default:
				return LessThanOrEqual{Value: p.Value}, nil
			}
		case "Between":
			var p betweenJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid Between payload", Err: err}
			}
			return Between{Min: p.Min, Max: p.Max, Inclusive: p.Inclusive}, nil
		case "InList":
			var p inListJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid InList payload", Err: err}
			}
			return InList{Values: p.Values, CaseSensitive: p.CaseSensitive}, nil
		case "StringLength":
			var p stringLengthJSON
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, &DecodeError{Reason: "invalid StringLength payload", Err: err}
			}
			switch CompareOp(p.Operator) {
			case CmpEq, CmpNe, CmpLt, CmpGt, CmpLte, CmpGte:
				return StringLength{Op: CompareOp(p.Operator), Length: p.Length}, nil
			}
			return nil, &DecodeError{Reason: fmt.Sprintf("unknown StringLength operator %q", p.Operator)}
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("unknown predicate tag %q", tag)}
		}
	}
	return nil, &DecodeError{Reason: "empty predicate object"}
}
