package styling

import (
	"path"

	"github.com/rebeliceyang/lazytab/internal/dataset"
	"github.com/rebeliceyang/lazytab/internal/filter"
)

// Applied holds the result of evaluating every rule of a style set
// against one table: one mask per rule, computed once. Lookups are
// then cheap per row/cell while rendering.
type Applied struct {
	rules []StyleRule
	masks []filter.Mask
}

// Apply evaluates each rule's filter expression into a row mask. A
// rule that fails to evaluate aborts with that rule's error.
func (ss *StyleSet) Apply(tbl *dataset.Table) (*Applied, error) {
	masks := make([]filter.Mask, len(ss.Rules))
	for i, rule := range ss.Rules {
		expr := rule.Match
		if expr == nil {
			expr = filter.And()
		}
		m, err := filter.Evaluate(expr, tbl)
		if err != nil {
			return nil, err
		}
		masks[i] = m
	}
	return &Applied{rules: ss.Rules, masks: masks}, nil
}

// RowStyle merges the row-scoped rules matching the given row, in rule
// order. The second return is false when no rule matched.
func (a *Applied) RowStyle(row int) (Style, bool) {
	var merged Style
	matched := false
	for i, rule := range a.rules {
		if rule.Style.Scope != ScopeRow || row >= len(a.masks[i]) || !a.masks[i][row] {
			continue
		}
		merged = merged.merge(rule.Style.Style)
		matched = true
	}
	return merged, matched
}

// CellStyle merges every rule matching the given row whose column
// scope covers the column, in rule order.
func (a *Applied) CellStyle(row int, column string) (Style, bool) {
	var merged Style
	matched := false
	for i, rule := range a.rules {
		if row >= len(a.masks[i]) || !a.masks[i][row] {
			continue
		}
		if !columnInScope(rule.ColumnScope, column) {
			continue
		}
		merged = merged.merge(rule.Style.Style)
		matched = true
	}
	return merged, matched
}

// columnInScope matches a column name against the rule's glob
// patterns. An empty scope covers every column.
func columnInScope(patterns []string, column string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := path.Match(p, column); err == nil && ok {
			return true
		}
	}
	return false
}
