package styling

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytab/internal/filter"
)

// Style is the visual treatment a matching rule applies. Colors are
// lipgloss color strings (named, ANSI index, or hex).
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Render converts the style to a lipgloss style for terminal output.
func (s Style) Render() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.Fg != "" {
		st = st.Foreground(lipgloss.Color(s.Fg))
	}
	if s.Bg != "" {
		st = st.Background(lipgloss.Color(s.Bg))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	return st
}

// merge overlays other onto s: set fields of other win.
func (s Style) merge(other Style) Style {
	if other.Fg != "" {
		s.Fg = other.Fg
	}
	if other.Bg != "" {
		s.Bg = other.Bg
	}
	s.Bold = s.Bold || other.Bold
	s.Italic = s.Italic || other.Italic
	s.Underline = s.Underline || other.Underline
	return s
}

// Scope says whether a matching rule styles the whole row or only the
// cells inside the rule's column scope.
type Scope string

const (
	ScopeRow  Scope = "Row"
	ScopeCell Scope = "Cell"
)

// ApplicationScope pairs a scope with the style to apply there.
type ApplicationScope struct {
	Scope Scope `json:"scope"`
	Style Style `json:"style"`
}

// StyleRule applies a style wherever its filter expression matches a
// row. ColumnScope holds glob patterns ("*_id", "col_*"); empty means
// every column.
type StyleRule struct {
	ColumnScope []string
	Match       filter.Expr
	Style       ApplicationScope
}

// StyleSet is a named, ordered collection of style rules. Later rules
// override earlier ones where both match.
type StyleSet struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Rules       []StyleRule `json:"rules"`
}

type styleRuleJSON struct {
	ColumnScope []string         `json:"column_scope,omitempty"`
	MatchExpr   json.RawMessage  `json:"match_expr"`
	Style       ApplicationScope `json:"style"`
}

// MarshalJSON persists the rule with its filter tree in the filter
// codec's tagged form.
func (r StyleRule) MarshalJSON() ([]byte, error) {
	expr := r.Match
	if expr == nil {
		expr = filter.And()
	}
	raw, err := filter.Marshal(expr)
	if err != nil {
		return nil, err
	}
	return json.Marshal(styleRuleJSON{
		ColumnScope: r.ColumnScope,
		MatchExpr:   raw,
		Style:       r.Style,
	})
}

// UnmarshalJSON restores a rule, delegating the filter tree to the
// filter codec.
func (r *StyleRule) UnmarshalJSON(data []byte) error {
	var rule styleRuleJSON
	if err := json.Unmarshal(data, &rule); err != nil {
		return fmt.Errorf("decoding style rule: %w", err)
	}
	if rule.MatchExpr == nil {
		return fmt.Errorf("decoding style rule: missing match_expr")
	}
	expr, err := filter.Unmarshal(rule.MatchExpr)
	if err != nil {
		return err
	}
	r.ColumnScope = rule.ColumnScope
	r.Match = expr
	r.Style = rule.Style
	return nil
}
