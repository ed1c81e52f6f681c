package styling

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rebeliceyang/lazytab/internal/dataset"
	"github.com/rebeliceyang/lazytab/internal/filter"
)

const fixtureCSV = `name,age,user_id
alice,10,1
bob,40,2
carol,25,3
`

func fixtureTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(fixtureCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	t.Cleanup(tbl.Release)
	return tbl
}

func TestStyleSetRoundTrip(t *testing.T) {
	set := StyleSet{
		Name:        "ages",
		Description: "highlight adults",
		Rules: []StyleRule{
			{
				Match: filter.And(filter.Cond("age", filter.GreaterThanOrEqual{Value: "18"})),
				Style: ApplicationScope{Scope: ScopeRow, Style: Style{Fg: "212", Bold: true}},
			},
			{
				ColumnScope: []string{"*_id"},
				Match:       filter.Or(filter.Cond("name", filter.Contains{Value: "bo"})),
				Style:       ApplicationScope{Scope: ScopeCell, Style: Style{Bg: "#ff0000"}},
			},
		},
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got StyleSet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Name != set.Name || got.Description != set.Description {
		t.Errorf("metadata changed: %+v", got)
	}
	if len(got.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(got.Rules))
	}
	if !filter.Equal(got.Rules[0].Match, set.Rules[0].Match) {
		t.Errorf("rule 0 filter tree changed")
	}
	if got.Rules[1].ColumnScope[0] != "*_id" {
		t.Errorf("column scope lost: %+v", got.Rules[1])
	}
	if got.Rules[0].Style.Scope != ScopeRow || got.Rules[0].Style.Style.Fg != "212" {
		t.Errorf("style lost: %+v", got.Rules[0].Style)
	}
}

func TestStyleRuleJSONUsesFilterForm(t *testing.T) {
	rule := StyleRule{
		Match: filter.And(filter.Cond("age", filter.IsNull{})),
		Style: ApplicationScope{Scope: ScopeRow, Style: Style{Bold: true}},
	}

	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"And":`) {
		t.Errorf("match_expr not in tagged filter form:\n%s", data)
	}
}

func TestStyleRuleDecodeErrors(t *testing.T) {
	var rule StyleRule
	if err := json.Unmarshal([]byte(`{"style":{"scope":"Row","style":{}}}`), &rule); err == nil {
		t.Errorf("expected an error for a missing match_expr")
	}
	if err := json.Unmarshal([]byte(`{"match_expr":{"Nand":[]},"style":{"scope":"Row","style":{}}}`), &rule); err == nil {
		t.Errorf("expected an error for an invalid filter tree")
	}
}

func TestApplyRowStyle(t *testing.T) {
	tbl := fixtureTable(t)

	set := StyleSet{
		Name: "test",
		Rules: []StyleRule{
			{
				Match: filter.And(filter.Cond("age", filter.GreaterThan{Value: "20"})),
				Style: ApplicationScope{Scope: ScopeRow, Style: Style{Fg: "red"}},
			},
		},
	}

	applied, err := set.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, ok := applied.RowStyle(0); ok {
		t.Errorf("row 0 (age 10) should not match")
	}
	st, ok := applied.RowStyle(1)
	if !ok {
		t.Fatalf("row 1 (age 40) should match")
	}
	if st.Fg != "red" {
		t.Errorf("row style Fg = %q, want red", st.Fg)
	}
}

func TestApplyMergesLaterRules(t *testing.T) {
	tbl := fixtureTable(t)

	set := StyleSet{
		Rules: []StyleRule{
			{
				Match: filter.And(),
				Style: ApplicationScope{Scope: ScopeRow, Style: Style{Fg: "red", Bold: true}},
			},
			{
				Match: filter.And(filter.Cond("name", filter.Equals{Value: "bob"})),
				Style: ApplicationScope{Scope: ScopeRow, Style: Style{Fg: "blue"}},
			},
		},
	}

	applied, err := set.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	st, ok := applied.RowStyle(1)
	if !ok {
		t.Fatalf("row 1 should match both rules")
	}
	if st.Fg != "blue" {
		t.Errorf("later rule should win Fg, got %q", st.Fg)
	}
	if !st.Bold {
		t.Errorf("unset fields of later rules should not clear earlier ones")
	}

	st, _ = applied.RowStyle(0)
	if st.Fg != "red" {
		t.Errorf("row 0 Fg = %q, want red", st.Fg)
	}
}

func TestApplyCellScope(t *testing.T) {
	tbl := fixtureTable(t)

	set := StyleSet{
		Rules: []StyleRule{
			{
				ColumnScope: []string{"*_id"},
				Match:       filter.And(filter.Cond("age", filter.GreaterThan{Value: "20"})),
				Style:       ApplicationScope{Scope: ScopeCell, Style: Style{Underline: true}},
			},
		},
	}

	applied, err := set.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, ok := applied.CellStyle(1, "user_id"); !ok {
		t.Errorf("user_id cell on a matching row should be styled")
	}
	if _, ok := applied.CellStyle(1, "name"); ok {
		t.Errorf("name is outside the column scope")
	}
	if _, ok := applied.CellStyle(0, "user_id"); ok {
		t.Errorf("row 0 does not match the rule's filter")
	}
}

func TestApplyNilMatchMatchesEverything(t *testing.T) {
	tbl := fixtureTable(t)

	set := StyleSet{
		Rules: []StyleRule{
			{Style: ApplicationScope{Scope: ScopeRow, Style: Style{Italic: true}}},
		},
	}

	applied, err := set.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for row := 0; row < tbl.NumRows(); row++ {
		if _, ok := applied.RowStyle(row); !ok {
			t.Errorf("row %d should match the nil filter", row)
		}
	}
}

func TestApplyPropagatesEvaluationErrors(t *testing.T) {
	tbl := fixtureTable(t)

	set := StyleSet{
		Rules: []StyleRule{
			{Match: filter.And(filter.Cond("missing", filter.IsNull{}))},
		},
	}

	if _, err := set.Apply(tbl); err == nil {
		t.Errorf("expected an evaluation error for an unknown column")
	}
}

func TestColumnInScope(t *testing.T) {
	tests := []struct {
		patterns []string
		column   string
		want     bool
	}{
		{nil, "anything", true},
		{[]string{"age"}, "age", true},
		{[]string{"age"}, "name", false},
		{[]string{"*_id"}, "user_id", true},
		{[]string{"*_id"}, "id", false},
		{[]string{"a", "b*"}, "banana", true},
	}

	for _, tt := range tests {
		if got := columnInScope(tt.patterns, tt.column); got != tt.want {
			t.Errorf("columnInScope(%v, %q) = %v, want %v", tt.patterns, tt.column, got, tt.want)
		}
	}
}
