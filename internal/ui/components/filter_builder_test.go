package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazytab/internal/filter"
	"github.com/rebeliceyang/lazytab/internal/ui/theme"
)

func newBuilder() *FilterBuilder {
	return NewFilterBuilder(theme.DefaultTheme(), []string{"name", "age", "score"})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeString(fb *FilterBuilder, s string) *FilterBuilder {
	for _, r := range s {
		fb, _ = fb.Update(keyRune(r))
	}
	return fb
}

func TestFilterBuilderStartsEmpty(t *testing.T) {
	fb := newBuilder()

	root := fb.Tree().Root()
	if root.Op != filter.GroupAnd || len(root.Children) != 0 {
		t.Errorf("initial tree = %+v, want empty And root", root)
	}
	if !fb.selected.IsRoot() {
		t.Errorf("initial selection = %v, want root", fb.selected)
	}
}

func TestFilterBuilderAddCondition(t *testing.T) {
	fb := newBuilder()

	fb, _ = fb.Update(keyRune('a'))
	if fb.mode != "add" {
		t.Fatalf("mode = %q, want add", fb.mode)
	}

	// Default predicate kind is Contains on the first column.
	fb = typeString(fb, "bob")
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	root := fb.Tree().Root()
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	cond, ok := root.Children[0].(*filter.Condition)
	if !ok {
		t.Fatalf("child is %T, want condition", root.Children[0])
	}
	if cond.Column != "name" {
		t.Errorf("column = %q, want name", cond.Column)
	}
	p, ok := cond.Pred.(filter.Contains)
	if !ok || p.Value != "bob" {
		t.Errorf("predicate = %+v, want Contains bob", cond.Pred)
	}
	if !fb.selected.Equal(filter.Path{0}) {
		t.Errorf("selection = %v, want [0]", fb.selected)
	}
}

func TestFilterBuilderColumnAndKindCycling(t *testing.T) {
	fb := newBuilder()
	fb, _ = fb.Update(keyRune('a'))

	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyRight}) // column: age
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyTab})   // kind: Regex
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyTab})   // kind: Equals
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyTab})   // kind: GreaterThan

	fb = typeString(fb, "30")
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	cond := fb.Tree().Root().Children[0].(*filter.Condition)
	if cond.Column != "age" {
		t.Errorf("column = %q, want age", cond.Column)
	}
	p, ok := cond.Pred.(filter.GreaterThan)
	if !ok || p.Value != "30" {
		t.Errorf("predicate = %+v, want GreaterThan 30", cond.Pred)
	}
}

func TestFilterBuilderAddSiblingAfterCondition(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(
		filter.Cond("name", filter.IsNull{}),
		filter.Cond("age", filter.IsNull{}),
	))

	fb, _ = fb.Update(keyRune('j')) // select first condition
	fb, _ = fb.Update(keyRune('a'))
	fb = typeString(fb, "x")
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	root := fb.Tree().Root()
	if len(root.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(root.Children))
	}
	// New condition lands between the two existing ones.
	if _, ok := root.Children[1].(*filter.Condition); !ok {
		t.Fatalf("child 1 is %T", root.Children[1])
	}
	if root.Children[1].(*filter.Condition).Pred.Name() != "Contains" {
		t.Errorf("middle child predicate = %s, want Contains", root.Children[1].(*filter.Condition).Pred.Name())
	}
	if !fb.selected.Equal(filter.Path{1}) {
		t.Errorf("selection = %v, want [1]", fb.selected)
	}
}

func TestFilterBuilderEditCondition(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(filter.Cond("age", filter.GreaterThan{Value: "30"})))

	fb, _ = fb.Update(keyRune('j'))
	fb, _ = fb.Update(keyRune('e'))
	if fb.mode != "edit" {
		t.Fatalf("mode = %q, want edit", fb.mode)
	}
	if fb.valueInput.Value() != "30" {
		t.Errorf("edit prefill = %q, want 30", fb.valueInput.Value())
	}

	fb.valueInput.SetValue("40")
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	cond := fb.Tree().Root().Children[0].(*filter.Condition)
	p, ok := cond.Pred.(filter.GreaterThan)
	if !ok || p.Value != "40" {
		t.Errorf("predicate after edit = %+v, want GreaterThan 40", cond.Pred)
	}
	if len(fb.Tree().Root().Children) != 1 {
		t.Errorf("edit must replace, not insert")
	}
}

func TestFilterBuilderToggleAndDelete(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(
		filter.Cond("name", filter.IsNull{}),
		filter.Cond("age", filter.IsNull{}),
	))

	fb, _ = fb.Update(keyRune('t'))
	if fb.Tree().Root().Op != filter.GroupOr {
		t.Errorf("root op = %s after toggle, want Or", fb.Tree().Root().Op)
	}

	fb, _ = fb.Update(keyRune('j'))
	fb, _ = fb.Update(keyRune('j'))
	if !fb.selected.Equal(filter.Path{1}) {
		t.Fatalf("selection = %v, want [1]", fb.selected)
	}

	fb, _ = fb.Update(keyRune('d'))
	if len(fb.Tree().Root().Children) != 1 {
		t.Errorf("got %d children after delete, want 1", len(fb.Tree().Root().Children))
	}
	if !fb.selected.Equal(filter.Path{0}) {
		t.Errorf("selection = %v after delete, want [0]", fb.selected)
	}

	// Deleting with the root selected is a no-op.
	fb, _ = fb.Update(keyRune('k'))
	fb, _ = fb.Update(keyRune('d'))
	if len(fb.Tree().Root().Children) != 1 {
		t.Errorf("deleting the root should not remove children")
	}
}

func TestFilterBuilderWrapCondition(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(filter.Cond("name", filter.IsNull{})))

	fb, _ = fb.Update(keyRune('j'))
	fb, _ = fb.Update(keyRune('g'))
	if fb.mode != "group" {
		t.Fatalf("mode = %q, want group", fb.mode)
	}
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyTab}) // switch to OR
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	g, ok := fb.Tree().Root().Children[0].(*filter.Group)
	if !ok {
		t.Fatalf("child is %T, want group", fb.Tree().Root().Children[0])
	}
	if g.Op != filter.GroupOr || len(g.Children) != 1 {
		t.Errorf("wrapped group = %+v, want Or with one child", g)
	}
}

func TestFilterBuilderAddGroupUnderRoot(t *testing.T) {
	fb := newBuilder()

	fb, _ = fb.Update(keyRune('g'))
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter}) // AND group

	g, ok := fb.Tree().Root().Children[0].(*filter.Group)
	if !ok {
		t.Fatalf("child is %T, want group", fb.Tree().Root().Children[0])
	}
	if g.Op != filter.GroupAnd || len(g.Children) != 0 {
		t.Errorf("new group = %+v, want empty And", g)
	}
	if !fb.selected.Equal(filter.Path{0}) {
		t.Errorf("selection = %v, want the new group", fb.selected)
	}
}

func TestFilterBuilderApplySendsClone(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(filter.Cond("age", filter.GreaterThan{Value: "30"})))

	fb, cmd := fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("apply produced no command")
	}
	msg, ok := cmd().(ApplyFilterMsg)
	if !ok {
		t.Fatalf("command produced %T, want ApplyFilterMsg", cmd())
	}
	if !filter.Equal(msg.Expr, fb.Tree().Root()) {
		t.Fatalf("applied expression does not match the tree")
	}

	// Mutating the builder afterwards must not affect the sent tree.
	fb.Tree().Root().Children[0].(*filter.Condition).Column = "name"
	if filter.Equal(msg.Expr, fb.Tree().Root()) {
		t.Errorf("applied expression shares state with the builder")
	}
}

func TestFilterBuilderSave(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(filter.Cond("age", filter.IsNull{})))

	fb, _ = fb.Update(keyRune('s'))
	if fb.mode != "save" {
		t.Fatalf("mode = %q, want save", fb.mode)
	}

	// An empty name is rejected.
	fb, cmd := fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty name produced a command")
	}
	if fb.validationError == "" {
		t.Errorf("empty name produced no validation error")
	}

	fb = typeString(fb, "nulls")
	fb, cmd = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("save produced no command")
	}
	msg, ok := cmd().(SaveFilterMsg)
	if !ok {
		t.Fatalf("command produced %T, want SaveFilterMsg", cmd())
	}
	if msg.Name != "nulls" {
		t.Errorf("saved name = %q, want nulls", msg.Name)
	}
}

func TestFilterBuilderClose(t *testing.T) {
	fb := newBuilder()

	_, cmd := fb.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc produced no command")
	}
	if _, ok := cmd().(CloseFilterBuilderMsg); !ok {
		t.Errorf("command produced %T, want CloseFilterBuilderMsg", cmd())
	}
}

func TestFilterBuilderValidation(t *testing.T) {
	fb := newBuilder()

	fb, _ = fb.Update(keyRune('a'))
	for i := 0; i < 7; i++ { // cycle to Between
		fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	// Between requires a "min,max" operand.
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if fb.validationError == "" {
		t.Errorf("malformed operand produced no validation error")
	}
	if len(fb.Tree().Root().Children) != 0 {
		t.Errorf("invalid condition was inserted")
	}
}

func TestFilterBuilderLines(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(
		filter.Cond("name", filter.IsNull{}),
		filter.Or(filter.Cond("age", filter.NotNull{})),
	))

	lines := fb.lines()
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0].label != "Root AND" || !lines[0].isGroup {
		t.Errorf("line 0 = %+v, want Root AND group", lines[0])
	}
	if lines[2].label != "OR" || lines[2].indent != 1 {
		t.Errorf("line 2 = %+v, want OR at indent 1", lines[2])
	}
	if !lines[3].path.Equal(filter.Path{1, 0}) || lines[3].indent != 2 {
		t.Errorf("line 3 = %+v, want path [1 0] at indent 2", lines[3])
	}
}

func TestFilterBuilderNavigationClampsAtEnds(t *testing.T) {
	fb := newBuilder()
	fb.Restore(filter.And(filter.Cond("name", filter.IsNull{})))

	fb, _ = fb.Update(keyRune('k'))
	if !fb.selected.IsRoot() {
		t.Errorf("moving up from the root moved the selection")
	}

	fb, _ = fb.Update(keyRune('j'))
	fb, _ = fb.Update(keyRune('j'))
	if !fb.selected.Equal(filter.Path{0}) {
		t.Errorf("moving down past the end moved the selection, got %v", fb.selected)
	}
}
