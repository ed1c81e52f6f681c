package filter

import "github.com/rebeliceyang/lazytab/internal/dataset"

// Tree owns the root expression of one editing session. The root is
// always a group (default: empty And) and every mutation preserves
// that. Structure-changing operations return a corrected selection
// path so a UI-held cursor never dangles.
//
// Mutations assume exclusive access; concurrent read-only evaluation of
// the same tree is safe.
type Tree struct {
	root *Group
}

// NewTree creates a tree with an empty AND root.
func NewTree() *Tree {
	return &Tree{root: And()}
}

// Root returns the root group.
func (t *Tree) Root() *Group {
	return t.root
}

// SetRoot replaces the whole tree, used to restore a persisted filter.
// A bare condition is wrapped in an AND group so the root stays a
// group. The returned path (always the root) is the caller's new
// cursor.
func (t *Tree) SetRoot(e Expr) Path {
	switch n := e.(type) {
	case *Group:
		t.root = n
	case *Condition:
		t.root = And(n)
	default:
		t.root = And()
	}
	return Root()
}

// At resolves a path from the root. It returns false the instant the
// walk would index through a condition or run out of range.
func (t *Tree) At(p Path) (Expr, bool) {
	var node Expr = t.root
	for _, i := range p {
		g, ok := node.(*Group)
		if !ok || i < 0 || i >= len(g.Children) {
			return nil, false
		}
		node = g.Children[i]
	}
	return node, true
}

// Insert places n at p. The empty path appends to the root's children.
// Otherwise the final index inserts among the parent's children,
// shifting later siblings right; an out-of-range index appends
// instead. Insert never overwrites an existing node. Invalid paths are
// a no-op.
func (t *Tree) Insert(p Path, n Expr) {
	insertAt(t.root, p, n)
}

func insertAt(e Expr, p Path, n Expr) {
	g, ok := e.(*Group)
	if !ok {
		return
	}
	if len(p) == 0 {
		g.Children = append(g.Children, n)
		return
	}
	head, tail := p[0], p[1:]
	if len(tail) == 0 {
		if head < 0 {
			return
		}
		if head >= len(g.Children) {
			g.Children = append(g.Children, n)
			return
		}
		g.Children = append(g.Children, nil)
		copy(g.Children[head+1:], g.Children[head:])
		g.Children[head] = n
		return
	}
	if head >= 0 && head < len(g.Children) {
		insertAt(g.Children[head], tail, n)
	}
}

// Replace overwrites the node at p with n. The empty path replaces the
// whole tree (cursor handling is then SetRoot's). Invalid paths are a
// no-op.
func (t *Tree) Replace(p Path, n Expr) {
	if len(p) == 0 {
		t.SetRoot(n)
		return
	}
	parent, ok := t.At(p.Parent())
	if !ok {
		return
	}
	g, ok := parent.(*Group)
	idx := p[len(p)-1]
	if !ok || idx < 0 || idx >= len(g.Children) {
		return
	}
	g.Children[idx] = n
}

// Remove deletes the node at p and returns the new selection: the
// previous sibling when one exists, else the new first sibling, else
// the emptied parent itself. Removing the root is a no-op returning
// the root path; a stale path falls back toward the root.
func (t *Tree) Remove(p Path) Path {
	if p.IsRoot() {
		return Root()
	}
	parent, ok := t.At(p.Parent())
	g, isGroup := parent.(*Group)
	idx := p[len(p)-1]
	if !ok || !isGroup || idx < 0 || idx >= len(g.Children) {
		return p.Parent()
	}
	g.Children = append(g.Children[:idx], g.Children[idx+1:]...)
	switch {
	case idx > 0:
		next := p.Clone()
		next[len(next)-1] = idx - 1
		return next
	case len(g.Children) > 0:
		next := p.Clone()
		next[len(next)-1] = 0
		return next
	default:
		return p.Parent()
	}
}

// ToggleOp relabels the group at p with the opposite connective,
// keeping its children verbatim. It reports whether p addressed a
// group.
func (t *Tree) ToggleOp(p Path) bool {
	node, ok := t.At(p)
	if !ok {
		return false
	}
	g, ok := node.(*Group)
	if !ok {
		return false
	}
	g.Op = g.Op.Opposite()
	return true
}

// WrapInGroup converts the condition at p into a one-child group with
// the given connective, so siblings can be added beneath it. It
// reports whether p addressed a condition.
func (t *Tree) WrapInGroup(p Path, op GroupOp) bool {
	node, ok := t.At(p)
	if !ok {
		return false
	}
	c, ok := node.(*Condition)
	if !ok {
		return false
	}
	t.Replace(p, &Group{Op: op, Children: []Expr{c}})
	return true
}

// Evaluate computes the tree's inclusion mask over a table.
func (t *Tree) Evaluate(tbl *dataset.Table) (Mask, error) {
	return Evaluate(t.root, tbl)
}
