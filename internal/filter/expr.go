package filter

import "fmt"

// GroupOp is the boolean connective of a group node.
type GroupOp string

const (
	GroupAnd GroupOp = "And"
	GroupOr  GroupOp = "Or"
)

// Opposite returns the other connective.
func (op GroupOp) Opposite() GroupOp {
	if op == GroupAnd {
		return GroupOr
	}
	return GroupAnd
}

// Expr is a node in a filter expression tree: either a single column
// condition or an And/Or group owning an ordered list of children.
// Groups exclusively own their children; the tree never shares nodes.
type Expr interface {
	isExpr()
}

// Condition is a leaf: one column tested against one predicate.
// The column is not validated against any table at construction time; a
// missing column surfaces as an evaluation error.
type Condition struct {
	Column string
	Pred   Predicate
}

// Group is an And or Or node with an ordered child list.
type Group struct {
	Op       GroupOp
	Children []Expr
}

func (*Condition) isExpr() {}
func (*Group) isExpr()     {}

// And builds an AND group from the given children.
func And(children ...Expr) *Group {
	return &Group{Op: GroupAnd, Children: children}
}

// Or builds an OR group from the given children.
func Or(children ...Expr) *Group {
	return &Group{Op: GroupOr, Children: children}
}

// Cond builds a condition leaf.
func Cond(column string, pred Predicate) *Condition {
	return &Condition{Column: column, Pred: pred}
}

// Summary renders a one-line human description, e.g. `age > 30` or
// `name contains "foo" [aA]`.
func (c *Condition) Summary() string {
	return c.Pred.summary(c.Column)
}

// ChildCount returns the number of children of a group, zero for a
// condition.
func ChildCount(e Expr) int {
	if g, ok := e.(*Group); ok {
		return len(g.Children)
	}
	return 0
}

// Clone deep-copies an expression tree.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case *Condition:
		c := *n
		if p, ok := c.Pred.(InList); ok {
			p.Values = append([]string(nil), p.Values...)
			c.Pred = p
		}
		return &c
	case *Group:
		children := make([]Expr, len(n.Children))
		for i, child := range n.Children {
			children[i] = Clone(child)
		}
		return &Group{Op: n.Op, Children: children}
	default:
		panic(fmt.Sprintf("filter: unknown expr type %T", e))
	}
}

// Equal reports structural equality of two expression trees.
func Equal(a, b Expr) bool {
	switch an := a.(type) {
	case *Condition:
		bn, ok := b.(*Condition)
		if !ok || an.Column != bn.Column {
			return false
		}
		return predicateEqual(an.Pred, bn.Pred)
	case *Group:
		bn, ok := b.(*Group)
		if !ok || an.Op != bn.Op || len(an.Children) != len(bn.Children) {
			return false
		}
		for i := range an.Children {
			if !Equal(an.Children[i], bn.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}
