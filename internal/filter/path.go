package filter

import (
	"fmt"
	"strings"
)

// Path addresses a node in the tree as child indices walked from the
// root. The empty path is the root itself. Paths are produced by the
// tree editor; UI code should treat them as opaque cursor values and
// only feed back paths it received from editor operations.
type Path []int

// Root is the empty path.
func Root() Path { return Path{} }

// IsRoot reports whether the path addresses the root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Parent returns the path of the owning group, or the root path when p
// is already the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p.Clone()[:len(p)-1]
}

// Child returns p extended by one index.
func (p Path) Child(i int) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = i
	return child
}

// Clone returns a copy that shares no storage with p.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the path for diagnostics, e.g. "/0/2".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		fmt.Fprintf(&b, "/%d", i)
	}
	return b.String()
}
