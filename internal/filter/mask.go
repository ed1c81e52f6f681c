package filter

// Mask is a per-row inclusion vector, one entry per table row.
type Mask []bool

// AllTrue returns a mask of n rows with every row included. This is the
// identity of an empty AND group.
func AllTrue(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// AllFalse returns a mask of n rows with no row included. This is the
// identity of an empty OR group.
func AllFalse(n int) Mask {
	return make(Mask, n)
}

// And intersects other into m elementwise.
func (m Mask) And(other Mask) {
	for i := range m {
		m[i] = m[i] && other[i]
	}
}

// Or unions other into m elementwise.
func (m Mask) Or(other Mask) {
	for i := range m {
		m[i] = m[i] || other[i]
	}
}

// Count returns the number of included rows.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the included row indices in order.
func (m Mask) Indices() []int {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v {
			idx = append(idx, i)
		}
	}
	return idx
}
