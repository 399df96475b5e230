package resource

// Table is the static per-stage access record, indexed by declaration order.
type Table struct {
	accesses []Access
}

// NewTable copies the given accesses into a Table. Index i of the table
// corresponds to the i-th declared stage.
func NewTable(accesses []Access) *Table {
	t := &Table{accesses: make([]Access, len(accesses))}
	copy(t.accesses, accesses)
	return t
}

// Len returns the number of stages recorded.
func (t *Table) Len() int {
	return len(t.accesses)
}

// Access returns the declared access of stage i.
func (t *Table) Access(i int) Access {
	return t.accesses[i]
}

// Conflicts reports whether stages i and j conflict. A stage never conflicts
// with itself.
func (t *Table) Conflicts(i, j int) bool {
	if i == j {
		return false
	}
	return t.accesses[i].Conflicts(t.accesses[j])
}

// Shared returns the resources causing stages i and j to conflict, sorted.
// It returns nil when they do not conflict.
func (t *Table) Shared(i, j int) []ID {
	if i == j {
		return nil
	}
	s := t.accesses[i].shared(t.accesses[j])
	if len(s) == 0 {
		return nil
	}
	return s.Sorted()
}
