package intervaldp

// sidesStored is the number of memoized sides per interval.
const sidesStored = 2

// Table is the memo table of one solve. It holds a result and a computed
// flag for every (l, r, side) with 0 <= l <= r <= n and side in
// {SideLeft, SideRight}. Zero is a legitimate result, hence the flags.
//
// Entries are written once per solve and never invalidated.
type Table struct {
	n        int
	values   []int64
	computed []bool
}

// reset prepares the table for a sequence of length n, reusing the backing
// arrays when they are large enough.
func (t *Table) reset(n int) {
	size := (n + 1) * (n + 1) * sidesStored

	if cap(t.values) >= size {
		t.values = t.values[:size]
		t.computed = t.computed[:size]

		clear(t.values)
		clear(t.computed)
	} else {
		t.values = make([]int64, size)
		t.computed = make([]bool, size)
	}

	t.n = n
}

// Len returns the sequence length the table was sized for.
func (t *Table) Len() int {
	return t.n
}

// Lookup returns the stored result for (l, r, side). The second value is
// false when the state was never computed, lies outside the table, or uses
// SideNone.
func (t *Table) Lookup(l, r int, side Side) (int64, bool) {
	idx, ok := t.index(l, r, side)
	if !ok || !t.computed[idx] {
		return 0, false
	}

	return t.values[idx], true
}

// Computed returns the number of stored states.
func (t *Table) Computed() int {
	count := 0

	for _, done := range t.computed {
		if done {
			count++
		}
	}

	return count
}

func (t *Table) store(l, r int, side Side, value int64) {
	idx, ok := t.index(l, r, side)
	if !ok {
		return
	}

	t.values[idx] = value
	t.computed[idx] = true
}

func (t *Table) index(l, r int, side Side) (int, bool) {
	if !side.memoized() || l < 0 || r < l || r > t.n {
		return 0, false
	}

	return (l*(t.n+1)+r)*sidesStored + int(side-SideLeft), true
}
