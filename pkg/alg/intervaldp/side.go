// Package intervaldp computes the maximal nesting depth of pivot splits over an
// integer sequence.
//
// An interval [l, r) is split at a pivot i, which yields the sub-intervals
// [l, i) and [i+1, r). Each sub-interval is bounded by the pivot that created
// it: only elements strictly smaller than that pivot may be chosen as its own
// pivots. The root interval is unbounded. The result is the largest number of
// nested split levels reachable from the root.
//
// Evaluation is a top-down dynamic program over (l, r, side) states with a
// memo table sized for the input. Three evaluators share the recurrence: the
// memoized recursion, an explicit-stack variant for small-stack environments,
// and an unmemoized brute force used as a reference on short inputs.
package intervaldp

import "fmt"

// Side identifies which neighbour of an interval bounds its pivots.
type Side uint8

const (
	// SideNone marks the root interval. Every index is an eligible pivot.
	SideNone Side = iota
	// SideLeft bounds [l, r) by seq[l-1], the element just left of it.
	SideLeft
	// SideRight bounds [l, r) by seq[r], the element just right of it.
	SideRight
)

// String returns the lower-case side name.
func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// memoized reports whether states with this side are stored in the memo table.
func (s Side) memoized() bool {
	return s == SideLeft || s == SideRight
}

// bound returns the threshold for pivots of [l, r) and whether one applies.
func bound(seq []int64, l, r int, side Side) (int64, bool) {
	switch side {
	case SideLeft:
		return seq[l-1], true
	case SideRight:
		return seq[r], true
	case SideNone:
		return 0, false
	default:
		return 0, false
	}
}
