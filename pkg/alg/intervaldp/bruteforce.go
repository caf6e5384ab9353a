package intervaldp

import (
	"errors"
	"fmt"
)

// MaxBruteForceLen bounds the input of the unmemoized evaluator, whose cost
// grows roughly as 3^n.
const MaxBruteForceLen = 12

// ErrBruteForceTooLong indicates a sequence too long for BruteForce.
var ErrBruteForceTooLong = errors.New("sequence too long for brute-force evaluation")

// BruteForce evaluates the recurrence without a memo table.
func BruteForce(seq []int64) (int64, error) {
	return NewSolver(WithMode(ModeBruteForce)).Solve(seq)
}

func (s *Solver) bruteForce() (int64, error) {
	if len(s.seq) > MaxBruteForceLen {
		return 0, fmt.Errorf("%w: %d elements (max %d)", ErrBruteForceTooLong, len(s.seq), MaxBruteForceLen)
	}

	return s.evalBrute(0, len(s.seq), SideNone), nil
}

func (s *Solver) evalBrute(l, r int, side Side) int64 {
	if l == r {
		return 0
	}

	s.enter()

	threshold, bounded := bound(s.seq, l, r, side)

	var best int64

	for i := l; i < r; i++ {
		if bounded && s.seq[i] >= threshold {
			continue
		}

		best = max(best, max(s.evalBrute(l, i, SideRight), s.evalBrute(i+1, r, SideLeft))+1)
	}

	s.depth--

	return best
}
