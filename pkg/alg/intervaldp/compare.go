package intervaldp

import "fmt"

// Comparison holds the results of every evaluator on one sequence.
type Comparison struct {
	Length     int
	Memo       int64
	Iterative  int64
	BruteForce int64
	// BruteForceSkipped is set when the sequence exceeds MaxBruteForceLen.
	BruteForceSkipped bool
}

// Agree reports whether all evaluated results are equal.
func (c Comparison) Agree() bool {
	if c.Memo != c.Iterative {
		return false
	}

	return c.BruteForceSkipped || c.Memo == c.BruteForce
}

// Compare runs every evaluator on seq. Brute force is skipped above
// MaxBruteForceLen.
func Compare(seq []int64) (Comparison, error) {
	cmp := Comparison{Length: len(seq)}

	memo, err := NewSolver(WithMode(ModeMemo)).Solve(seq)
	if err != nil {
		return cmp, fmt.Errorf("memo: %w", err)
	}

	iterative, err := NewSolver(WithMode(ModeIterative)).Solve(seq)
	if err != nil {
		return cmp, fmt.Errorf("iterative: %w", err)
	}

	cmp.Memo = memo
	cmp.Iterative = iterative

	if len(seq) > MaxBruteForceLen {
		cmp.BruteForceSkipped = true

		return cmp, nil
	}

	brute, err := BruteForce(seq)
	if err != nil {
		return cmp, fmt.Errorf("brute force: %w", err)
	}

	cmp.BruteForce = brute

	return cmp, nil
}
