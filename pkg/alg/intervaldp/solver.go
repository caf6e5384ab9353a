package intervaldp

import (
	"errors"
	"fmt"
)

// MaxLen is the largest sequence the solver accepts.
const MaxLen = 300

// Sentinel errors.
var (
	// ErrTooLong indicates the sequence exceeds the configured maximum length.
	ErrTooLong = errors.New("sequence exceeds maximum length")
	// ErrUnknownMode indicates an evaluator mode that is not recognized.
	ErrUnknownMode = errors.New("unknown solver mode")
)

// Mode selects the evaluator used by a Solver.
type Mode string

// Evaluator modes.
const (
	// ModeMemo is the memoized recursion.
	ModeMemo Mode = "memo"
	// ModeIterative is the memoized explicit-stack evaluation.
	ModeIterative Mode = "iterative"
	// ModeBruteForce is the unmemoized recursion, limited to MaxBruteForceLen.
	ModeBruteForce Mode = "brute"
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeMemo, ModeIterative, ModeBruteForce}
}

// ParseMode converts a mode name. The empty string selects ModeMemo.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "":
		return ModeMemo, nil
	case ModeMemo, ModeIterative, ModeBruteForce:
		return Mode(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Stats holds counters gathered during one solve.
type Stats struct {
	// States is the number of states whose split points were enumerated.
	States int64 `json:"states" yaml:"states"`
	// Hits is the number of lookups answered by the memo table.
	Hits int64 `json:"memo_hits" yaml:"memo_hits"`
	// MaxDepth is the deepest chain of states under evaluation at once.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// Option configures a Solver.
type Option func(*Solver)

// WithMode selects the evaluator.
func WithMode(mode Mode) Option {
	return func(s *Solver) {
		s.mode = mode
	}
}

// WithMaxLen lowers the accepted sequence length. Values outside
// [0, MaxLen] are ignored.
func WithMaxLen(n int) Option {
	return func(s *Solver) {
		if n >= 0 && n <= MaxLen {
			s.maxLen = n
		}
	}
}

// Solver evaluates the recurrence for one sequence at a time. A Solver reuses
// its memo table between calls to Solve but is not safe for concurrent use;
// concurrent callers each need their own.
type Solver struct {
	mode   Mode
	maxLen int

	seq   []int64
	table *Table
	stats Stats
	depth int
}

// NewSolver creates a Solver. The default is ModeMemo with MaxLen.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		mode:   ModeMemo,
		maxLen: MaxLen,
		table:  &Table{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Solve returns the maximal nesting depth for seq. The sequence must not be
// modified while Solve runs.
func (s *Solver) Solve(seq []int64) (int64, error) {
	if len(seq) > s.maxLen {
		return 0, fmt.Errorf("%w: %d elements (max %d)", ErrTooLong, len(seq), s.maxLen)
	}

	s.seq = seq
	s.stats = Stats{}
	s.depth = 0
	s.table.reset(len(seq))

	switch s.mode {
	case ModeMemo:
		return s.eval(0, len(seq), SideNone), nil
	case ModeIterative:
		return s.evalIterative(), nil
	case ModeBruteForce:
		return s.bruteForce()
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s.mode)
	}
}

// Mode returns the evaluator in use.
func (s *Solver) Mode() Mode {
	return s.mode
}

// Stats returns the counters of the last solve.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Table returns the memo table of the last solve. The brute-force mode leaves
// it empty.
func (s *Solver) Table() *Table {
	return s.table
}

// Solve evaluates seq with a fresh memoized Solver.
func Solve(seq []int64) (int64, error) {
	return NewSolver().Solve(seq)
}

func (s *Solver) eval(l, r int, side Side) int64 {
	if l == r {
		return 0
	}

	if side.memoized() {
		if v, ok := s.table.Lookup(l, r, side); ok {
			s.stats.Hits++

			return v
		}
	}

	s.enter()

	threshold, bounded := bound(s.seq, l, r, side)

	var best int64

	for i := l; i < r; i++ {
		if bounded && s.seq[i] >= threshold {
			continue
		}

		// Both halves are bounded by the pivot s.seq[i].
		leftHalf := s.eval(l, i, SideRight)
		rightHalf := s.eval(i+1, r, SideLeft)

		best = max(best, max(leftHalf, rightHalf)+1)
	}

	s.depth--

	if side.memoized() {
		s.table.store(l, r, side, best)
	}

	return best
}

func (s *Solver) enter() {
	s.stats.States++
	s.depth++

	if s.depth > s.stats.MaxDepth {
		s.stats.MaxDepth = s.depth
	}
}
