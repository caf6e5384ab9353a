package intervaldp

type stage uint8

const (
	stageLeftHalf stage = iota
	stageRightHalf
)

// frame is one state under evaluation on the explicit stack.
type frame struct {
	l, r      int
	side      Side
	threshold int64
	bounded   bool

	next     int // next pivot to examine
	stage    stage
	leftHalf int64
	best     int64
}

// evalIterative computes the same values as eval, visiting states in the same
// order, without growing the goroutine stack with the interval depth.
func (s *Solver) evalIterative() int64 {
	n := len(s.seq)
	if n == 0 {
		return 0
	}

	stack := make([]frame, 0, n+1)
	stack = append(stack, s.newFrame(0, n, SideNone))
	s.trackDepth(len(stack))

	var (
		ret      int64
		returned bool
	)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if returned {
			returned = false
			top.accept(ret)
		}

		child, pending := s.advance(top)
		if pending {
			stack = append(stack, child)
			s.trackDepth(len(stack))

			continue
		}

		if top.side.memoized() {
			s.table.store(top.l, top.r, top.side, top.best)
		}

		ret = top.best
		returned = true
		stack = stack[:len(stack)-1]
	}

	return ret
}

// advance walks the pivots of f until a child state needs evaluation. It
// returns that child, or false when f is complete.
func (s *Solver) advance(f *frame) (frame, bool) {
	for ; f.next < f.r; f.next++ {
		if f.stage == stageLeftHalf && f.bounded && s.seq[f.next] >= f.threshold {
			continue
		}

		if f.stage == stageLeftHalf {
			v, ok := s.resolve(f.l, f.next, SideRight)
			if !ok {
				return s.newFrame(f.l, f.next, SideRight), true
			}

			f.leftHalf = v
			f.stage = stageRightHalf
		}

		v, ok := s.resolve(f.next+1, f.r, SideLeft)
		if !ok {
			return s.newFrame(f.next+1, f.r, SideLeft), true
		}

		f.best = max(f.best, max(f.leftHalf, v)+1)
		f.stage = stageLeftHalf
	}

	return frame{}, false
}

// accept stores the value of the child that was just evaluated.
func (f *frame) accept(v int64) {
	if f.stage == stageLeftHalf {
		f.leftHalf = v
		f.stage = stageRightHalf

		return
	}

	f.best = max(f.best, max(f.leftHalf, v)+1)
	f.stage = stageLeftHalf
	f.next++
}

// resolve answers a state without evaluation when it is empty or memoized.
func (s *Solver) resolve(l, r int, side Side) (int64, bool) {
	if l == r {
		return 0, true
	}

	v, ok := s.table.Lookup(l, r, side)
	if ok {
		s.stats.Hits++
	}

	return v, ok
}

func (s *Solver) newFrame(l, r int, side Side) frame {
	s.stats.States++

	threshold, bounded := bound(s.seq, l, r, side)

	return frame{l: l, r: r, side: side, threshold: threshold, bounded: bounded, next: l}
}

func (s *Solver) trackDepth(depth int) {
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}
}
