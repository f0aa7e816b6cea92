package internal

// Pass summarizes one outermost notification dispatch, including everything
// dispatched re-entrantly from inside it.
type Pass struct {
	// Count is the number of guarded emissions entered during the pass.
	Count int
	// MaxDepth is the deepest nesting reached during the pass.
	MaxDepth int
}

// FireStack counts nested notification dispatches.
// It never defers or serializes work: nested dispatch runs synchronously.
type FireStack struct {
	// each nested emission increases the depth by 1
	// counters are reset when the outermost emission returns
	depth    int
	count    int
	maxDepth int

	// storm thresholds, 0 disables the check
	stormDepth int
	stormCount int
	stormed    bool

	onStorm  func(Pass)
	onSettle func(Pass)
}

func (s *FireStack) Enter(fn func()) {
	s.depth++
	s.count++
	if s.depth > s.maxDepth {
		s.maxDepth = s.depth
	}
	s.checkStorm()

	defer func() {
		s.depth--
		if s.depth == 0 {
			pass := Pass{Count: s.count, MaxDepth: s.maxDepth}

			s.count = 0
			s.maxDepth = 0
			s.stormed = false

			if s.onSettle != nil {
				s.onSettle(pass)
			}
		}
	}()

	fn()
}

// Depth returns the current nesting depth, 0 outside of any dispatch.
func (s *FireStack) Depth() int { return s.depth }

// Count returns the number of emissions entered in the current pass.
func (s *FireStack) Count() int { return s.count }

// MaxDepth returns the deepest nesting reached in the current pass.
func (s *FireStack) MaxDepth() int { return s.maxDepth }

// Limit sets the storm thresholds. A pass whose depth exceeds depth, or whose
// emission count exceeds count, is reported once through onStorm.
func (s *FireStack) Limit(depth, count int) {
	s.stormDepth = depth
	s.stormCount = count
}

func (s *FireStack) checkStorm() {
	if s.stormed || s.onStorm == nil {
		return
	}

	deep := s.stormDepth > 0 && s.depth > s.stormDepth
	busy := s.stormCount > 0 && s.count > s.stormCount
	if deep || busy {
		s.stormed = true
		s.onStorm(Pass{Count: s.count, MaxDepth: s.maxDepth})
	}
}
