package fluid

// Tick converts elapsed frame time into whole logical ticks and drains due
// work. Catch-up after a stall is capped at MaxTicksPerFrame; every tick
// evaluates at most DrainBudget positions, with excess spilling over to
// later ticks rather than being dropped.
func (s *Simulator) Tick(deltaSeconds float64) Stats {
	if deltaSeconds > 0 {
		s.acc += deltaSeconds
	}
	st := Stats{}
	for st.Steps < s.cfg.MaxTicksPerFrame && s.acc >= s.tickLen {
		s.acc -= s.tickLen
		s.sched.now++
		st.Steps++
		s.drain(&st)
	}
	// Whatever could not be caught up within the cap is forfeited, keeping
	// the worst-case frame cost bounded after a long stall.
	if s.acc > s.tickLen {
		s.acc = s.tickLen
	}
	st.Tick = s.sched.now
	st.Tracked = len(s.cells)
	st.Pending = len(s.sched.due)
	s.lastStats = st
	return st
}

func (s *Simulator) drain(st *Stats) {
	for n := 0; n < s.cfg.DrainBudget; n++ {
		p, ok := s.sched.pop(&st.Discarded)
		if !ok {
			return
		}
		s.update(p)
		st.Processed++
	}
}

// QueueUpdate schedules p for re-evaluation on the next tick. Exposed so
// the host can poke the simulation after changes it cannot classify, such
// as a neighbouring solid being removed.
func (s *Simulator) QueueUpdate(p Pos) {
	s.enqueue(p, 0)
}

func (s *Simulator) enqueue(p Pos, delay int) {
	if p.Y < 0 || p.Y >= s.world.Height() {
		return
	}
	s.sched.push(p, delay)
}

func (s *Simulator) enqueueNeighbors(p Pos, delay int) {
	for _, d := range horizontal {
		s.enqueue(p.add(d), delay)
	}
	s.enqueue(p.above(), delay)
	s.enqueue(p.below(), delay)
}

// wakeFluidNeighbors schedules only those neighbours that currently hold
// fluid, tracked or not.
func (s *Simulator) wakeFluidNeighbors(p Pos) {
	wake := func(np Pos) {
		if _, tracked := s.cells[np]; tracked {
			s.enqueue(np, s.cfg.NotifyDelayTicks)
			return
		}
		if k, ok := s.blockAt(np); ok && k == s.cfg.Fluid {
			s.enqueue(np, s.cfg.NotifyDelayTicks)
		}
	}
	for _, d := range horizontal {
		wake(p.add(d))
	}
	wake(p.above())
	wake(p.below())
}

func (s *Simulator) blockAt(p Pos) (Kind, bool) {
	if p.Y < 0 || p.Y >= s.world.Height() {
		return 0, false
	}
	return s.world.BlockAt(p), true
}

// setBlock writes through to the world with the suppression guard held,
// so the write does not loop back through OnBlockChanged.
func (s *Simulator) setBlock(p Pos, k Kind) {
	if p.Y < 0 || p.Y >= s.world.Height() {
		return
	}
	s.writing++
	s.world.SetBlockAt(p, k)
	s.writing--
}

// update is the transition engine: one full evaluation of a single
// position. It may create or remove the cell here, write blocks here or at
// neighbouring positions, and schedule further evaluations.
func (s *Simulator) update(p Pos) {
	k, ok := s.blockAt(p)
	if !ok {
		return
	}

	// The block stopped being fluid: drop the cell and wake fluid
	// neighbours, something may now flow into the vacated space. Waking
	// only fluid keeps evaluation of plain air a terminating no-op.
	if k != s.cfg.Fluid {
		delete(s.cells, p)
		s.wakeFluidNeighbors(p)
		return
	}

	cell, tracked := s.cells[p]
	if !tracked {
		cell = s.discover(p)
		s.cells[p] = cell
	}
	prev := cell

	// Vertical flow first: water prefers to fall.
	fell := s.tryFall(p, cell)
	if !fell && cell.Falling {
		cell = cell.Settled()
	}

	target := s.targetLevel(p, cell)

	// No feed left: decay away and let the removal cascade outward.
	if !cell.IsSource() && target == LevelEmpty {
		delete(s.cells, p)
		s.setBlock(p, s.cfg.Air)
		s.enqueueNeighbors(p, s.cfg.NotifyDelayTicks)
		return
	}

	if target < LevelSource {
		target = LevelSource
	}
	if target > LevelMax {
		target = LevelMax
	}
	cell = Cell{Level: uint8(target), Falling: fell && target > LevelSource}
	if cell != prev {
		s.cells[p] = cell
		s.enqueueNeighbors(p, s.cfg.NotifyDelayTicks)
	}

	s.spread(p, cell)
}

// discover derives an initial cell for fluid the simulation has never seen
// (world-generated, or placed while its chunk was unscanned). Fluid with
// fluid overhead and room below is mid-cascade; anything else is assumed
// to be a source, the cheap conservative guess.
func (s *Simulator) discover(p Pos) Cell {
	above, okA := s.blockAt(p.above())
	below, okB := s.blockAt(p.below())
	if okA && above == s.cfg.Fluid && okB && s.policy.CanDisplace(below) {
		return Cell{Level: 1, Falling: true}
	}
	return Source()
}

// tryFall propagates a falling cell into the position below, if it is
// displaceable. Reports whether the cell has somewhere to fall: either the
// fill succeeded or fluid already occupies the space below. A column over
// tracked fluid keeps falling even after its landing cell settles; only
// the landing cell itself, with nothing displaceable beneath, demotes.
func (s *Simulator) tryFall(p Pos, cell Cell) bool {
	bp := p.below()
	bk, ok := s.blockAt(bp)
	if !ok || !s.policy.CanDisplace(bk) {
		return false
	}
	if s.fill(bp, Cell{Level: uint8(fallLevel(cell)), Falling: true}) {
		return true
	}
	_, tracked := s.cells[bp]
	return tracked
}

// targetLevel computes the level this cell should settle at, or LevelEmpty
// if it has no feed and should disappear.
func (s *Simulator) targetLevel(p Pos, cell Cell) int {
	if cell.IsSource() {
		return LevelSource
	}

	minNeighbor := LevelEmpty
	sources := 0
	for _, d := range horizontal {
		np := p.add(d)
		if nc, ok := s.cells[np]; ok {
			if nc.IsSource() {
				sources++
			}
			// A falling neighbour is mid-cascade and feeds nothing
			// sideways, mirroring the no-spread-while-falling rule.
			// Without this, two adjacent falling columns would sustain
			// each other after their feeds are gone.
			if !nc.Falling && int(nc.Level) < minNeighbor {
				minNeighbor = int(nc.Level)
			}
			continue
		}
		// Untracked fluid has not been discovered yet; borrow it at
		// source strength, matching what discovery would register.
		if nk, ok := s.blockAt(np); ok && nk == s.cfg.Fluid {
			sources++
			minNeighbor = LevelSource
		}
	}

	// Regrowth: pooled between two sources over solid ground, this cell
	// becomes a source itself (infinite-source pooling).
	if sources >= 2 && s.policy.SupportsSource(p) {
		return LevelSource
	}

	// Fluid above pours into this cell and feeds it at the strength it
	// falls with, still capped by the one-per-hop spread rule.
	if ac, ok := s.cells[p.above()]; ok {
		t := fallLevel(ac)
		if minNeighbor+1 < t {
			t = minNeighbor + 1
		}
		return t
	}

	if minNeighbor == LevelEmpty {
		return LevelEmpty
	}
	// One thinner than the thinnest fed neighbour. Past the maximum the
	// cell has no feed at all: reporting empty here is what lets a pool
	// cut off from its source drain instead of idling at max level.
	t := minNeighbor + 1
	if t > LevelMax {
		return LevelEmpty
	}
	return t
}

// fallLevel is the level a cell propagates when falling: sources pour at
// full strength, flowing cells keep their own level.
func fallLevel(c Cell) int {
	if c.IsSource() || c.Level < 1 {
		return 1
	}
	return int(c.Level)
}

// spread pushes fluid into the four horizontal neighbours. Falling cells
// do not spread until they land; a cell whose outflow would be thinner
// than the thinnest level has no capacity left.
func (s *Simulator) spread(p Pos, cell Cell) {
	if cell.Falling {
		return
	}
	level := 1
	if !cell.IsSource() {
		level = int(cell.Level) + 1
		if level > LevelMax {
			return
		}
	}
	for _, d := range horizontal {
		np := p.add(d)
		if s.fill(np, Cell{Level: uint8(level)}) {
			s.enqueue(np, s.cfg.NotifyDelayTicks)
		}
	}
}

// fill attempts to place cand at p, shared by vertical propagation and
// horizontal spread. Sources are never overwritten; otherwise cand must be
// strictly stronger than whatever is tracked there. Fragile blocks are
// destroyed with their drop before the write.
func (s *Simulator) fill(p Pos, cand Cell) bool {
	k, ok := s.blockAt(p)
	if !ok {
		return false
	}
	if !s.policy.CanDisplace(k) {
		return false
	}
	if existing, tracked := s.cells[p]; tracked {
		if existing.IsSource() {
			return false
		}
		if !cand.StrongerThan(existing) {
			return false
		}
		// Landing conversion only: a still cell replaces an equal-level
		// falling one solely when the column has stalled. An actively
		// falling cell is left alone, or sideways spread would convert
		// it back and forth against its own re-evaluation forever.
		if existing.Falling && !cand.Falling && existing.Level == cand.Level {
			if bk, ok := s.blockAt(p.below()); ok && s.policy.CanDisplace(bk) {
				return false
			}
		}
	}
	if s.policy.IsFragile(k) {
		s.policy.DropFragile(p, k)
	}
	if k != s.cfg.Fluid {
		s.setBlock(p, s.cfg.Fluid)
	}
	s.cells[p] = cand
	s.enqueue(p, s.cfg.FlowDelayTicks)
	return true
}
