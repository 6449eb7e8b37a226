package fluid

// ChunkKey identifies a horizontal chunk column.
type ChunkKey struct {
	CX int
	CZ int
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func (s *Simulator) chunkOf(p Pos) ChunkKey {
	return ChunkKey{CX: floorDiv(p.X, s.cfg.ChunkSize), CZ: floorDiv(p.Z, s.cfg.ChunkSize)}
}

// OnChunkLoaded scans a freshly streamed-in chunk and registers every fluid
// block as a conservative default source. Only blocks bordering somewhere
// they could actually flow are scheduled; the interior of a lake stays
// quiet until disturbed, so loading does not set off a full-chunk cascade.
// Idempotent per chunk until the matching unload.
func (s *Simulator) OnChunkLoaded(key ChunkKey) {
	if s.scanned[key] {
		return
	}
	s.scanned[key] = true

	cs := s.cfg.ChunkSize
	x0, z0 := key.CX*cs, key.CZ*cs
	height := s.world.Height()
	for x := x0; x < x0+cs; x++ {
		for z := z0; z < z0+cs; z++ {
			for y := 0; y < height; y++ {
				p := Pos{X: x, Y: y, Z: z}
				if s.world.BlockAt(p) != s.cfg.Fluid {
					continue
				}
				if _, tracked := s.cells[p]; !tracked {
					s.cells[p] = Source()
				}
				if s.bordersOpen(p) {
					s.enqueue(p, 0)
				}
			}
		}
	}
}

// bordersOpen reports whether p touches a non-fluid block that fluid could
// displace, i.e. the cell is a candidate to actually flow.
func (s *Simulator) bordersOpen(p Pos) bool {
	check := func(np Pos) bool {
		k, ok := s.blockAt(np)
		return ok && k != s.cfg.Fluid && s.policy.CanDisplace(k)
	}
	for _, d := range horizontal {
		if check(p.add(d)) {
			return true
		}
	}
	return check(p.above()) || check(p.below())
}

// OnChunkUnloaded forgets everything the simulation holds for the chunk:
// tracked cells, pending due entries and queued heap entries. Popped-but-
// stale entries left behind are discarded by the schedule's lazy deletion.
func (s *Simulator) OnChunkUnloaded(key ChunkKey) {
	delete(s.scanned, key)
	for p := range s.cells {
		if s.chunkOf(p) == key {
			delete(s.cells, p)
		}
	}
	s.sched.purge(func(p Pos) bool {
		return s.chunkOf(p) != key
	})
}

// OnBlockChanged is the host's block-change notification entry point. The
// simulation's own writes arrive here too and are ignored while the
// suppression guard is held, so flow cannot re-trigger itself.
func (s *Simulator) OnBlockChanged(p Pos, prev, next Kind) {
	if s.writing > 0 {
		return
	}
	switch {
	case next == s.cfg.Fluid:
		if _, tracked := s.cells[p]; !tracked && p.Y >= 0 && p.Y < s.world.Height() {
			s.cells[p] = Source()
		}
		s.enqueue(p, 0)
		s.enqueueNeighbors(p, s.cfg.NotifyDelayTicks)
	case prev == s.cfg.Fluid:
		s.enqueue(p, 0)
		s.enqueueNeighbors(p, s.cfg.NotifyDelayTicks)
	}
}
