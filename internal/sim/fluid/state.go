package fluid

import "sort"

// CellState is one tracked cell in exported form, for snapshots and the
// observer stream.
type CellState struct {
	Pos     Pos
	Level   uint8
	Falling bool
	Source  bool
}

// PendingState is one scheduled re-evaluation in exported form.
type PendingState struct {
	Pos     Pos
	DueTick uint64
}

// Export returns the logical tick, all tracked cells and all authoritative
// pending entries, in deterministic order. The snapshot layer persists
// exactly this; the simulation itself stays persistence-free.
func (s *Simulator) Export() (uint64, []CellState, []PendingState) {
	cells := make([]CellState, 0, len(s.cells))
	for p, c := range s.cells {
		cells = append(cells, CellState{Pos: p, Level: c.Level, Falling: c.Falling, Source: c.IsSource()})
	}
	sort.Slice(cells, func(i, j int) bool { return posLess(cells[i].Pos, cells[j].Pos) })

	pending := make([]PendingState, 0, len(s.sched.due))
	for p, at := range s.sched.due {
		pending = append(pending, PendingState{Pos: p, DueTick: at})
	}
	sort.Slice(pending, func(i, j int) bool { return posLess(pending[i].Pos, pending[j].Pos) })

	return s.sched.now, cells, pending
}

// Restore replaces the simulation state with a previously exported one.
// Intended for boot-time snapshot resume, before any ticking.
func (s *Simulator) Restore(tick uint64, cells []CellState, pending []PendingState) {
	s.cells = make(map[Pos]Cell, len(cells))
	for _, cs := range cells {
		lvl := cs.Level
		if lvl > LevelMax {
			lvl = LevelMax
		}
		s.cells[cs.Pos] = Cell{Level: lvl, Falling: cs.Falling}
	}
	s.sched = newSchedule()
	s.sched.now = tick
	for _, pe := range pending {
		delay := 0
		if pe.DueTick > tick {
			delay = int(pe.DueTick - tick)
		}
		s.sched.push(pe.Pos, delay)
	}
	s.acc = 0
	s.scanned = map[ChunkKey]bool{}
	s.lastStats = Stats{}
}

func posLess(a, b Pos) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
