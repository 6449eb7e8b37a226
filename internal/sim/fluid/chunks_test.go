package fluid

import "testing"

// buildPool fills a 3x3x3 water cube on a stone shelf in the middle of
// chunk (0,0), directly in the block store (world-generated, never
// notified). Stone walls keep any flood inside the chunk.
func buildPool(w *testWorld) (cells int) {
	for i := 3; i <= 13; i++ {
		for y := 0; y < w.height; y++ {
			w.blocks[Pos{X: 3, Y: y, Z: i}] = tStone
			w.blocks[Pos{X: 13, Y: y, Z: i}] = tStone
			w.blocks[Pos{X: i, Y: y, Z: 3}] = tStone
			w.blocks[Pos{X: i, Y: y, Z: 13}] = tStone
		}
	}
	for x := 7; x <= 9; x++ {
		for z := 7; z <= 9; z++ {
			w.blocks[Pos{X: x, Y: 0, Z: z}] = tStone
			for y := 1; y <= 3; y++ {
				w.blocks[Pos{X: x, Y: y, Z: z}] = tWater
				cells++
			}
		}
	}
	return cells
}

func TestChunkLoadRegistersAndSchedulesBoundaryOnly(t *testing.T) {
	s, w, _ := newTestSim(t, 6, Config{})
	want := buildPool(w)
	key := ChunkKey{CX: 0, CZ: 0}

	s.OnChunkLoaded(key)

	if got := s.TrackedCellCount(); got != want {
		t.Fatalf("tracked = %d, want %d", got, want)
	}
	// Every fluid block registers as a conservative source.
	if !s.IsSourceAt(Pos{X: 7, Y: 1, Z: 7}) {
		t.Fatalf("pool cell not registered as a default source")
	}

	// The cube's centre touches only fluid and must stay unscheduled; the
	// corner touches air and must be scheduled.
	_, _, pending := s.Export()
	scheduled := map[Pos]bool{}
	for _, pe := range pending {
		scheduled[pe.Pos] = true
	}
	if scheduled[(Pos{X: 8, Y: 2, Z: 8})] {
		t.Fatalf("interior pool cell was scheduled on load")
	}
	if !scheduled[(Pos{X: 7, Y: 3, Z: 7})] {
		t.Fatalf("boundary pool cell was not scheduled on load")
	}

	// A second load of the same chunk is a no-op.
	before := s.PendingCount()
	s.OnChunkLoaded(key)
	if s.TrackedCellCount() != want || s.PendingCount() != before {
		t.Fatalf("chunk re-scan was not idempotent")
	}
}

func TestChunkUnloadPurgesCellsAndSchedule(t *testing.T) {
	s, w, _ := newTestSim(t, 6, Config{})
	buildPool(w)
	key := ChunkKey{CX: 0, CZ: 0}
	s.OnChunkLoaded(key)
	tickN(s, 20)

	s.OnChunkUnloaded(key)

	if got := s.TrackedCellCount(); got != 0 {
		t.Fatalf("tracked = %d after unload, want 0", got)
	}
	if got := s.PendingCount(); got != 0 {
		t.Fatalf("pending = %d after unload, want 0", got)
	}

	// Ticking past an unload must not fault.
	tickN(s, 50)
	checkInvariants(t, s)
}

func TestChunkUnloadKeepsOtherChunks(t *testing.T) {
	s, w, _ := newTestSim(t, 6, Config{})
	buildPool(w) // chunk (0,0)
	w.blocks[Pos{X: 20, Y: 2, Z: 4}] = tWater // chunk (1,0)
	s.OnChunkLoaded(ChunkKey{CX: 0, CZ: 0})
	s.OnChunkLoaded(ChunkKey{CX: 1, CZ: 0})

	s.OnChunkUnloaded(ChunkKey{CX: 0, CZ: 0})

	if _, ok := s.CellAt(Pos{X: 20, Y: 2, Z: 4}); !ok {
		t.Fatalf("neighbouring chunk's cell was purged")
	}
	_, _, pending := s.Export()
	for _, pe := range pending {
		if s.chunkOf(pe.Pos) == (ChunkKey{CX: 0, CZ: 0}) {
			t.Fatalf("stale schedule entry for unloaded chunk: %v", pe.Pos)
		}
	}
}

// Unload then reload re-derives the cell set purely from the block array,
// with no scheduled entries pointing outside the reloaded region.
func TestChunkUnloadLoadRoundTrip(t *testing.T) {
	s, w, _ := newTestSim(t, 6, Config{})
	want := buildPool(w)
	key := ChunkKey{CX: 0, CZ: 0}
	s.OnChunkLoaded(key)
	tickN(s, 200)

	s.OnChunkUnloaded(key)
	tickN(s, 10)
	s.OnChunkLoaded(key)

	if got := s.TrackedCellCount(); got < want {
		t.Fatalf("tracked = %d after reload, want at least %d", got, want)
	}
	_, cells, pending := s.Export()
	for _, c := range cells {
		if w.blocks[c.Pos] != tWater {
			t.Fatalf("tracked cell %v has no water block", c.Pos)
		}
	}
	for _, pe := range pending {
		if s.chunkOf(pe.Pos) != key {
			t.Fatalf("schedule entry outside reloaded chunk: %v", pe.Pos)
		}
	}
	tickN(s, 300)
	checkInvariants(t, s)
}

func TestRestoreRebuildsScheduleAndCells(t *testing.T) {
	s, w, _ := newTestSim(t, 12, Config{})
	w.SetBlockAt(Pos{X: 0, Y: 10, Z: 0}, tWater)
	tickN(s, 37)

	tick, cells, pending := s.Export()

	s2, w2, _ := newTestSim(t, 12, Config{})
	for p, k := range w.blocks {
		w2.blocks[p] = k
	}
	s2.Restore(tick, cells, pending)

	if s2.LogicalTick() != tick {
		t.Fatalf("restored tick = %d, want %d", s2.LogicalTick(), tick)
	}
	if s2.TrackedCellCount() != len(cells) || s2.PendingCount() != len(pending) {
		t.Fatalf("restored state: tracked=%d pending=%d, want %d/%d",
			s2.TrackedCellCount(), s2.PendingCount(), len(cells), len(pending))
	}

	// Both simulations settle to the same cell set.
	tickN(s, 1000)
	tickN(s2, 1000)
	_, a, _ := s.Export()
	_, b, _ := s2.Export()
	if len(a) != len(b) {
		t.Fatalf("diverged after restore: %d vs %d cells", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}
