package store

import (
	"testing"

	snapv1 "hydrovox/internal/persistence/snapshot"
)

func testGen() WorldGen {
	return WorldGen{
		Seed:              7,
		Height:            32,
		FloorDepth:        4,
		SurfaceVariation:  2,
		BasinGridSize:     48,
		BasinRadius:       3,
		BasinProbPermille: 300,
		PlantPermille:     30,
		Air:               0,
		Stone:             1,
		Dirt:              2,
		Grass:             3,
		Sand:              4,
		Water:             5,
		Reed:              6,
	}
}

func TestGenerateChunkDeterministic(t *testing.T) {
	a := NewChunkStore(testGen())
	b := NewChunkStore(testGen())
	ca := a.GetOrGenChunk(3, -2)
	cb := b.GetOrGenChunk(3, -2)
	if ca.Digest() != cb.Digest() {
		t.Fatalf("same seed produced different chunks")
	}

	c := NewChunkStore(WorldGen{Seed: 8, Height: 32, FloorDepth: 4, SurfaceVariation: 2, Stone: 1})
	if c.GetOrGenChunk(3, -2).Digest() == ca.Digest() {
		t.Fatalf("different seeds produced identical chunks")
	}
}

func TestGeneratedColumnsHaveStoneFloor(t *testing.T) {
	g := testGen()
	s := NewChunkStore(g)
	ch := s.GetOrGenChunk(0, 0)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			for y := 0; y < g.FloorDepth; y++ {
				if got := ch.Get(x, y, z); got != g.Stone {
					t.Fatalf("block at (%d,%d,%d) = %d, want stone", x, y, z, got)
				}
			}
		}
	}
}

func TestWaterNeverAboveNeighbouringSurface(t *testing.T) {
	g := testGen()
	s := NewChunkStore(g)
	for cz := -2; cz <= 2; cz++ {
		for cx := -2; cx <= 2; cx++ {
			ch := s.GetOrGenChunk(cx, cz)
			for z := 0; z < 16; z++ {
				for x := 0; x < 16; x++ {
					for y := 0; y < g.Height; y++ {
						if ch.Get(x, y, z) == g.Water && y != g.FloorDepth {
							t.Fatalf("water at (%d,%d,%d), want only at y=%d", cx*16+x, y, cz*16+z, g.FloorDepth)
						}
					}
				}
			}
		}
	}
}

func TestGetSetBlockAndBounds(t *testing.T) {
	g := testGen()
	g.BoundaryR = 100
	s := NewChunkStore(g)

	s.SetBlock(-7, 10, 33, g.Reed)
	if got := s.GetBlock(-7, 10, 33); got != g.Reed {
		t.Fatalf("GetBlock = %d, want reed", got)
	}

	if s.InBounds(0, -1, 0) || s.InBounds(0, g.Height, 0) {
		t.Fatalf("vertical bounds not enforced")
	}
	if s.InBounds(101, 5, 0) || s.InBounds(0, 5, -101) {
		t.Fatalf("horizontal boundary not enforced")
	}
	if got := s.GetBlock(0, -1, 0); got != g.Air {
		t.Fatalf("out-of-bounds read = %d, want air", got)
	}
}

func TestDigestTracksMutation(t *testing.T) {
	s := NewChunkStore(testGen())
	ch := s.GetOrGenChunk(0, 0)
	before := ch.Digest()
	ch.Set(5, 10, 5, s.Gen.Reed)
	if ch.Digest() == before {
		t.Fatalf("digest unchanged after mutation")
	}
	ch.Set(5, 10, 5, s.Gen.Reed) // no-op write
	after := ch.Digest()
	ch2 := &Chunk{CX: 0, CZ: 0, Height: ch.Height, Blocks: append([]uint16(nil), ch.Blocks...)}
	if ch2.Digest() != after {
		t.Fatalf("digest not a pure function of block data")
	}
}

func TestExportAndImportChunksRoundTrip(t *testing.T) {
	g := testGen()
	s := NewChunkStore(g)
	s.GetOrGenChunk(1, -2)
	s.SetBlock(16+3, 9, -32+4, g.Reed)

	keys := []ChunkKey{{CX: 1, CZ: -2}}
	exported := ExportLoadedChunks(s.Chunks, keys)
	if len(exported) != 1 {
		t.Fatalf("expected 1 exported chunk, got %d", len(exported))
	}

	imported, err := ImportChunks(g, exported)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	got := imported.Chunks[ChunkKey{CX: 1, CZ: -2}]
	if got == nil {
		t.Fatalf("missing imported chunk")
	}
	if got.Digest() != s.Chunks[ChunkKey{CX: 1, CZ: -2}].Digest() {
		t.Fatalf("imported chunk digest mismatch")
	}
}

func TestImportChunksRejectsInvalidShape(t *testing.T) {
	g := testGen()
	_, err := ImportChunks(g, []snapv1.ChunkV1{{
		CX:     0,
		CZ:     0,
		Height: g.Height,
		Blocks: make([]uint16, 16*16),
	}})
	if err == nil {
		t.Fatalf("expected error for invalid chunk shape")
	}
	_, err = ImportChunks(g, []snapv1.ChunkV1{{
		CX:     0,
		CZ:     0,
		Height: 2,
		Blocks: make([]uint16, 16*16*2),
	}})
	if err == nil {
		t.Fatalf("expected error for height mismatch")
	}
}
