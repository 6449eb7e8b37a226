package store

import genpkg "hydrovox/internal/sim/world/terrain/gen"

// GenerateChunk fills a chunk column by column. Terrain is a stone
// floor with a thin dirt/grass cap whose height wobbles per column;
// basin clusters are carved down to the floor and filled with water
// sources, with sand on the rim. Generation depends only on the seed
// and world coordinates, so regenerating a chunk is deterministic.
func (s *ChunkStore) GenerateChunk(ch *Chunk) {
	g := s.Gen
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			wx := ch.CX*16 + x
			wz := ch.CZ*16 + z

			variation := 0
			if g.SurfaceVariation > 0 {
				variation = int(genpkg.Hash2(g.Seed, wx, wz) % uint64(g.SurfaceVariation+1))
			}
			// The lowest possible surface is one layer above the
			// floor, which keeps basin water level with (never above)
			// the surrounding terrain.
			surfaceH := g.FloorDepth + 1 + variation
			if surfaceH >= g.Height {
				surfaceH = g.Height - 1
			}

			inBasin := genpkg.InCluster(g.Seed+11, wx, wz, g.BasinGridSize, g.BasinRadius, uint64(genpkg.ClampPermille(g.BasinProbPermille)))
			onRim := !inBasin && genpkg.InCluster(g.Seed+11, wx, wz, g.BasinGridSize, g.BasinRadius+1, uint64(genpkg.ClampPermille(g.BasinProbPermille)))

			for y := 0; y < g.Height; y++ {
				b := g.Air
				switch {
				case y < g.FloorDepth:
					b = g.Stone
				case inBasin:
					// Basins are carved to the floor and hold one
					// layer of source water.
					if y == g.FloorDepth {
						b = g.Water
					}
				case y < surfaceH-1:
					b = g.Dirt
				case y < surfaceH:
					if onRim {
						b = g.Sand
					} else {
						b = g.Grass
					}
				case y == surfaceH && !onRim:
					if genpkg.Hash3(g.Seed+23, wx, y, wz)%1000 < uint64(genpkg.ClampPermille(g.PlantPermille)) {
						b = g.Reed
					}
				}
				ch.Blocks[ch.index(x, y, z)] = b
			}
		}
	}
}
