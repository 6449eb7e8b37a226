package store

import (
	"fmt"

	snapv1 "hydrovox/internal/persistence/snapshot"
)

// ExportLoadedChunks converts loaded chunk data into snapshot chunks.
func ExportLoadedChunks(chunks map[ChunkKey]*Chunk, keys []ChunkKey) []snapv1.ChunkV1 {
	out := make([]snapv1.ChunkV1, 0, len(keys))
	for _, k := range keys {
		ch := chunks[k]
		if ch == nil {
			continue
		}
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		out = append(out, snapv1.ChunkV1{
			CX:     k.CX,
			CZ:     k.CZ,
			Height: ch.Height,
			Blocks: blocks,
		})
	}
	return out
}

// ImportChunks rebuilds a chunk store from snapshot chunks.
func ImportChunks(gen WorldGen, chunks []snapv1.ChunkV1) (*ChunkStore, error) {
	store := NewChunkStore(gen)
	for _, ch := range chunks {
		if ch.Height != store.Gen.Height {
			return nil, fmt.Errorf("snapshot chunk height mismatch: got %d want %d", ch.Height, store.Gen.Height)
		}
		if len(ch.Blocks) != 16*16*ch.Height {
			return nil, fmt.Errorf("snapshot chunk blocks length mismatch: got %d want %d", len(ch.Blocks), 16*16*ch.Height)
		}
		k := ChunkKey{CX: ch.CX, CZ: ch.CZ}
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		c := &Chunk{
			CX:     ch.CX,
			CZ:     ch.CZ,
			Height: ch.Height,
			Blocks: blocks,
		}
		_ = c.Digest()
		store.Chunks[k] = c
	}
	return store, nil
}
