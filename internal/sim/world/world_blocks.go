package world

import (
	"fmt"

	"hydrovox/internal/sim/fluid"
)

// applyBlock is the single write path to the block store. Every actual
// change is reported to the fluid simulation; its own writes come through
// here too and are filtered by its suppression guard.
func (w *World) applyBlock(p fluid.Pos, k fluid.Kind) {
	if !w.chunks.InBounds(p.X, p.Y, p.Z) {
		return
	}
	prev := fluid.Kind(w.chunks.GetBlock(p.X, p.Y, p.Z))
	if prev == k {
		return
	}
	w.chunks.SetBlock(p.X, p.Y, p.Z, uint16(k))
	w.sim.OnBlockChanged(p, prev, k)
}

// SetBlock places a named block, loop-thread only.
func (w *World) SetBlock(p fluid.Pos, name string) error {
	id, ok := w.cats.Blocks.Index[name]
	if !ok {
		return fmt.Errorf("unknown block %q", name)
	}
	if !w.chunks.InBounds(p.X, p.Y, p.Z) {
		return fmt.Errorf("position %v out of bounds", p)
	}
	w.applyBlock(p, fluid.Kind(id))
	return nil
}

// BlockAt returns the palette id at p, generating the chunk if needed.
func (w *World) BlockAt(p fluid.Pos) fluid.Kind {
	return fluid.Kind(w.chunks.GetBlock(p.X, p.Y, p.Z))
}

// BlockName resolves a palette id, "" when out of range.
func (w *World) BlockName(k fluid.Kind) string {
	if int(k) >= len(w.cats.Blocks.Palette) {
		return ""
	}
	return w.cats.Blocks.Palette[k]
}

// LoadChunk streams a chunk in: the store generates or recalls it, then
// the fluid simulation scans it for water that can move.
func (w *World) LoadChunk(cx, cz int) {
	w.chunks.GetOrGenChunk(cx, cz)
	w.sim.OnChunkLoaded(fluid.ChunkKey{CX: cx, CZ: cz})
}

// UnloadChunk drops a chunk and everything the fluid simulation holds
// for it.
func (w *World) UnloadChunk(cx, cz int) {
	w.sim.OnChunkUnloaded(fluid.ChunkKey{CX: cx, CZ: cz})
	w.chunks.UnloadChunk(cx, cz)
}
