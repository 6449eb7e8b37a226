package world

import (
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/fluid"
)

// worldBlocks adapts the chunk store to the fluid simulation's block view.
// Writes funnel through applyBlock so the simulation's own edits raise the
// same change notification as everyone else's; the simulation suppresses
// the echo itself.
type worldBlocks struct {
	w *World
}

func (b *worldBlocks) BlockAt(p fluid.Pos) fluid.Kind {
	return fluid.Kind(b.w.chunks.GetBlock(p.X, p.Y, p.Z))
}

func (b *worldBlocks) SetBlockAt(p fluid.Pos, k fluid.Kind) {
	b.w.applyBlock(p, k)
}

func (b *worldBlocks) Height() int {
	return b.w.cfg.Height
}

// worldPolicy decides what the fluid may do to concrete block kinds,
// driven entirely by blocks.json flags.
type worldPolicy struct {
	w *World
}

func (pl *worldPolicy) def(k fluid.Kind) (catalogs.BlockDef, bool) {
	cat := &pl.w.cats.Blocks
	if int(k) >= len(cat.Palette) {
		return catalogs.BlockDef{}, false
	}
	d, ok := cat.Defs[cat.Palette[k]]
	return d, ok
}

func (pl *worldPolicy) CanDisplace(k fluid.Kind) bool {
	d, ok := pl.def(k)
	if !ok {
		return false
	}
	return !d.Solid
}

func (pl *worldPolicy) IsFragile(k fluid.Kind) bool {
	d, ok := pl.def(k)
	return ok && d.Fragile
}

func (pl *worldPolicy) DropFragile(p fluid.Pos, k fluid.Kind) {
	d, ok := pl.def(k)
	if !ok || d.DropsItem == "" {
		return
	}
	pl.w.spawnDrop(pl.w.tick.Load(), p, d.DropsItem)
}

// SupportsSource permits source regrowth only over solid ground. The
// bottom of the world counts as ground.
func (pl *worldPolicy) SupportsSource(p fluid.Pos) bool {
	if p.Y <= 0 {
		return true
	}
	below := fluid.Kind(pl.w.chunks.GetBlock(p.X, p.Y-1, p.Z))
	d, ok := pl.def(below)
	return ok && d.Solid
}
