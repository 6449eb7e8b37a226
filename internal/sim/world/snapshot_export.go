package world

import (
	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/world/terrain/store"
)

// ExportSnapshot captures the full authoritative state: loaded chunks,
// tracked water cells, the pending schedule and live drops, plus every
// config knob needed to resume deterministically. Loop-thread only.
func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	tick, cells, pending := w.sim.Export()
	_ = tick // identical to nowTick at a step boundary

	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: 1,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		Seed:      w.cfg.Seed,
		TickRate:  w.cfg.TickRateHz,
		Height:    w.cfg.Height,
		ChunkSize: w.cfg.ChunkSize,
		BoundaryR: w.cfg.BoundaryR,

		FloorDepth:        w.cfg.FloorDepth,
		SurfaceVariation:  w.cfg.SurfaceVariation,
		BasinGridSize:     w.cfg.BasinGridSize,
		BasinRadius:       w.cfg.BasinRadius,
		BasinProbPermille: w.cfg.BasinProbPermille,
		PlantPermille:     w.cfg.PlantPermille,

		MaxTicksPerFrame: w.cfg.MaxTicksPerFrame,
		DrainBudget:      w.cfg.DrainBudget,
		FlowDelayTicks:   w.cfg.FlowDelayTicks,
		NotifyDelayTicks: w.cfg.NotifyDelayTicks,

		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,

		PaletteDigest: w.cats.Blocks.PaletteDigest,
		DefsDigest:    w.cats.Blocks.DefsDigest,

		Chunks: store.ExportLoadedChunks(w.chunks.Chunks, w.chunks.LoadedChunkKeys()),
	}

	for _, c := range cells {
		snap.FluidCells = append(snap.FluidCells, snapshot.FluidCellV1{
			X: c.Pos.X, Y: c.Pos.Y, Z: c.Pos.Z,
			Level:   c.Level,
			Falling: c.Falling,
		})
	}
	for _, p := range pending {
		snap.FluidPending = append(snap.FluidPending, snapshot.FluidPendingV1{
			X: p.Pos.X, Y: p.Pos.Y, Z: p.Pos.Z,
			DueTick: p.DueTick,
		})
	}
	for _, d := range w.DropList() {
		snap.Drops = append(snap.Drops, snapshot.DropV1{
			X: d.Pos.X, Y: d.Pos.Y, Z: d.Pos.Z,
			Item: d.Item,
			Tick: d.CreatedTick,
		})
	}
	return snap
}
