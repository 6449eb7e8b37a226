package world

import (
	"fmt"
	"log"

	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/fluid"
	"hydrovox/internal/sim/world/terrain/store"
)

// NewFromSnapshot rebuilds a world from a snapshot. The block palette in
// use must match the one the snapshot was taken with.
func NewFromSnapshot(id string, cats *catalogs.Catalogs, logger *log.Logger, snap snapshot.SnapshotV1) (*World, error) {
	if snap.Header.Version != 1 {
		return nil, fmt.Errorf("snapshot version %d not supported", snap.Header.Version)
	}
	if snap.PaletteDigest != "" && snap.PaletteDigest != cats.Blocks.PaletteDigest {
		return nil, fmt.Errorf("snapshot palette digest %s does not match loaded blocks.json %s",
			snap.PaletteDigest, cats.Blocks.PaletteDigest)
	}

	cfg := WorldConfig{
		ID:                 id,
		TickRateHz:         snap.TickRate,
		Height:             snap.Height,
		ChunkSize:          snap.ChunkSize,
		Seed:               snap.Seed,
		BoundaryR:          snap.BoundaryR,
		FloorDepth:         snap.FloorDepth,
		SurfaceVariation:   snap.SurfaceVariation,
		BasinGridSize:      snap.BasinGridSize,
		BasinRadius:        snap.BasinRadius,
		BasinProbPermille:  snap.BasinProbPermille,
		PlantPermille:      snap.PlantPermille,
		MaxTicksPerFrame:   snap.MaxTicksPerFrame,
		DrainBudget:        snap.DrainBudget,
		FlowDelayTicks:     snap.FlowDelayTicks,
		NotifyDelayTicks:   snap.NotifyDelayTicks,
		SnapshotEveryTicks: snap.SnapshotEveryTicks,
	}

	w, err := New(cfg, cats, logger)
	if err != nil {
		return nil, err
	}

	gen, err := w.worldGen()
	if err != nil {
		return nil, err
	}
	chunks, err := store.ImportChunks(gen, snap.Chunks)
	if err != nil {
		return nil, err
	}
	w.chunks = chunks

	cells := make([]fluid.CellState, 0, len(snap.FluidCells))
	for _, c := range snap.FluidCells {
		cells = append(cells, fluid.CellState{
			Pos:     fluid.Pos{X: c.X, Y: c.Y, Z: c.Z},
			Level:   c.Level,
			Falling: c.Falling,
		})
	}
	pending := make([]fluid.PendingState, 0, len(snap.FluidPending))
	for _, p := range snap.FluidPending {
		pending = append(pending, fluid.PendingState{
			Pos:     fluid.Pos{X: p.X, Y: p.Y, Z: p.Z},
			DueTick: p.DueTick,
		})
	}
	w.sim.Restore(snap.Header.Tick, cells, pending)
	w.tick.Store(snap.Header.Tick)

	for _, d := range snap.Drops {
		dropID := w.spawnDrop(d.Tick, fluid.Pos{X: d.X, Y: d.Y, Z: d.Z}, d.Item)
		if e := w.drops[dropID]; e != nil {
			e.CreatedTick = d.Tick
			e.ExpiresTick = d.Tick + uint64(w.cfg.DropTTLTicks)
		}
	}
	return w, nil
}
