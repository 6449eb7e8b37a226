package world

import "hydrovox/internal/sim/tuning"

type WorldConfig struct {
	ID         string
	TickRateHz int
	Height     int
	ChunkSize  int
	Seed       int64
	BoundaryR  int

	// Worldgen tuning.
	FloorDepth        int
	SurfaceVariation  int
	BasinGridSize     int
	BasinRadius       int
	BasinProbPermille int
	PlantPermille     int

	// Fluid tuning.
	MaxTicksPerFrame int
	DrainBudget      int
	FlowDelayTicks   int
	NotifyDelayTicks int

	// Operational parameters. Included in snapshots for deterministic resume.
	SnapshotEveryTicks int

	// Dropped items from flooded fragile blocks expire after this many ticks.
	DropTTLTicks int
}

func (c *WorldConfig) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 16
	}
	if c.BoundaryR <= 0 {
		c.BoundaryR = 4000
	}
	if c.FloorDepth <= 0 {
		c.FloorDepth = 4
	}
	if c.SurfaceVariation <= 0 {
		c.SurfaceVariation = 2
	}
	if c.BasinGridSize <= 0 {
		c.BasinGridSize = 96
	}
	if c.BasinRadius <= 0 {
		c.BasinRadius = 4
	}
	if c.BasinProbPermille <= 0 {
		c.BasinProbPermille = 350
	}
	if c.PlantPermille <= 0 {
		c.PlantPermille = 25
	}
	if c.MaxTicksPerFrame <= 0 {
		c.MaxTicksPerFrame = 8
	}
	if c.DrainBudget <= 0 {
		c.DrainBudget = 512
	}
	if c.FlowDelayTicks <= 0 {
		c.FlowDelayTicks = 5
	}
	if c.NotifyDelayTicks <= 0 {
		c.NotifyDelayTicks = 5
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 6000
	}
	if c.DropTTLTicks <= 0 {
		c.DropTTLTicks = 6000
	}
}

// ConfigFromTuning maps the operator-facing tuning file onto a world config.
func ConfigFromTuning(id string, seed int64, t tuning.Tuning) WorldConfig {
	cfg := WorldConfig{
		ID:                 id,
		TickRateHz:         t.TickRateHz,
		Height:             t.Height,
		ChunkSize:          t.ChunkSize,
		Seed:               seed,
		MaxTicksPerFrame:   t.Fluid.MaxTicksPerFrame,
		DrainBudget:        t.Fluid.DrainBudget,
		FlowDelayTicks:     t.Fluid.FlowDelayTicks,
		NotifyDelayTicks:   t.Fluid.NotifyDelayTicks,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
	}
	cfg.applyDefaults()
	return cfg
}
