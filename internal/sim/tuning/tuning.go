// Package tuning holds the operator-editable knobs, loaded from
// tuning.yaml. Everything here has a sane default so the file may be
// partial or absent in tests.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`
	Height     int `yaml:"world_height"`
	ChunkSize  int `yaml:"chunk_size"`

	Fluid FluidTuning `yaml:"fluid"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

type FluidTuning struct {
	MaxTicksPerFrame int `yaml:"max_ticks_per_frame"`
	DrainBudget      int `yaml:"drain_budget"`
	FlowDelayTicks   int `yaml:"flow_delay_ticks"`
	NotifyDelayTicks int `yaml:"notify_delay_ticks"`
}

// Defaults returns the tuning used when no file is given.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         20,
		Height:             64,
		ChunkSize:          16,
		SnapshotEveryTicks: 6000,
		Fluid: FluidTuning{
			MaxTicksPerFrame: 8,
			DrainBudget:      512,
			FlowDelayTicks:   5,
			NotifyDelayTicks: 5,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickRateHz <= 0 || t.Height <= 0 || t.ChunkSize <= 0 {
		return t, fmt.Errorf("tuning.yaml: tick_rate_hz, world_height and chunk_size must be positive")
	}
	return t, nil
}
