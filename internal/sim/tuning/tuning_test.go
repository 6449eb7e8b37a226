package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := `
tick_rate_hz: 10
world_height: 32
fluid:
  drain_budget: 64
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 10 || got.Height != 32 || got.Fluid.DrainBudget != 64 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	// Untouched knobs keep their defaults.
	def := Defaults()
	if got.ChunkSize != def.ChunkSize || got.Fluid.FlowDelayTicks != def.Fluid.FlowDelayTicks {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_rate_hz: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for non-positive tick rate")
	}

	if err := os.WriteFile(path, []byte("world_height: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestLoadMissingFileReturnsDefaultsAndError(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if got.TickRateHz != Defaults().TickRateHz {
		t.Fatalf("missing file should still return defaults, got %+v", got)
	}
}
