package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed      int64 `json:"seed"`
	TickRate  int   `json:"tick_rate_hz"`
	Height    int   `json:"height"`
	ChunkSize int   `json:"chunk_size"`
	BoundaryR int   `json:"boundary_r"`

	// Worldgen tuning (captured for deterministic regeneration of
	// chunks that were never loaded).
	FloorDepth        int `json:"floor_depth,omitempty"`
	SurfaceVariation  int `json:"surface_variation,omitempty"`
	BasinGridSize     int `json:"basin_grid_size,omitempty"`
	BasinRadius       int `json:"basin_radius,omitempty"`
	BasinProbPermille int `json:"basin_prob_permille,omitempty"`
	PlantPermille     int `json:"plant_permille,omitempty"`

	// Fluid tuning (captured for deterministic resume).
	MaxTicksPerFrame int `json:"max_ticks_per_frame,omitempty"`
	DrainBudget      int `json:"drain_budget,omitempty"`
	FlowDelayTicks   int `json:"flow_delay_ticks,omitempty"`
	NotifyDelayTicks int `json:"notify_delay_ticks,omitempty"`

	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`

	PaletteDigest string `json:"palette_digest,omitempty"`
	DefsDigest    string `json:"defs_digest,omitempty"`

	Chunks       []ChunkV1        `json:"chunks"`
	FluidCells   []FluidCellV1    `json:"fluid_cells"`
	FluidPending []FluidPendingV1 `json:"fluid_pending"`
	Drops        []DropV1         `json:"drops,omitempty"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Height int      `json:"height"`
	Blocks []uint16 `json:"blocks"`
}

type FluidCellV1 struct {
	X, Y, Z int
	Level   uint8
	Falling bool
}

type FluidPendingV1 struct {
	X, Y, Z int
	DueTick uint64
}

type DropV1 struct {
	X, Y, Z int
	Item    string
	Tick    uint64
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// FindLatest returns the snapshot file with the highest tick in
// dir, or "" when none exist. Snapshot files are named <tick>.snap.zst.
func FindLatest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
