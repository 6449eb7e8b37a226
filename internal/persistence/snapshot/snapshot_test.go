package snapshot

import (
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
)

func TestWriteAndReadSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "120.snap.zst")

	snap := SnapshotV1{
		Header:    Header{Version: 1, WorldID: "test", Tick: 120},
		Seed:      42,
		TickRate:  20,
		Height:    64,
		ChunkSize: 16,
		Chunks: []ChunkV1{{
			CX: 0, CZ: -1, Height: 2,
			Blocks: []uint16{1, 2, 3, 4},
		}},
		FluidCells: []FluidCellV1{
			{X: 1, Y: 5, Z: -3, Level: 0},
			{X: 1, Y: 4, Z: -3, Level: 1, Falling: true},
		},
		FluidPending: []FluidPendingV1{{X: 1, Y: 4, Z: -3, DueTick: 125}},
		Drops:        []DropV1{{X: 2, Y: 5, Z: 0, Item: "REED", Tick: 90}},
	}
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
}

func TestFindLatestPicksHighestTick(t *testing.T) {
	dir := t.TempDir()
	for _, tick := range []uint64{60, 6000, 600} {
		snap := SnapshotV1{Header: Header{Version: 1, Tick: tick}}
		path := filepath.Join(dir, strconv.FormatUint(tick, 10)+".snap.zst")
		if err := WriteSnapshot(path, snap); err != nil {
			t.Fatalf("write %d: %v", tick, err)
		}
	}
	got := FindLatest(dir)
	if filepath.Base(got) != "6000.snap.zst" {
		t.Fatalf("FindLatest = %q, want 6000.snap.zst", got)
	}
}

func TestFindLatestEmptyDir(t *testing.T) {
	if got := FindLatest(t.TempDir()); got != "" {
		t.Fatalf("FindLatest on empty dir = %q, want empty", got)
	}
	if got := FindLatest("/nonexistent-hydrovox-test"); got != "" {
		t.Fatalf("FindLatest on missing dir = %q, want empty", got)
	}
}
