package indexdb

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/tuning"
	"hydrovox/internal/sim/world"
)

const testBlocksJSON = `[
  {"id": "AIR"},
  {"id": "WATER", "fluid": true},
  {"id": "STONE", "solid": true}
]`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blocks.json"), []byte(testBlocksJSON), 0o644); err != nil {
		t.Fatalf("write blocks.json: %v", err)
	}
	return dir
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestWriteTickIndexesTicksAndActions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	for i := uint64(1); i <= 10; i++ {
		entry := world.TickLogEntry{
			Tick:      i,
			Steps:     1,
			Processed: int(i) * 3,
			Tracked:   7,
			Pending:   2,
		}
		if i == 5 {
			entry.Actions = []world.Action{
				{Pos: [3]int{10, 30, -4}, Block: "STONE"},
				{Pos: [3]int{10, 31, -4}, Block: "AIR"},
			}
		}
		if err := idx.WriteTick(entry); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := openTestDB(t, dbPath)
	if got := countRows(t, db, "ticks"); got != 10 {
		t.Fatalf("ticks rows = %d, want 10", got)
	}
	if got := countRows(t, db, "actions"); got != 2 {
		t.Fatalf("actions rows = %d, want 2", got)
	}

	var block string
	var x, y, z int
	err = db.QueryRow(`SELECT x, y, z, block FROM actions WHERE tick = 5 AND seq = 0`).Scan(&x, &y, &z, &block)
	if err != nil {
		t.Fatalf("query action: %v", err)
	}
	if x != 10 || y != 30 || z != -4 || block != "STONE" {
		t.Fatalf("action row = (%d,%d,%d,%q)", x, y, z, block)
	}
}

func TestRecordSnapshotIndexesRow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, WorldID: "w1", Tick: 6000},
		Seed:   42,
		Height: 64,
		Chunks: make([]snapshot.ChunkV1, 9),
		FluidCells: []snapshot.FluidCellV1{
			{X: 1, Y: 4, Z: 1},
		},
	}
	idx.RecordSnapshot("/data/w1/snapshots/6000.snap.zst", snap)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := openTestDB(t, dbPath)
	var path string
	var seed int64
	var chunks, cells int
	err = db.QueryRow(`SELECT path, seed, chunks, cells FROM snapshots WHERE tick = 6000`).Scan(&path, &seed, &chunks, &cells)
	if err != nil {
		t.Fatalf("query snapshot: %v", err)
	}
	if path != "/data/w1/snapshots/6000.snap.zst" || seed != 42 || chunks != 9 || cells != 1 {
		t.Fatalf("snapshot row = (%q, %d, %d, %d)", path, seed, chunks, cells)
	}
}

func TestUpsertCatalogsIsIdempotent(t *testing.T) {
	configDir := writeTestConfig(t)
	cats, err := catalogs.Load(configDir)
	if err != nil {
		t.Fatalf("catalogs.Load: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	tune := tuning.Defaults()
	if err := idx.UpsertCatalogs(configDir, cats, tune); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	if err := idx.UpsertCatalogs(configDir, cats, tune); err != nil {
		t.Fatalf("UpsertCatalogs again: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := openTestDB(t, dbPath)
	if got := countRows(t, db, "catalogs"); got != 3 {
		t.Fatalf("catalogs rows = %d, want 3", got)
	}
	var digest string
	if err := db.QueryRow(`SELECT digest FROM catalogs WHERE name = 'blocks_palette'`).Scan(&digest); err != nil {
		t.Fatalf("query palette row: %v", err)
	}
	if digest != cats.Blocks.PaletteDigest {
		t.Fatalf("palette digest = %q, want %q", digest, cats.Blocks.PaletteDigest)
	}
}

func TestWriteTickAfterCloseIsNoop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := idx.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("WriteTick after close: %v", err)
	}
	// Give a stray writer a moment if one existed; there should be none.
	time.Sleep(10 * time.Millisecond)
}
