package s3mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"worlds/w1/snapshots/6000.snap.zst", "worlds/w1/snapshots/6000.snap.zst"},
		{"/leading/slash", "leading/slash"},
		{"back\\slash\\path", "back/slash/path"},
		{"a/../../escape", ""},
		{"  ", ""},
		{"a//b", "a/b"},
	}
	for _, c := range cases {
		if got := normalizeKey(c.in); got != c.want {
			t.Fatalf("normalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestObjectKeyRelativeToDataDir(t *testing.T) {
	dataDir := t.TempDir()
	snapDir := filepath.Join(dataDir, "worlds", "w1", "snapshots")
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	local := filepath.Join(snapDir, "6000.snap.zst")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := &Mirror{dataDir: dataDir, prefix: "hydrovox"}
	key, err := m.objectKey(local)
	if err != nil {
		t.Fatalf("objectKey: %v", err)
	}
	if key != "hydrovox/worlds/w1/snapshots/6000.snap.zst" {
		t.Fatalf("key = %q", key)
	}

	if _, err := m.objectKey(filepath.Join(dataDir, "..", "outside")); err == nil {
		t.Fatalf("expected error for path outside data dir")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "bucket", "ak", "sk"); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
	c, err := NewClient("accountid.r2.cloudflarestorage.com", "snaps", "ak", "sk")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.endpoint != "https://accountid.r2.cloudflarestorage.com" {
		t.Fatalf("endpoint = %q", c.endpoint)
	}
}
