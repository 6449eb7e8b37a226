// Package archive manages the snapshot directory over time: old periodic
// snapshots are pruned so disk use stays bounded while the most recent
// resume points survive.
package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PruneSnapshots removes the oldest `<tick>.snap.zst` files in dir,
// keeping the `keep` highest ticks. Files that do not parse as snapshot
// names are left alone. Returns the paths that were removed.
func PruneSnapshots(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type snapFile struct {
		tick uint64
		name string
	}
	var snaps []snapFile
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, snapFile{tick: tick, name: name})
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].tick < snaps[j].tick })

	var removed []string
	for _, s := range snaps[:len(snaps)-keep] {
		path := filepath.Join(dir, s.name)
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
