// Package catalogs loads the content definitions the simulation runs on:
// the block palette with its fluid/solid/fragile flags. Palettes are
// digested so clients can detect drift.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID        string `json:"id"`
	Solid     bool   `json:"solid"`
	Fluid     bool   `json:"fluid,omitempty"`
	Fragile   bool   `json:"fragile,omitempty"`
	DropsItem string `json:"drops_item,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if d.Fluid && d.Solid {
			return fmt.Errorf("blocks.json: %s is both fluid and solid", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// AIR is required and pinned to palette id 0 so fresh chunk memory is air.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func filterOut(ids []string, drop string) []string {
	kept := ids[:0]
	for _, id := range ids {
		if id != drop {
			kept = append(kept, id)
		}
	}
	return kept
}

// FluidID returns the palette id of the single fluid block kind.
func (c *BlockCatalog) FluidID() (uint16, error) {
	for id, def := range c.Defs {
		if def.Fluid {
			return c.Index[id], nil
		}
	}
	return 0, fmt.Errorf("blocks.json: no fluid block defined")
}
