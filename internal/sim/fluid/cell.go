package fluid

import "fmt"

// Level bounds for stored cells. LevelSource is the strongest fluid (a
// spring that never decays); LevelMax is the thinnest flowing fluid.
// LevelEmpty is a sentinel meaning "no fluid should exist here" and is
// only ever compared against, never stored.
const (
	LevelSource = 0
	LevelMax    = 7
	LevelEmpty  = 8
)

// Cell is the immutable state of one fluid block: how strong it is and
// whether it is currently cascading vertically. The zero value is a source.
type Cell struct {
	Level   uint8
	Falling bool
}

// Source returns a source cell: level 0, not falling.
func Source() Cell {
	return Cell{}
}

// Flowing returns a non-falling flowing cell at the given level.
// Levels outside 1..7 are a caller bug.
func Flowing(level int) (Cell, error) {
	if level < LevelSource+1 || level > LevelMax {
		return Cell{}, fmt.Errorf("fluid: flowing level %d out of range [1,%d]", level, LevelMax)
	}
	return Cell{Level: uint8(level)}, nil
}

// IsSource reports whether the cell is a source. Sources never decay and
// are never overwritten by ordinary flow.
func (c Cell) IsSource() bool {
	return c.Level == LevelSource && !c.Falling
}

// AsFalling returns the cell with the falling flag set.
func (c Cell) AsFalling() Cell {
	c.Falling = true
	return c
}

// Settled returns the cell with the falling flag cleared.
func (c Cell) Settled() Cell {
	c.Falling = false
	return c
}

// StrongerThan reports whether c may overwrite other at the same position.
// A source beats everything; among non-sources a lower level wins; on equal
// level a still cell beats a falling one.
func (c Cell) StrongerThan(other Cell) bool {
	if other.IsSource() {
		return false
	}
	if c.IsSource() {
		return true
	}
	if c.Level != other.Level {
		return c.Level < other.Level
	}
	return !c.Falling && other.Falling
}
