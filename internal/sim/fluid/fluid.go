// Package fluid implements a lazily evaluated block-grid water simulation:
// a sparse cellular automaton driven by a dedup'd discrete-event queue.
// It owns only its cell map and schedule; blocks live in the host world,
// reached through the World interface.
package fluid

// Pos is an absolute block position. Value semantics: it is used as a map
// key throughout the simulation.
type Pos struct {
	X, Y, Z int
}

// Kind is the host's block-kind id (palette index).
type Kind uint16

// World is the block store the simulation reads and writes. Horizontal
// coordinates are unbounded; the simulation itself rejects positions with
// Y outside [0, Height).
type World interface {
	BlockAt(p Pos) Kind
	SetBlockAt(p Pos, k Kind)
	Height() int
}

// Policy decides what fluid may do to concrete block kinds. It is the only
// piece of the simulation that knows block kinds beyond air and the fluid
// itself.
type Policy interface {
	// CanDisplace reports whether fluid may occupy a block of this kind.
	CanDisplace(k Kind) bool
	// IsFragile reports whether the kind must be destroyed with a drop
	// rather than silently overwritten.
	IsFragile(k Kind) bool
	// DropFragile spawns the drop for a fragile block about to be flooded.
	DropFragile(p Pos, k Kind)
	// SupportsSource reports whether the position can sustain a new
	// permanent source under the regrowth rule.
	SupportsSource(p Pos) bool
}

// Config tunes the simulation. Zero fields take the defaults below.
type Config struct {
	TickRateHz       int // logical ticks per second
	MaxTicksPerFrame int // catch-up cap after a stall
	DrainBudget      int // positions evaluated per logical tick
	FlowDelayTicks   int // re-evaluation delay after a successful fill
	NotifyDelayTicks int // neighbour wake-up delay
	ChunkSize        int // horizontal chunk edge, for bulk purge

	Fluid Kind // block kind the simulation manages
	Air   Kind // block kind written when fluid decays away
}

const (
	defaultTickRateHz       = 20
	defaultMaxTicksPerFrame = 8
	defaultDrainBudget      = 512
	defaultFlowDelayTicks   = 5
	defaultNotifyDelayTicks = 5
	defaultChunkSize        = 16
)

func (c Config) withDefaults() Config {
	if c.TickRateHz <= 0 {
		c.TickRateHz = defaultTickRateHz
	}
	if c.MaxTicksPerFrame <= 0 {
		c.MaxTicksPerFrame = defaultMaxTicksPerFrame
	}
	if c.DrainBudget <= 0 {
		c.DrainBudget = defaultDrainBudget
	}
	if c.FlowDelayTicks <= 0 {
		c.FlowDelayTicks = defaultFlowDelayTicks
	}
	if c.NotifyDelayTicks <= 0 {
		c.NotifyDelayTicks = defaultNotifyDelayTicks
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	return c
}

// Stats is a per-frame work summary for diagnostics and tick logging.
type Stats struct {
	Tick      uint64 // logical tick after the frame
	Steps     int    // logical ticks advanced this frame
	Processed int    // engine invocations this frame
	Discarded int    // stale queue entries dropped this frame
	Tracked   int    // cells currently tracked
	Pending   int    // positions currently scheduled
}

// Simulator is a single world's fluid simulation. Not safe for concurrent
// use: every method must be called from the host's world-update thread.
type Simulator struct {
	cfg    Config
	world  World
	policy Policy

	cells map[Pos]Cell

	sched   schedule
	acc     float64 // frame-time accumulator, seconds
	tickLen float64

	// writing counts in-flight block writes issued by the simulation
	// itself, so OnBlockChanged can ignore them.
	writing int

	scanned map[ChunkKey]bool

	lastStats Stats
}

// New constructs a simulation over the given world and policy.
func New(w World, p Policy, cfg Config) *Simulator {
	cfg = cfg.withDefaults()
	return &Simulator{
		cfg:     cfg,
		world:   w,
		policy:  p,
		cells:   map[Pos]Cell{},
		sched:   newSchedule(),
		tickLen: 1.0 / float64(cfg.TickRateHz),
		scanned: map[ChunkKey]bool{},
	}
}

// CellAt returns the tracked cell at p, if any.
func (s *Simulator) CellAt(p Pos) (Cell, bool) {
	c, ok := s.cells[p]
	return c, ok
}

// IsSourceAt reports whether a tracked source cell exists at p.
func (s *Simulator) IsSourceAt(p Pos) bool {
	c, ok := s.cells[p]
	return ok && c.IsSource()
}

// NormalizedLevel maps the cell at p to [0,1] for rendering: 1.0 is a full
// column (sources and falling cells), stepping down towards the thinnest
// flow. Untracked positions report 0.
func (s *Simulator) NormalizedLevel(p Pos) float64 {
	c, ok := s.cells[p]
	if !ok {
		return 0
	}
	if c.Falling {
		return 1.0
	}
	return float64(LevelMax-int(c.Level)+1) / float64(LevelEmpty)
}

// TrackedCellCount returns the number of tracked fluid cells.
func (s *Simulator) TrackedCellCount() int {
	return len(s.cells)
}

// LogicalTick returns the current logical tick counter.
func (s *Simulator) LogicalTick() uint64 {
	return s.sched.now
}

// PendingCount returns the number of positions awaiting re-evaluation.
func (s *Simulator) PendingCount() int {
	return len(s.sched.due)
}

// LastStats returns the work summary of the most recent Tick call.
func (s *Simulator) LastStats() Stats {
	return s.lastStats
}

var horizontal = [4]Pos{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}

func (p Pos) add(d Pos) Pos {
	return Pos{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

func (p Pos) above() Pos { return Pos{X: p.X, Y: p.Y + 1, Z: p.Z} }
func (p Pos) below() Pos { return Pos{X: p.X, Y: p.Y - 1, Z: p.Z} }
