package world

import (
	"fmt"
	"log"
	"sync/atomic"

	"hydrovox/internal/persistence/snapshot"
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/fluid"
	"hydrovox/internal/sim/world/terrain/store"
)

// ActionEnvelope is one externally requested mutation, applied at the next
// tick boundary in arrival order.
type ActionEnvelope struct {
	SessionID string
	Pos       fluid.Pos
	Block     string
}

// World is a single-threaded authoritative simulation. All state must be
// accessed only from the world loop goroutine; everything else talks to it
// through channels.
type World struct {
	cfg  WorldConfig
	cats *catalogs.Catalogs

	airKind   fluid.Kind
	fluidKind fluid.Kind

	tick atomic.Uint64

	chunks *store.ChunkStore
	sim    *fluid.Simulator

	drops       map[string]*Drop
	dropsAt     map[fluid.Pos][]string
	nextDropNum atomic.Uint64

	observers       map[string]*observerClient
	nextObserverNum atomic.Uint64

	inbox         chan ActionEnvelope
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	adminChunk    chan adminChunkReq
	adminSnap     chan adminSnapshotReq
	stop          chan struct{}

	// Optional tick logger (may be nil). Implemented in internal/persistence/log.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing is off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	metrics atomic.Value // WorldMetrics

	log *log.Logger
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is one line of the per-tick JSONL log.
type TickLogEntry struct {
	Tick      uint64   `json:"tick"`
	Steps     int      `json:"steps"`
	Processed int      `json:"processed"`
	Discarded int      `json:"discarded"`
	Tracked   int      `json:"tracked"`
	Pending   int      `json:"pending"`
	Actions   []Action `json:"actions,omitempty"`
}

// Action is an externally applied block edit, recorded for replay.
type Action struct {
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
}

func New(cfg WorldConfig, cats *catalogs.Catalogs, logger *log.Logger) (*World, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.Default()
	}

	fluidID, err := cats.Blocks.FluidID()
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:           cfg,
		cats:          cats,
		airKind:       0, // AIR is pinned to palette index 0
		fluidKind:     fluid.Kind(fluidID),
		drops:         map[string]*Drop{},
		dropsAt:       map[fluid.Pos][]string{},
		observers:     map[string]*observerClient{},
		inbox:         make(chan ActionEnvelope, 256),
		observerJoin:  make(chan ObserverJoinRequest, 8),
		observerLeave: make(chan string, 8),
		adminChunk:    make(chan adminChunkReq, 8),
		adminSnap:     make(chan adminSnapshotReq, 2),
		stop:          make(chan struct{}),
		log:           logger,
	}

	gen, err := w.worldGen()
	if err != nil {
		return nil, err
	}
	w.chunks = store.NewChunkStore(gen)

	w.sim = fluid.New(&worldBlocks{w: w}, &worldPolicy{w: w}, fluid.Config{
		TickRateHz:       cfg.TickRateHz,
		MaxTicksPerFrame: cfg.MaxTicksPerFrame,
		DrainBudget:      cfg.DrainBudget,
		FlowDelayTicks:   cfg.FlowDelayTicks,
		NotifyDelayTicks: cfg.NotifyDelayTicks,
		ChunkSize:        cfg.ChunkSize,
		Fluid:            w.fluidKind,
		Air:              w.airKind,
	})
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

// worldGen maps named palette entries onto worldgen block ids. The named
// blocks must exist in blocks.json; the fluid id comes from the fluid flag.
func (w *World) worldGen() (store.WorldGen, error) {
	fluidID, _ := w.cats.Blocks.FluidID()
	gen := store.WorldGen{
		Seed:              w.cfg.Seed,
		Height:            w.cfg.Height,
		BoundaryR:         w.cfg.BoundaryR,
		FloorDepth:        w.cfg.FloorDepth,
		SurfaceVariation:  w.cfg.SurfaceVariation,
		BasinGridSize:     w.cfg.BasinGridSize,
		BasinRadius:       w.cfg.BasinRadius,
		BasinProbPermille: w.cfg.BasinProbPermille,
		PlantPermille:     w.cfg.PlantPermille,
		Water:             fluidID,
	}
	for _, want := range []struct {
		name string
		dst  *uint16
	}{
		{"AIR", &gen.Air},
		{"STONE", &gen.Stone},
		{"DIRT", &gen.Dirt},
		{"GRASS", &gen.Grass},
		{"SAND", &gen.Sand},
		{"REED", &gen.Reed},
	} {
		id, ok := w.cats.Blocks.Index[want.name]
		if !ok {
			return store.WorldGen{}, fmt.Errorf("blocks.json: worldgen block %q missing", want.name)
		}
		*want.dst = id
	}
	return gen, nil
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

// Config returns a copy of the effective configuration.
func (w *World) Config() WorldConfig { return w.cfg }

// Tick returns the last completed logical tick. Safe from any goroutine.
func (w *World) Tick() uint64 { return w.tick.Load() }

func (w *World) Inbox() chan<- ActionEnvelope             { return w.inbox }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// Fluid exposes the simulation for loop-thread callers (tests, the
// headless runner). Never touch it while Run is active.
func (w *World) Fluid() *fluid.Simulator { return w.sim }

// Chunks exposes the block store under the same single-thread rule.
func (w *World) Chunks() *store.ChunkStore { return w.chunks }
