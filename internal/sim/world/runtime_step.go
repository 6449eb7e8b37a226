package world

import (
	"time"

	"hydrovox/internal/sim/fluid"
)

func (w *World) step(dt float64, actions []ActionEnvelope) {
	stepStart := time.Now()

	// Apply external edits in arrival order before advancing the water.
	var recorded []Action
	for _, env := range actions {
		if err := w.SetBlock(env.Pos, env.Block); err != nil {
			w.log.Printf("world %s: act from %s rejected: %v", w.cfg.ID, env.SessionID, err)
			continue
		}
		recorded = append(recorded, Action{
			Pos:   [3]int{env.Pos.X, env.Pos.Y, env.Pos.Z},
			Block: env.Block,
		})
	}

	stats := w.sim.Tick(dt)
	nowTick := stats.Tick
	w.tick.Store(nowTick)

	w.cleanupExpiredDrops(nowTick)
	w.stepObservers(stats)

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:      nowTick,
			Steps:     stats.Steps,
			Processed: stats.Processed,
			Discarded: stats.Discarded,
			Tracked:   stats.Tracked,
			Pending:   stats.Pending,
			Actions:   recorded,
		})
	}

	// Snapshot every N ticks, starting after tick 0. Steps can jump the
	// counter past a boundary during catch-up, so compare against the
	// previous tick rather than testing divisibility.
	if w.snapshotSink != nil && w.cfg.SnapshotEveryTicks > 0 && stats.Steps > 0 {
		every := uint64(w.cfg.SnapshotEveryTicks)
		prev := nowTick - uint64(stats.Steps)
		if nowTick/every > prev/every {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	w.metrics.Store(WorldMetrics{
		Tick:         nowTick,
		Observers:    len(w.observers),
		LoadedChunks: len(w.chunks.Chunks),
		Tracked:      stats.Tracked,
		Pending:      stats.Pending,
		Drops:        len(w.drops),
		QueueDepths: QueueDepths{
			Inbox:        len(w.inbox),
			ObserverJoin: len(w.observerJoin),
		},
		StepMS: stepMS,
	})
}

// QuiescentAfter runs logical ticks until the schedule drains or the
// tick budget runs out, reporting whether the water settled. Loop-thread
// only; used by the headless runner and tests.
func (w *World) QuiescentAfter(maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		if w.sim.PendingCount() == 0 {
			return true
		}
		w.StepOnce(nil)
	}
	return w.sim.PendingCount() == 0
}

// CellAt forwards to the fluid simulation, loop-thread only.
func (w *World) CellAt(p fluid.Pos) (fluid.Cell, bool) { return w.sim.CellAt(p) }
