package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.adminChunk:
			w.handleAdminChunk(req)
		case req := <-w.adminSnap:
			w.handleAdminSnapshot(req)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			w.step(dt, pendingActions)
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by exactly one logical tick, applying the
// given actions first. Intended for deterministic replays and tests;
// never call it while Run is active.
func (w *World) StepOnce(actions []ActionEnvelope) uint64 {
	w.step(1.0/float64(w.cfg.TickRateHz), actions)
	return w.tick.Load()
}
