package world

import (
	"fmt"
	"sort"

	"hydrovox/internal/sim/fluid"
)

// Drop is an item freed by water destroying a fragile block. It is part
// of the authoritative sim state and must be snapshot'd.
type Drop struct {
	EntityID    string
	Pos         fluid.Pos
	Item        string
	CreatedTick uint64
	ExpiresTick uint64
}

func (w *World) newDropID() string {
	n := w.nextDropNum.Add(1)
	return fmt.Sprintf("D%06d", n)
}

func (w *World) spawnDrop(nowTick uint64, pos fluid.Pos, item string) string {
	if item == "" {
		return ""
	}

	// Merge into an existing drop of the same item at the same position.
	for _, id := range w.dropsAt[pos] {
		e := w.drops[id]
		if e != nil && e.Item == item {
			exp := nowTick + uint64(w.cfg.DropTTLTicks)
			if exp > e.ExpiresTick {
				e.ExpiresTick = exp
			}
			return e.EntityID
		}
	}

	id := w.newDropID()
	e := &Drop{
		EntityID:    id,
		Pos:         pos,
		Item:        item,
		CreatedTick: nowTick,
		ExpiresTick: nowTick + uint64(w.cfg.DropTTLTicks),
	}
	w.drops[id] = e
	w.dropsAt[pos] = append(w.dropsAt[pos], id)
	return id
}

func (w *World) removeDrop(id string) {
	e := w.drops[id]
	if e == nil {
		return
	}
	delete(w.drops, id)
	ids := w.dropsAt[e.Pos]
	kept := ids[:0]
	for _, other := range ids {
		if other != id {
			kept = append(kept, other)
		}
	}
	if len(kept) == 0 {
		delete(w.dropsAt, e.Pos)
	} else {
		w.dropsAt[e.Pos] = kept
	}
}

func (w *World) cleanupExpiredDrops(nowTick uint64) {
	if len(w.drops) == 0 {
		return
	}
	var expired []string
	for id, e := range w.drops {
		if e.ExpiresTick <= nowTick {
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	for _, id := range expired {
		w.removeDrop(id)
	}
}

// DropList returns all live drops in deterministic order, loop-thread only.
func (w *World) DropList() []Drop {
	out := make([]Drop, 0, len(w.drops))
	for _, e := range w.drops {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
