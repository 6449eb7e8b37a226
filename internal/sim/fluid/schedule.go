package fluid

import "container/heap"

// schedule is a discrete-event queue over block positions: a min-heap
// ordered by due tick plus a map holding the authoritative (soonest) due
// tick per position. The heap may carry stale duplicates; they are
// recognised on pop by comparing against the map and dropped (lazy
// deletion), the standard pattern for dedup'd event queues.
type schedule struct {
	now  uint64
	due  map[Pos]uint64
	heap dueHeap
}

type dueEntry struct {
	pos Pos
	at  uint64
}

type dueHeap []dueEntry

func (h dueHeap) Len() int            { return len(h) }
func (h dueHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h dueHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dueHeap) Push(x any)         { *h = append(*h, x.(dueEntry)) }
func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func newSchedule() schedule {
	return schedule{due: map[Pos]uint64{}}
}

// push schedules p after delay ticks. A position already scheduled at
// least as soon is left alone; otherwise the sooner tick becomes
// authoritative and a fresh heap entry is pushed, orphaning any older one.
func (s *schedule) push(p Pos, delay int) {
	if delay < 0 {
		delay = 0
	}
	at := s.now + uint64(delay)
	if prev, ok := s.due[p]; ok && prev <= at {
		return
	}
	s.due[p] = at
	heap.Push(&s.heap, dueEntry{pos: p, at: at})
}

// pop removes and returns the next position due at or before the current
// tick. Stale heap entries are counted and skipped.
func (s *schedule) pop(discarded *int) (Pos, bool) {
	for len(s.heap) > 0 {
		if s.heap[0].at > s.now {
			return Pos{}, false
		}
		e := heap.Pop(&s.heap).(dueEntry)
		at, ok := s.due[e.pos]
		if !ok || at != e.at {
			*discarded++
			continue
		}
		delete(s.due, e.pos)
		return e.pos, true
	}
	return Pos{}, false
}

// purge removes every scheduled entry whose position fails keep. The heap
// is filtered and rebuilt; the map is pruned in place.
func (s *schedule) purge(keep func(Pos) bool) {
	for p := range s.due {
		if !keep(p) {
			delete(s.due, p)
		}
	}
	kept := s.heap[:0]
	for _, e := range s.heap {
		if keep(e.pos) {
			kept = append(kept, e)
		}
	}
	s.heap = kept
	heap.Init(&s.heap)
}
