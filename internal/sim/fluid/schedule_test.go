package fluid

import "testing"

func TestScheduleDedupKeepsSoonestTick(t *testing.T) {
	s := newSchedule()
	p := Pos{X: 1, Y: 2, Z: 3}

	s.push(p, 5)
	s.push(p, 2)
	s.push(p, 9) // later than recorded: no-op

	if got := s.due[p]; got != 2 {
		t.Fatalf("authoritative due tick = %d, want 2", got)
	}

	// Nothing due yet.
	var discarded int
	if _, ok := s.pop(&discarded); ok {
		t.Fatalf("popped before due tick")
	}

	s.now = 2
	got, ok := s.pop(&discarded)
	if !ok || got != p {
		t.Fatalf("pop = %v,%v, want %v", got, ok, p)
	}
	if _, ok := s.due[p]; ok {
		t.Fatalf("due map entry not cleared on pop")
	}

	// The orphaned delay-5 heap entry must be discarded as stale, not
	// processed a second time.
	s.now = 10
	if _, ok := s.pop(&discarded); ok {
		t.Fatalf("stale duplicate was processed")
	}
	if discarded != 1 {
		t.Fatalf("discarded = %d, want 1", discarded)
	}
}

func TestSchedulePopsInDueOrder(t *testing.T) {
	s := newSchedule()
	a := Pos{X: 0}
	b := Pos{X: 1}
	c := Pos{X: 2}
	s.push(b, 3)
	s.push(a, 1)
	s.push(c, 2)

	s.now = 5
	var discarded int
	want := []Pos{a, c, b}
	for i, w := range want {
		got, ok := s.pop(&discarded)
		if !ok || got != w {
			t.Fatalf("pop %d = %v,%v, want %v", i, got, ok, w)
		}
	}
}

func TestScheduleNegativeDelayClampsToNow(t *testing.T) {
	s := newSchedule()
	s.now = 7
	p := Pos{Y: 1}
	s.push(p, -4)
	if got := s.due[p]; got != 7 {
		t.Fatalf("due tick = %d, want 7", got)
	}
}

func TestSchedulePurgeFiltersHeapAndMap(t *testing.T) {
	s := newSchedule()
	for x := 0; x < 10; x++ {
		s.push(Pos{X: x}, x)
	}
	s.purge(func(p Pos) bool { return p.X%2 == 0 })

	if len(s.due) != 5 {
		t.Fatalf("due map size = %d, want 5", len(s.due))
	}
	s.now = 100
	var discarded int
	for {
		p, ok := s.pop(&discarded)
		if !ok {
			break
		}
		if p.X%2 != 0 {
			t.Fatalf("purged position %v still popped", p)
		}
	}
	if discarded != 0 {
		t.Fatalf("purge left %d stale heap entries", discarded)
	}
}
