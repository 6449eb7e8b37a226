package fluid

import "testing"

func TestFlowingRejectsOutOfRangeLevels(t *testing.T) {
	for _, lvl := range []int{-1, 0, 8, 99} {
		if _, err := Flowing(lvl); err == nil {
			t.Fatalf("expected error for level %d", lvl)
		}
	}
	for lvl := 1; lvl <= 7; lvl++ {
		c, err := Flowing(lvl)
		if err != nil {
			t.Fatalf("level %d: %v", lvl, err)
		}
		if int(c.Level) != lvl || c.Falling {
			t.Fatalf("level %d: got %+v", lvl, c)
		}
	}
}

func TestSourceIdentity(t *testing.T) {
	s := Source()
	if !s.IsSource() || s.Level != LevelSource || s.Falling {
		t.Fatalf("bad source: %+v", s)
	}
	if s.AsFalling().IsSource() {
		t.Fatalf("falling level-0 must not be a source")
	}
	if !s.AsFalling().Settled().IsSource() {
		t.Fatalf("settling a falling level-0 cell should restore a source")
	}
}

func TestStrongerThanOrdering(t *testing.T) {
	src := Source()
	l1, _ := Flowing(1)
	l3, _ := Flowing(3)

	if !src.StrongerThan(l1) || !src.StrongerThan(l3.AsFalling()) {
		t.Fatalf("source must beat any flowing cell")
	}
	if l1.StrongerThan(src) || src.AsFalling().StrongerThan(src) {
		t.Fatalf("nothing beats a source")
	}
	if !l1.StrongerThan(l3) {
		t.Fatalf("lower level must win")
	}
	if l3.StrongerThan(l1) {
		t.Fatalf("higher level must lose")
	}
	if !l3.StrongerThan(l3.AsFalling()) {
		t.Fatalf("still must beat falling at equal level")
	}
	if l3.AsFalling().StrongerThan(l3) {
		t.Fatalf("falling must not beat still at equal level")
	}
	if l3.StrongerThan(l3) {
		t.Fatalf("equal cells are not strictly stronger")
	}
}

func TestFallingFlagRoundTrip(t *testing.T) {
	c, _ := Flowing(4)
	f := c.AsFalling()
	if !f.Falling || f.Level != 4 {
		t.Fatalf("AsFalling changed more than the flag: %+v", f)
	}
	if f.AsFalling() != f {
		t.Fatalf("AsFalling must be identity on a falling cell")
	}
	if f.Settled() != c {
		t.Fatalf("Settled must restore the still cell")
	}
	if c.Settled() != c {
		t.Fatalf("Settled must be identity on a still cell")
	}
}
