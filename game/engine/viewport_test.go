package engine

import "testing"

func TestRecomputeViewport_WindowShape(t *testing.T) {
	rules := DefaultRules()
	gs := NewGameState(rules)

	window := gs.RecomputeViewport(Coord{}, rules)
	wantLen := (2*rules.ViewRadius + 1) * (2*rules.ViewRadius + 1)
	if len(window) != wantLen {
		t.Fatalf("window size = %d, want %d", len(window), wantLen)
	}

	for _, vc := range window {
		if Chebyshev(vc.Coord, Coord{}) > rules.ViewRadius {
			t.Errorf("window contains %s outside the view radius", vc.Coord)
		}
		if !gs.Visited.Contains(vc.Coord) {
			t.Errorf("%s rendered but not marked visited", vc.Coord)
		}
	}
}

func TestRecomputeViewport_MatchesSpawnFunction(t *testing.T) {
	rules := DefaultRules()
	gs := NewGameState(rules)
	gs.RecomputeViewport(Coord{}, rules)

	for i := -rules.ViewRadius; i <= rules.ViewRadius; i++ {
		for j := -rules.ViewRadius; j <= rules.ViewRadius; j++ {
			c := Coord{I: i, J: j}
			wantV, wantOK := SpawnAt(rules, c)
			gotV, gotOK := gs.Cells.Get(c)
			if wantOK != gotOK || (wantOK && wantV != gotV) {
				t.Errorf("cell %s: store (%d,%v), spawn function (%d,%v)", c, gotV, gotOK, wantV, wantOK)
			}
		}
	}
}

func TestRecomputeViewport_Idempotent(t *testing.T) {
	rules := DefaultRules()
	gs := NewGameState(rules)
	gs.RecomputeViewport(Coord{}, rules)

	before := gs.Cells.Export()
	gs.RecomputeViewport(Coord{}, rules)
	after := gs.Cells.Export()

	if len(before) != len(after) {
		t.Fatalf("second recompute changed cell count: %d -> %d", len(before), len(after))
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("cell %s changed: %d -> %d", k, v, after[k])
		}
	}
}

func TestRecomputeViewport_NeverRerollsVisited(t *testing.T) {
	rules := DefaultRules()
	gs := NewGameState(rules)
	gs.RecomputeViewport(Coord{}, rules)

	// Empty every spawned cell inside the window, as a player would.
	for _, key := range gs.Visited.Export() {
		c, err := ParseKey(key)
		if err != nil {
			t.Fatal(err)
		}
		gs.Cells.Remove(c)
	}

	gs.RecomputeViewport(Coord{}, rules)
	if gs.Cells.Len() != 0 {
		t.Fatalf("visited cells re-rolled: %d cells reappeared", gs.Cells.Len())
	}

	// Moving away and back must not restock either.
	far := Coord{I: 100, J: 100}
	gs.RecomputeViewport(far, rules)
	window := gs.RecomputeViewport(Coord{}, rules)
	for _, vc := range window {
		if vc.Present {
			t.Fatalf("cell %s restocked after revisit", vc.Coord)
		}
	}
}

func TestRecomputeViewport_NewCellsOnMove(t *testing.T) {
	rules := DefaultRules()
	gs := NewGameState(rules)
	gs.RecomputeViewport(Coord{}, rules)
	visitedBefore := gs.Visited.Len()

	gs.RecomputeViewport(Coord{I: 1, J: 0}, rules)
	// One new row of the window becomes visible.
	wantNew := 2*rules.ViewRadius + 1
	if got := gs.Visited.Len() - visitedBefore; got != wantNew {
		t.Errorf("moving one cell visited %d new cells, want %d", got, wantNew)
	}
}
