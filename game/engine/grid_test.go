package engine

import (
	"encoding/json"
	"testing"
)

func TestCoordKeyRoundTrip(t *testing.T) {
	coords := []Coord{{0, 0}, {1, 2}, {-1, -2}, {-1000000, 999999}}
	for _, c := range coords {
		got, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", c.Key(), err)
		}
		if got != c {
			t.Errorf("ParseKey(Key(%v)) = %v", c, got)
		}
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "1", "1,", ",2", "a,b", "1.5,2", "1,2,3"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q) should fail", key)
		}
	}
}

func TestChebyshev(t *testing.T) {
	tests := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{3, 0}, 3},
		{Coord{0, 0}, Coord{0, -4}, 4},
		{Coord{0, 0}, Coord{2, 3}, 3},
		{Coord{-2, -2}, Coord{1, 1}, 3},
	}
	for _, tt := range tests {
		if got := Chebyshev(tt.a, tt.b); got != tt.want {
			t.Errorf("Chebyshev(%v,%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Chebyshev(tt.b, tt.a); got != tt.want {
			t.Errorf("Chebyshev(%v,%v) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCellStore_SparseOps(t *testing.T) {
	s := NewCellStore()
	c := Coord{I: 2, J: -3}

	if s.Has(c) || s.Len() != 0 {
		t.Fatal("new store should be empty")
	}
	if _, ok := s.Get(c); ok {
		t.Fatal("Get on empty store should report absence")
	}

	s.Set(c, 4)
	if v, ok := s.Get(c); !ok || v != 4 {
		t.Fatalf("Get = (%d,%v), want (4,true)", v, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	s.Set(c, 8)
	if v, _ := s.Get(c); v != 8 {
		t.Fatalf("overwrite failed, got %d", v)
	}

	s.Remove(c)
	if s.Has(c) || s.Len() != 0 {
		t.Fatal("Remove should leave the store empty")
	}
	s.Remove(c) // removing an absent cell is a no-op
}

func TestCellStore_ExportImport(t *testing.T) {
	s := NewCellStore()
	s.Set(Coord{0, 1}, 1)
	s.Set(Coord{-5, 9}, 2)

	exported := s.Export()
	exported["0,1"] = 99 // mutating the export must not touch the store
	if v, _ := s.Get(Coord{0, 1}); v != 1 {
		t.Fatalf("export is not a copy: store value = %d", v)
	}

	dst := NewCellStore()
	if err := dst.Import(s.Export()); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if dst.Len() != 2 {
		t.Fatalf("imported Len = %d, want 2", dst.Len())
	}
	if v, _ := dst.Get(Coord{-5, 9}); v != 2 {
		t.Fatalf("imported value = %d, want 2", v)
	}
}

func TestCellStore_ImportRejectsMalformed(t *testing.T) {
	s := NewCellStore()
	s.Set(Coord{7, 7}, 8)

	bad := []map[string]int{
		{"nonsense": 1},
		{"1,2": 0},
		{"1,2": -3},
	}
	for _, cells := range bad {
		if err := s.Import(cells); err == nil {
			t.Errorf("Import(%v) should fail", cells)
		}
	}
	// A failed import leaves the store untouched.
	if v, ok := s.Get(Coord{7, 7}); !ok || v != 8 {
		t.Fatal("failed import mutated the store")
	}
}

func TestCellStore_JSONRoundTrip(t *testing.T) {
	s := NewCellStore()
	s.Set(Coord{-1, 2}, 16)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back CellStore
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := back.Get(Coord{-1, 2}); !ok || v != 16 {
		t.Fatalf("round trip lost cell: (%d,%v)", v, ok)
	}
}

func TestVisitedSet_MarkOnce(t *testing.T) {
	v := NewVisitedSet()
	c := Coord{I: -4, J: 12}

	if v.Contains(c) {
		t.Fatal("empty set should not contain anything")
	}
	if !v.Mark(c) {
		t.Fatal("first Mark should report newly added")
	}
	if v.Mark(c) {
		t.Fatal("second Mark should report already present")
	}
	if !v.Contains(c) || v.Len() != 1 {
		t.Fatal("Mark did not record membership")
	}
}

func TestVisitedSet_ExportImport(t *testing.T) {
	v := NewVisitedSet()
	v.Mark(Coord{1, 1})
	v.Mark(Coord{-2, 0})

	keys := v.Export()
	if len(keys) != 2 {
		t.Fatalf("Export len = %d, want 2", len(keys))
	}

	dst := NewVisitedSet()
	if err := dst.Import(keys); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !dst.Contains(Coord{1, 1}) || !dst.Contains(Coord{-2, 0}) {
		t.Fatal("import lost membership")
	}

	if err := dst.Import([]string{"not-a-key"}); err == nil {
		t.Fatal("Import of malformed key should fail")
	}
}
