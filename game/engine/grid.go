package engine

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CellStore is the sparse mapping from cell coordinate to token value.
// Absence means empty; an empty cell is never stored as a zero entry.
type CellStore struct {
	cells map[string]int
}

// NewCellStore creates an empty store.
func NewCellStore() *CellStore {
	return &CellStore{cells: make(map[string]int)}
}

// Get returns the token at c, if any.
func (s *CellStore) Get(c Coord) (int, bool) {
	v, ok := s.cells[c.Key()]
	return v, ok
}

// Set places a token at c, overwriting any existing one.
func (s *CellStore) Set(c Coord, value int) {
	s.cells[c.Key()] = value
}

// Remove clears the cell at c. Removing an empty cell is a no-op.
func (s *CellStore) Remove(c Coord) {
	delete(s.cells, c.Key())
}

// Has reports whether c currently holds a token.
func (s *CellStore) Has(c Coord) bool {
	_, ok := s.cells[c.Key()]
	return ok
}

// Len returns the number of occupied cells.
func (s *CellStore) Len() int {
	return len(s.cells)
}

// Export returns a copy of the store keyed by the canonical "i,j" format,
// suitable for persistence.
func (s *CellStore) Export() map[string]int {
	out := make(map[string]int, len(s.cells))
	for k, v := range s.cells {
		out[k] = v
	}
	return out
}

// Import replaces the store contents. Every key must parse as a coordinate
// and every value must be a positive token; on error the store is unchanged.
func (s *CellStore) Import(cells map[string]int) error {
	next := make(map[string]int, len(cells))
	for k, v := range cells {
		c, err := ParseKey(k)
		if err != nil {
			return err
		}
		if v < 1 {
			return fmt.Errorf("cell %s: invalid token value %d", c, v)
		}
		next[c.Key()] = v
	}
	s.cells = next
	return nil
}

// MarshalJSON serializes the store as its exported map.
func (s *CellStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Export())
}

// UnmarshalJSON restores the store from an exported map.
func (s *CellStore) UnmarshalJSON(data []byte) error {
	var cells map[string]int
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	if s.cells == nil {
		s.cells = make(map[string]int)
	}
	return s.Import(cells)
}

// VisitedSet records every coordinate that has ever been included in a
// viewport. Membership is permanent for the lifetime of a save: marking
// gates spawn evaluation, so a cell the player emptied never re-rolls.
type VisitedSet struct {
	seen map[string]bool
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]bool)}
}

// Mark adds c to the set and reports whether it was newly added.
func (v *VisitedSet) Mark(c Coord) bool {
	k := c.Key()
	if v.seen[k] {
		return false
	}
	v.seen[k] = true
	return true
}

// Contains reports whether c has ever been visited.
func (v *VisitedSet) Contains(c Coord) bool {
	return v.seen[c.Key()]
}

// Len returns the number of visited coordinates.
func (v *VisitedSet) Len() int {
	return len(v.seen)
}

// Export returns the visited keys in a stable order.
func (v *VisitedSet) Export() []string {
	keys := make([]string, 0, len(v.seen))
	for k := range v.seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Import replaces the set contents. Keys must parse as coordinates.
func (v *VisitedSet) Import(keys []string) error {
	next := make(map[string]bool, len(keys))
	for _, k := range keys {
		c, err := ParseKey(k)
		if err != nil {
			return err
		}
		next[c.Key()] = true
	}
	v.seen = next
	return nil
}

// MarshalJSON serializes the set as a sorted key array.
func (v *VisitedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Export())
}

// UnmarshalJSON restores the set from a key array.
func (v *VisitedSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	return v.Import(keys)
}
