package engine

import (
	"fmt"
	"time"
)

// Snapshot is the serializable projection of a game in progress. HeldToken
// is nil for empty hands. Visited is persisted alongside the cell contents
// so that cells the player emptied stay empty after a reload; on restore
// it is unioned with the cell-content keys, which keeps old saves without
// a visited array loadable.
type Snapshot struct {
	PlayerPos Coord          `json:"player_pos"`
	HeldToken *int           `json:"held_token"`
	Cells     map[string]int `json:"cell_contents"`
	Visited   []string       `json:"visited,omitempty"`
}

// Snapshot captures the persistable projection of the state.
func (gs *GameState) Snapshot() *Snapshot {
	snap := &Snapshot{
		PlayerPos: gs.PlayerPos,
		Cells:     gs.Cells.Export(),
		Visited:   gs.Visited.Export(),
	}
	if gs.Held != 0 {
		held := gs.Held
		snap.HeldToken = &held
	}
	return snap
}

// NewGameState returns the default fresh state: origin position, empty
// hands, nothing spawned, nothing visited.
func NewGameState(rules *Rules) *GameState {
	return &GameState{
		Cells:     NewCellStore(),
		Visited:   NewVisitedSet(),
		Message:   rules.Messages.Welcome,
		RulesName: rules.Name,
	}
}

// RestoreState rebuilds a state from a snapshot. The snapshot is validated
// as a whole before anything is adopted: a malformed snapshot yields an
// error and no partially-applied state.
func RestoreState(rules *Rules, snap *Snapshot) (*GameState, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if snap.HeldToken != nil && *snap.HeldToken < 1 {
		return nil, fmt.Errorf("invalid held token %d", *snap.HeldToken)
	}

	cells := NewCellStore()
	if err := cells.Import(snap.Cells); err != nil {
		return nil, fmt.Errorf("invalid cell contents: %w", err)
	}

	visited := NewVisitedSet()
	if err := visited.Import(snap.Visited); err != nil {
		return nil, fmt.Errorf("invalid visited set: %w", err)
	}
	// The visited set must cover every stored cell, or a reload could
	// re-roll cells the player has already seen.
	for key := range snap.Cells {
		c, err := ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("invalid cell contents: %w", err)
		}
		visited.Mark(c)
	}

	gs := NewGameState(rules)
	gs.PlayerPos = snap.PlayerPos
	gs.Cells = cells
	gs.Visited = visited
	if snap.HeldToken != nil {
		gs.Held = *snap.HeldToken
	}
	return gs, nil
}

// AddAction appends an action to the cumulative history.
func (gs *GameState) AddAction(action string, from, to Coord, outcome string, success bool) {
	gs.TotalActions++
	gs.ActionHistory = append(gs.ActionHistory, ActionEntry{
		Action:    action,
		From:      from,
		To:        to,
		Outcome:   outcome,
		Held:      gs.Held,
		Timestamp: time.Now().Unix(),
		Success:   success,
		Seq:       gs.TotalActions,
	})
}
