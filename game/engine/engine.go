package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	NewGame() *GameState
	IsWon() bool
	GetHeldToken() int
	GetPlayerPosition() Coord

	// Movement
	Step(dir Direction) error
	PlacePlayer(c Coord) bool

	// Interaction
	Interact(target Coord) (*Outcome, error)

	// Viewport
	Viewport() []ViewportCell

	// Persistence
	Snapshot() *Snapshot
	Restore(snap *Snapshot) error

	// Configuration
	GetRules() *Rules
	SetRules(rules *Rules) error

	// History
	GetActionHistory() []ActionEntry
	GetLastAction() *ActionEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state *GameState
	rules *Rules
}

// NewEngine creates a new game engine with the provided rules
func NewEngine(rules *Rules) (*GameEngine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	e := &GameEngine{
		rules: rules,
		state: NewGameState(rules),
	}
	e.state.RecomputeViewport(e.state.PlayerPos, rules)
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default rules
func NewEngineWithDefaults() *GameEngine {
	e, _ := NewEngine(DefaultRules())
	return e
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Cells == nil || state.Visited == nil {
		return fmt.Errorf("state is missing cell store or visited set")
	}
	e.state = state
	return nil
}

// NewGame resets the board, position, and held token to defaults while
// preserving the cumulative action history. Previously visited cells
// become spawn-eligible again.
func (e *GameEngine) NewGame() *GameState {
	prevHistory := e.state.ActionHistory
	prevTotal := e.state.TotalActions

	e.state = NewGameState(e.rules)
	e.state.ActionHistory = prevHistory
	e.state.TotalActions = prevTotal
	e.state.RecomputeViewport(e.state.PlayerPos, e.rules)
	return e.state
}

// IsWon returns whether the player has crafted the win token
func (e *GameEngine) IsWon() bool {
	return e.state.Won
}

// GetHeldToken returns the held token, 0 meaning empty hands
func (e *GameEngine) GetHeldToken() int {
	return e.state.Held
}

// GetPlayerPosition returns the current player cell
func (e *GameEngine) GetPlayerPosition() Coord {
	return e.state.PlayerPos
}

// Step moves the player one cell in the given direction and recomputes
// the viewport around the new position.
func (e *GameEngine) Step(dir Direction) error {
	di, dj, ok := dir.Delta()
	if !ok {
		return fmt.Errorf("unknown direction %q", dir)
	}
	from := e.state.PlayerPos
	e.state.PlayerPos = Coord{I: from.I + di, J: from.J + dj}
	e.state.RecomputeViewport(e.state.PlayerPos, e.rules)
	e.state.AddAction("step:"+string(dir), from, e.state.PlayerPos, "", true)
	return nil
}

// PlacePlayer moves the player to an absolute cell, as decided by a
// continuous movement source. It reports whether the position changed.
func (e *GameEngine) PlacePlayer(c Coord) bool {
	if c == e.state.PlayerPos {
		return false
	}
	from := e.state.PlayerPos
	e.state.PlayerPos = c
	e.state.RecomputeViewport(c, e.rules)
	e.state.AddAction("position", from, c, "", true)
	return true
}

// Interact applies the interaction rule at target and records the action.
func (e *GameEngine) Interact(target Coord) (*Outcome, error) {
	from := e.state.PlayerPos
	out, err := e.state.Interact(target, e.rules)
	if err != nil {
		return nil, err
	}
	if out.Mutated() {
		e.state.AddAction("interact", from, target, string(out.Kind), true)
	}
	return out, nil
}

// Viewport returns the current window around the player without mutating
// anything beyond first-visit spawning (a second call is a pure read).
func (e *GameEngine) Viewport() []ViewportCell {
	return e.state.RecomputeViewport(e.state.PlayerPos, e.rules)
}

// Snapshot captures the persistable projection of the current state
func (e *GameEngine) Snapshot() *Snapshot {
	return e.state.Snapshot()
}

// Restore replaces the current state with one rebuilt from snap. On error
// the engine keeps its previous state untouched.
func (e *GameEngine) Restore(snap *Snapshot) error {
	gs, err := RestoreState(e.rules, snap)
	if err != nil {
		return err
	}
	prevHistory := e.state.ActionHistory
	prevTotal := e.state.TotalActions
	e.state = gs
	e.state.ActionHistory = prevHistory
	e.state.TotalActions = prevTotal
	e.state.RecomputeViewport(e.state.PlayerPos, e.rules)
	return nil
}

// GetRules returns the active rule set
func (e *GameEngine) GetRules() *Rules {
	return e.rules
}

// SetRules installs a new rule set and starts a new game under it
func (e *GameEngine) SetRules(rules *Rules) error {
	if err := ValidateRules(rules); err != nil {
		return err
	}
	e.rules = rules
	e.state = NewGameState(rules)
	e.state.RecomputeViewport(e.state.PlayerPos, rules)
	return nil
}

// GetActionHistory returns the complete action history
func (e *GameEngine) GetActionHistory() []ActionEntry {
	return e.state.ActionHistory
}

// GetLastAction returns the last recorded action, or nil if none
func (e *GameEngine) GetLastAction() *ActionEntry {
	if len(e.state.ActionHistory) == 0 {
		return nil
	}
	return &e.state.ActionHistory[len(e.state.ActionHistory)-1]
}
