package engine

import (
	"errors"
	"fmt"
)

// ErrOutOfReach is returned when the interaction target lies outside the
// reach radius. Nothing is mutated and nothing should be persisted.
var ErrOutOfReach = errors.New("target cell out of reach")

// OutcomeKind classifies the result of an interaction.
type OutcomeKind string

const (
	OutcomeNone   OutcomeKind = "none"
	OutcomePickUp OutcomeKind = "pick_up"
	OutcomeMerge  OutcomeKind = "merge"
	OutcomeSwap   OutcomeKind = "swap"
)

// Outcome describes what an interaction did. Held and Cell report the
// post-interaction held token and cell value (0 meaning empty/absent).
// Won is true only for the single merge that first reaches the win value.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Target Coord       `json:"target"`
	Held   int         `json:"held_token"`
	Cell   int         `json:"cell_token"`
	Won    bool        `json:"won"`
}

// Mutated reports whether the interaction changed any state. No-op
// outcomes must not trigger a re-render or a save.
func (o *Outcome) Mutated() bool {
	return o.Kind != OutcomeNone
}

// Interact applies the pick-up/merge/swap rule at target.
//
// The reach gate is checked before any mutation: a target whose Chebyshev
// distance from the player exceeds the reach radius yields ErrOutOfReach
// and an untouched state. Otherwise the branch is chosen from the pair
// (held token, cell value):
//
//	empty hands, empty cell   -> nothing
//	empty hands, token v      -> pick up v, cell cleared
//	holding h,   empty cell   -> nothing (no dropping without an exchange)
//	holding h,   token h      -> merge: held becomes 2h, cell cleared
//	holding h,   token v != h -> swap held and cell
//
// Merging doubles rather than sums; the win value is only reachable
// because every merge is an exact doubling.
func (gs *GameState) Interact(target Coord, rules *Rules) (*Outcome, error) {
	if Chebyshev(gs.PlayerPos, target) > rules.ReachRadius {
		return nil, fmt.Errorf("%w: %s is %d cells from %s (max %d)",
			ErrOutOfReach, target, Chebyshev(gs.PlayerPos, target), gs.PlayerPos, rules.ReachRadius)
	}

	out := &Outcome{Kind: OutcomeNone, Target: target}
	cell, occupied := gs.Cells.Get(target)

	switch {
	case gs.Held == 0 && !occupied:
		// nothing to do

	case gs.Held == 0:
		gs.Held = cell
		gs.Cells.Remove(target)
		out.Kind = OutcomePickUp
		gs.Message = fmt.Sprintf(rules.Messages.PickUp, cell)

	case !occupied:
		// cannot drop without an exchange target

	case gs.Held == cell:
		merged := gs.Held * 2
		gs.Cells.Remove(target)
		gs.Held = merged
		out.Kind = OutcomeMerge
		gs.Message = fmt.Sprintf(rules.Messages.Merge, merged)
		if !gs.Won && merged >= rules.WinValue {
			gs.Won = true
			out.Won = true
			gs.Message = fmt.Sprintf(rules.Messages.Win, merged)
		}

	default:
		gs.Cells.Set(target, gs.Held)
		gs.Held = cell
		out.Kind = OutcomeSwap
		gs.Message = fmt.Sprintf(rules.Messages.Swap, cell)
	}

	out.Held = gs.Held
	if v, ok := gs.Cells.Get(target); ok {
		out.Cell = v
	}
	return out, nil
}
