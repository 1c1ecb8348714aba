// Package engine provides the core game logic for Mergewalk.
//
// The engine package implements the game mechanics including:
//   - Deterministic cell spawning on an unbounded integer grid
//   - The pick-up / merge / swap interaction rule and win detection
//   - Visited-cell tracking that prevents re-roll farming
//   - Viewport materialization around the player
//   - State snapshots for persistence
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while Rules defines the game parameters loaded from JSON files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Step(engine.North)
//	outcome, err := gameEngine.Interact(engine.Coord{I: 0, J: 1})
//
// Game Rules:
//
// The player stands on one cell of an infinite grid overlaid on a map.
// Numbered tokens spawn deterministically in nearby cells as they are
// first seen. Clicking a reachable cell picks up, merges (doubling), or
// swaps tokens; crafting one token of the win value ends the game in
// victory. Emptied cells never restock.
package engine
