// Package service provides the business logic layer between transports
// and the game engine.
//
// GameService is the single entry point for session lifecycle, cell
// interactions, movement, mode switching, and rule set management. Each
// session owns a movement.Controller; directional commands route through
// it so they are rejected while a continuous position feed drives the
// player. Mutating operations auto-save through the session manager and
// publish GameEvents to the configured Notifier.
package service
