// Package movement provides the player-position sources for Mergewalk.
//
// Two variants exist behind the Source contract: Manual consumes the
// four discrete directional commands, Continuous consumes an external
// geographic position feed, quantizing fixes to grid cells and dropping
// sub-cell jitter. A Controller owns the active variant, guarantees that
// exactly one mutates the player position at a time, and falls back to
// manual movement when the feed fails.
//
// The engine knows nothing about transports: anything implementing Feed
// (a WebSocket client stream, a replayed GPX track, a test fake) can
// drive the continuous variant.
package movement
