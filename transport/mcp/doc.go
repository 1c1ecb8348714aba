// Package mcp provides a Model Context Protocol interface for Mergewalk.
//
// The package implements a thin MCP client that proxies every tool call
// to the REST API, so the MCP surface and the HTTP surface always agree
// on game semantics. It holds no game state of its own.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get current state (position, held token, win status)
//   - viewport: Render the cell window around the player as text
//   - click_cell: Interact with a cell (pick up, merge, or swap)
//   - move: Execute a single manual step
//   - set_mode: Switch between manual and continuous GPS movement
//   - new_game: Clear the save slot and start fresh
//   - save_game: Persist current progress
//   - action_history: Retrieve past actions with pagination
//   - create_session: Create a new game session with rule set selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_rules: List available rule sets
//   - game_instructions: Full rules and strategy reference
//   - describe_cell: Inspect one viewport cell and the click it would trigger
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Because the client talks to the REST API over HTTP, the game server
// must be running before MCP tools are invoked.
package mcp
