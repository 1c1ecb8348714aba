// Package api provides the HTTP REST surface for Mergewalk.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (body: {rules_id})
//   - GET /api/sessions - List sessions (sort, order, limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/viewport - Window of cells around the player
//   - POST /api/sessions/{id}/click - Interact with a cell (body: {i, j})
//   - POST /api/sessions/{id}/move - Manual step (body: {direction})
//   - POST /api/sessions/{id}/mode - Switch movement mode (body: {mode})
//   - POST /api/sessions/{id}/position - Submit a GPS fix (body: {lat, lng}
//     or {reason} to report a source failure)
//   - POST /api/sessions/{id}/new-game - Discard the save and restart
//   - POST /api/sessions/{id}/save - Persist current state
//   - GET /api/sessions/{id}/history - Paginated action history
//
// Rules:
//   - GET /api/rules - List available rule sets
//   - GET /api/rules/{name} - Fetch one rule set
//   - POST /api/rules - Store a rule set (validated before save)
//
// Other:
//   - GET /health - Liveness probe
//   - /ws?session={id} - WebSocket upgrade for real-time updates
//
// All endpoints accept and return JSON. Errors come back as
// {"error": "message"} with an appropriate status code. Mutating game
// operations broadcast the resulting state to the session's WebSocket
// clients.
package api
