// Package websocket provides the real-time transport for Mergewalk.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Outbound messages are JSON-encoded Message values: state updates after
// each mutation plus game events (pick_up, merge, swap, win,
// mode_fallback). Inbound frames from clients carry GPS fixes:
//   - {type: "position", lat: 51.5074, lng: -0.1278}
//   - {type: "position_error", reason: "signal lost"}
//
// Position frames are routed into the session's SessionFeed, which the
// movement layer consumes when continuous mode is active. Frames for a
// session in manual mode are delivered to the feed and dropped there,
// since no source is subscribed.
//
// Session Integration:
//
// Clients specify their session ID via query parameter (?sessionId=ab12)
// when establishing the connection. State updates are broadcast only to
// clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
// The Hub doubles as the service layer's FeedProvider and Notifier.
package websocket
