// Package connection maintains the persistent realtime socket to the
// console backend.
//
// The Session:
//   - Owns exactly one WebSocket at a time
//   - Reconnects with exponential backoff and jitter after any drop
//   - Sends a plain-text keep-alive and force-closes idle sockets
//   - Runs a watchdog that unsticks hung handshakes and revives the
//     session when nothing else is scheduled to
//
// A user-initiated Disconnect suppresses reconnection until the next
// Connect or token change.
package connection
