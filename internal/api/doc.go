// Package api provides the REST client for the console backend.
//
// The realtime feed only signals that something changed; this client
// fetches the authoritative state. Endpoints used:
//   - GET /users/me
//   - GET /notifications
//   - GET /notifications/unread-count
package api
