// Package store holds the in-memory console state the realtime feed
// keeps current: the session profile, the notification tray, the active
// route, and the ticket message feed.
//
// Stores are passive. They never call the API or the socket; the router
// and refresher write into them, and the status server and subscribers
// read out of them. All stores are safe for concurrent use.
package store
