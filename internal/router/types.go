package router

import (
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

// RouterConfig holds configuration for the Event Router.
type RouterConfig struct {
	MaintenancePath string // route users are parked on while maintenance is active
	DefaultPath     string // landing route after maintenance ends
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaintenancePath: "/maintenance",
		DefaultPath:     "/dashboard",
	}
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	EventsReceived  int64 `json:"events_received"`
	EventsRouted    int64 `json:"events_routed"`
	ParseErrors     int64 `json:"parse_errors"`
	PrincipalDrops  int64 `json:"principal_drops"`
	UnknownMessages int64 `json:"unknown_messages"`
}

// SessionState is the locally cached identity the router filters
// fan-out events against.
type SessionState interface {
	UserID() string
	Superadmin() bool
}

// TokenSubject resolves the principal from the current bearer token,
// used when no profile has been cached yet.
type TokenSubject interface {
	Subject() string
}

// SessionRefresher receives the triggers that force server re-fetches.
type SessionRefresher interface {
	SessionInvalidated()
	UnreadCountStale()
}

// NotificationSink mutates the local notification tray.
type NotificationSink interface {
	Insert(n model.Notification)
	MarkRead(id string) bool
	SetUnread(count int)
}

// Navigator forces route changes in the console shell. Navigate reports
// whether the route actually changed.
type Navigator interface {
	Navigate(path string) bool
	CurrentPath() string
}

// TicketSink receives ticket chat signals.
type TicketSink interface {
	Publish(msg model.TicketMessage)
}

// Wire types for JSON parsing

// messageEnvelope is used for fast type extraction.
type messageEnvelope struct {
	Type string `json:"type"`
}

// maintenanceWire is the wire format for maintenance_mode events.
type maintenanceWire struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// notificationReceivedWire is the wire format for notification_received
// events. The nested notification matches the REST representation.
type notificationReceivedWire struct {
	UserID       string             `json:"user_id"`
	Notification model.Notification `json:"notification"`
}

// notificationReadWire is the wire format for notification_read events.
type notificationReadWire struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
}

// unreadCountWire is the wire format for unread_count_updated events.
type unreadCountWire struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// ticketMessageWire is the wire format for ticket_message events.
type ticketMessageWire struct {
	UserID    string    `json:"user_id"`
	TicketID  int64     `json:"ticket_id"`
	MessageID string    `json:"message_id"`
	Preview   string    `json:"preview"`
	SentAt    time.Time `json:"sent_at"`
}
