package router

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

// Router parses raw socket frames and dispatches them to the local
// stores and effect handlers.
type Router interface {
	// Handle routes a single raw frame. It is called from the socket
	// read goroutine in frame order and never returns an error; a frame
	// that cannot be routed is logged and lost.
	Handle(data []byte)

	// Stats returns current router statistics.
	Stats() RouterStats
}

// Deps are the collaborators events are dispatched to. All fields are
// required.
type Deps struct {
	Session       SessionState
	Tokens        TokenSubject
	Refresher     SessionRefresher
	Notifications NotificationSink
	Nav           Navigator
	Tickets       TicketSink
}

// router is the internal implementation.
type router struct {
	cfg    RouterConfig
	deps   Deps
	logger *slog.Logger

	mu              sync.RWMutex
	received        int64
	routed          int64
	parseErrors     int64
	principalDrops  int64
	unknownMessages int64
}

// NewRouter creates a new Event Router.
func NewRouter(cfg RouterConfig, deps Deps, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaintenancePath == "" {
		cfg.MaintenancePath = DefaultRouterConfig().MaintenancePath
	}
	if cfg.DefaultPath == "" {
		cfg.DefaultPath = DefaultRouterConfig().DefaultPath
	}

	return &router{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RouterStats{
		EventsReceived:  r.received,
		EventsRouted:    r.routed,
		ParseErrors:     r.parseErrors,
		PrincipalDrops:  r.principalDrops,
		UnknownMessages: r.unknownMessages,
	}
}

// Handle parses and routes a single frame.
func (r *router) Handle(data []byte) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	msgType, err := r.extractType(data)
	if err != nil {
		r.logger.Warn("failed to extract event type", "error", err)
		r.mu.Lock()
		r.parseErrors++
		r.mu.Unlock()
		return
	}

	switch msgType {
	case "connected", "ping":
		// Acknowledgement and keep-alive; receiving the frame already
		// refreshed the liveness clock.
		return

	case "permissions_updated", "role_updated", "team_updated":
		// Authorization changed server-side for this session. Cached
		// decisions are stale until the profile is re-fetched.
		r.deps.Refresher.SessionInvalidated()
		r.logger.Info("session invalidated", "type", msgType)

	case "maintenance_mode":
		var wire maintenanceWire
		if err := json.Unmarshal(data, &wire); err != nil {
			r.logger.Warn("failed to parse maintenance event", "error", err)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		r.handleMaintenance(wire)

	case "notification_received":
		var wire notificationReceivedWire
		if err := json.Unmarshal(data, &wire); err != nil {
			r.logger.Warn("failed to parse notification event", "error", err)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		if !r.matchesPrincipal(wire.UserID, msgType) {
			return
		}
		r.deps.Notifications.Insert(wire.Notification)

	case "notification_read":
		var wire notificationReadWire
		if err := json.Unmarshal(data, &wire); err != nil {
			r.logger.Warn("failed to parse notification event", "error", err)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		if !r.matchesPrincipal(wire.UserID, msgType) {
			return
		}
		if !r.deps.Notifications.MarkRead(wire.NotificationID) {
			// Not held locally, so the local unread count may have
			// drifted from the server's.
			r.deps.Refresher.UnreadCountStale()
		}

	case "unread_count_updated":
		var wire unreadCountWire
		if err := json.Unmarshal(data, &wire); err != nil {
			r.logger.Warn("failed to parse unread count event", "error", err)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		if !r.matchesPrincipal(wire.UserID, msgType) {
			return
		}
		r.deps.Notifications.SetUnread(wire.Count)

	case "ticket_message":
		var wire ticketMessageWire
		if err := json.Unmarshal(data, &wire); err != nil {
			r.logger.Warn("failed to parse ticket event", "error", err)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		if !r.matchesPrincipal(wire.UserID, msgType) {
			return
		}
		msg := model.TicketMessage{
			TicketID:  wire.TicketID,
			MessageID: wire.MessageID,
			UserID:    wire.UserID,
			Preview:   wire.Preview,
			SentAt:    wire.SentAt,
		}
		if msg.SentAt.IsZero() {
			msg.SentAt = time.Now()
		}
		r.deps.Tickets.Publish(msg)

	default:
		r.mu.Lock()
		r.unknownMessages++
		r.mu.Unlock()
		r.logger.Debug("skipping event type", "type", msgType)
		return
	}

	r.mu.Lock()
	r.routed++
	r.mu.Unlock()
}

// extractType extracts the event type without a full parse.
func (r *router) extractType(data []byte) (string, error) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", err
	}
	return envelope.Type, nil
}

// matchesPrincipal reports whether a fan-out event addressed to userID
// belongs to this client. The transport is a shared tenant channel, so
// events for other principals, and all fan-out events when no local
// principal can be resolved, are dropped.
func (r *router) matchesPrincipal(userID, msgType string) bool {
	principal := r.deps.Session.UserID()
	if principal == "" {
		principal = r.deps.Tokens.Subject()
	}
	if principal == "" || principal != userID {
		r.mu.Lock()
		r.principalDrops++
		r.mu.Unlock()
		r.logger.Debug("dropping event for other principal", "type", msgType, "target", userID)
		return false
	}
	return true
}

// handleMaintenance parks non privileged users on the maintenance route
// while maintenance is active and sends them back when it ends.
func (r *router) handleMaintenance(wire maintenanceWire) {
	if wire.Enabled {
		if r.deps.Session.Superadmin() {
			return
		}
		if r.deps.Nav.Navigate(r.cfg.MaintenancePath) {
			r.logger.Info("maintenance mode entered", "message", wire.Message)
		}
		return
	}
	if r.deps.Nav.CurrentPath() == r.cfg.MaintenancePath {
		if r.deps.Nav.Navigate(r.cfg.DefaultPath) {
			r.logger.Info("maintenance mode ended")
		}
	}
}
