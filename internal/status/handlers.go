package status

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/connection"
	"github.com/tridigitals/ispmanagement-realtime/internal/router"
	"github.com/tridigitals/ispmanagement-realtime/internal/version"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type statusResponse struct {
	Status     string              `json:"status"`
	Timestamp  string              `json:"timestamp"`
	InstanceID string              `json:"instance_id,omitempty"`
	Version    string              `json:"version"`
	Uptime     string              `json:"uptime"`
	Goroutines int                 `json:"goroutines"`
	Connection connection.Snapshot `json:"connection"`
	Events     router.RouterStats  `json:"events"`
	Session    sessionStatus       `json:"session"`
	Tray       trayStatus          `json:"notifications"`
	Route      routeStatus         `json:"route"`
	Tickets    ticketStatus        `json:"tickets"`
}

type sessionStatus struct {
	SignedIn     bool   `json:"signed_in"`
	UserID       string `json:"user_id,omitempty"`
	Superadmin   bool   `json:"superadmin"`
	AuthzVersion uint64 `json:"authz_version"`
}

type trayStatus struct {
	Count  int `json:"count"`
	Unread int `json:"unread"`
}

type routeStatus struct {
	Current   string    `json:"current"`
	ChangedAt time.Time `json:"changed_at"`
}

type ticketStatus struct {
	Subscribers int    `json:"subscribers"`
	Dropped     uint64 `json:"dropped"`
}

// handleHealthz answers liveness probes.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus reports the full realtime session state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	profile := s.deps.Session.Profile()

	resp := statusResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		InstanceID: s.cfg.InstanceID,
		Version:    version.String(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Connection: s.deps.Connection.Snapshot(),
		Events:     s.deps.Events.Stats(),
		Session: sessionStatus{
			SignedIn:     profile != nil,
			Superadmin:   s.deps.Session.Superadmin(),
			AuthzVersion: s.deps.Session.AuthzVersion(),
		},
		Tray: trayStatus{
			Count:  s.deps.Notifications.Len(),
			Unread: s.deps.Notifications.Unread(),
		},
		Route: routeStatus{
			Current:   s.deps.Nav.CurrentPath(),
			ChangedAt: s.deps.Nav.ChangedAt(),
		},
		Tickets: ticketStatus{
			Subscribers: s.deps.Tickets.Subscribers(),
			Dropped:     s.deps.Tickets.Dropped(),
		},
	}
	if profile != nil {
		resp.Session.UserID = profile.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
