package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrSocketURLRequired = errors.New("socket url required")
	ErrStaleConnection   = errors.New("connection stale (no inbound traffic)")
)

// State is the lifecycle state of the realtime socket.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Config configures a Session.
type Config struct {
	URL                string        // wss endpoint, see DeriveSocketURL
	HeartbeatInterval  time.Duration // keep-alive cadence while open
	IdleMultiplier     int           // idle threshold = multiplier * heartbeat interval
	WatchdogInterval   time.Duration // stuck-state sweep cadence
	ConnectTimeout     time.Duration // max time a handshake may stay in Connecting
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	WriteTimeout       time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval:  25 * time.Second,
		IdleMultiplier:     3,
		WatchdogInterval:   2500 * time.Millisecond,
		ConnectTimeout:     10 * time.Second,
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		WriteTimeout:       5 * time.Second,
	}
}

// Hooks are the session's callbacks into the rest of the console.
// OnMessage runs on the read goroutine in frame order; OnOpen runs once
// per successful connect. Nil hooks are no-ops.
type Hooks struct {
	OnMessage func(data []byte)
	OnOpen    func()
}

// Snapshot is a point-in-time view of the session for status reporting.
type Snapshot struct {
	State            string    `json:"state"`
	URL              string    `json:"url"`
	Generation       uint64    `json:"generation"`
	Attempt          int       `json:"attempt"`
	UserClosed       bool      `json:"user_closed"`
	ReconnectPending bool      `json:"reconnect_pending"`
	ConnectedAt      time.Time `json:"connected_at"`
	LastMessageAt    time.Time `json:"last_message_at"`
	TotalOpens       uint64    `json:"total_opens"`
	TotalDrops       uint64    `json:"total_drops"`
	LastDropReason   string    `json:"last_drop_reason,omitempty"`
}
