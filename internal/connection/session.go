package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session owns the single realtime socket. At most one socket is open
// or connecting at any time; every public entry point is an idempotent
// nudge against that invariant.
type Session struct {
	cfg     Config
	tokenFn func() string
	hooks   Hooks
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	gen            uint64
	attempt        int
	userClosed     bool
	reconnectTimer *time.Timer
	dialCancel     context.CancelFunc
	connectStart   time.Time
	connectedAt    time.Time
	lastMessageAt  time.Time
	totalOpens     uint64
	totalDrops     uint64
	lastDropReason string
}

// NewSession creates a Session. tokenFn supplies the current bearer
// token; an empty token defers connecting until one appears.
func NewSession(cfg Config, tokenFn func() string, hooks Hooks, logger *slog.Logger) *Session {
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}
	if hooks.OnMessage == nil {
		hooks.OnMessage = func([]byte) {}
	}
	if hooks.OnOpen == nil {
		hooks.OnOpen = func() {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		cfg:     cfg,
		tokenFn: tokenFn,
		hooks:   hooks,
		logger:  logger.With("component", "realtime"),
	}
}

// Start launches the liveness timers and makes the first connection
// attempt.
func (s *Session) Start(ctx context.Context) error {
	if s.cfg.URL == "" {
		return ErrSocketURLRequired
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.heartbeatLoop(s.ctx)
	go s.watchdogLoop(s.ctx)

	s.logger.Info("realtime session started",
		"url", s.cfg.URL,
		"heartbeat", s.cfg.HeartbeatInterval,
		"watchdog", s.cfg.WatchdogInterval,
	)

	s.Connect()
	return nil
}

// Stop closes the socket and tears the session down.
func (s *Session) Stop(ctx context.Context) error {
	s.Disconnect()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("realtime session stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect asks the session to establish the socket. It clears any
// earlier user close, cancels a pending backoff timer, and dials
// immediately. A no-op while a socket is open or connecting.
func (s *Session) Connect() {
	s.mu.Lock()
	s.userClosed = false
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.mu.Unlock()

	s.tryConnect("connect")
}

// Disconnect closes the socket with a normal closure and suppresses all
// reconnection until the next Connect or token change. Idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.userClosed = true
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.dialCancel != nil {
		s.dialCancel()
		s.dialCancel = nil
	}
	if s.state == StateClosing {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	if conn == nil {
		s.state = StateDisconnected
		s.mu.Unlock()
		return
	}
	s.state = StateClosing
	s.connectedAt = time.Time{}
	s.mu.Unlock()

	deadline := time.Now().Add(s.cfg.WriteTimeout)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	conn.Close()

	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()

	s.logger.Info("socket closed by user")
}

// OnTokenChanged is called by the host when the bearer token changes.
// An empty token is a logout and closes the socket; a new token revives
// the session.
func (s *Session) OnTokenChanged(token string) {
	if token == "" {
		s.Disconnect()
		return
	}
	s.Connect()
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a point-in-time view for status reporting.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:            s.state.String(),
		URL:              s.cfg.URL,
		Generation:       s.gen,
		Attempt:          s.attempt,
		UserClosed:       s.userClosed,
		ReconnectPending: s.reconnectTimer != nil,
		ConnectedAt:      s.connectedAt,
		LastMessageAt:    s.lastMessageAt,
		TotalOpens:       s.totalOpens,
		TotalDrops:       s.totalDrops,
		LastDropReason:   s.lastDropReason,
	}
}

// tryConnect dials if the session is disconnected, nothing is already
// scheduled to reconnect, and a token is available.
func (s *Session) tryConnect(trigger string) {
	s.mu.Lock()
	if s.ctx == nil || s.userClosed || s.state != StateDisconnected || s.reconnectTimer != nil {
		s.mu.Unlock()
		return
	}
	if s.tokenFn() == "" {
		s.mu.Unlock()
		s.logger.Debug("connect deferred, no token", "trigger", trigger)
		return
	}

	s.state = StateConnecting
	s.connectStart = time.Now()
	s.gen++
	gen := s.gen
	dialCtx, cancel := context.WithCancel(s.ctx)
	s.dialCancel = cancel
	s.mu.Unlock()

	s.logger.Info("connecting", "gen", gen, "trigger", trigger)

	s.wg.Add(1)
	go s.dial(dialCtx, gen)
}

// dial performs the WebSocket handshake for generation gen. The
// handshake has no deadline of its own; the watchdog cancels dialCtx
// when Connecting outlives ConnectTimeout.
func (s *Session) dial(ctx context.Context, gen uint64) {
	defer s.wg.Done()

	header := http.Header{}
	if token := s.tokenFn(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)

	s.mu.Lock()
	if gen != s.gen || s.state != StateConnecting || s.userClosed {
		s.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	s.dialCancel = nil

	if err != nil {
		s.state = StateDisconnected
		s.scheduleReconnectLocked()
		attempt := s.attempt
		s.mu.Unlock()
		s.logger.Warn("dial failed", "gen", gen, "attempt", attempt, "err", err)
		return
	}

	s.conn = conn
	s.state = StateOpen
	s.attempt = 0
	now := time.Now()
	s.connectedAt = now
	s.lastMessageAt = now
	s.totalOpens++

	conn.SetPingHandler(func(data string) error {
		s.touch(gen)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(s.cfg.WriteTimeout))
	})
	conn.SetPongHandler(func(string) error {
		s.touch(gen)
		return nil
	})

	s.wg.Add(1)
	go s.readLoop(conn, gen)
	s.mu.Unlock()

	s.logger.Info("socket open", "gen", gen)
	s.hooks.OnOpen()
}

// readLoop delivers inbound frames in order until the socket dies.
func (s *Session) readLoop(conn *websocket.Conn, gen uint64) {
	defer s.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.drop(gen, closeReason(err), err)
			return
		}
		s.touch(gen)
		s.hooks.OnMessage(data)
	}
}

// touch records inbound activity for the current generation.
func (s *Session) touch(gen uint64) {
	s.mu.Lock()
	if gen == s.gen {
		s.lastMessageAt = time.Now()
	}
	s.mu.Unlock()
}

// drop handles the loss of an open socket: close it, record why, and
// schedule the reconnect. Late calls for superseded generations are
// ignored.
func (s *Session) drop(gen uint64, reason string, err error) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateOpen {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.connectedAt = time.Time{}
	s.totalDrops++
	s.lastDropReason = reason
	s.scheduleReconnectLocked()
	attempt := s.attempt
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.logger.Warn("socket dropped", "gen", gen, "reason", reason, "attempt", attempt, "err", err)
}

// scheduleReconnectLocked arms the backoff timer, replacing any pending
// one so attempts never stack. Caller holds s.mu.
func (s *Session) scheduleReconnectLocked() {
	s.attempt++
	delay := reconnectDelay(s.attempt, s.cfg.ReconnectBaseDelay, s.cfg.ReconnectMaxDelay)
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
	}
	s.reconnectTimer = time.AfterFunc(delay, s.reconnectDue)
	s.logger.Info("reconnect scheduled", "attempt", s.attempt, "delay", delay)
}

func (s *Session) reconnectDue() {
	s.mu.Lock()
	s.reconnectTimer = nil
	s.mu.Unlock()
	s.tryConnect("backoff timer")
}

func (s *Session) heartbeatLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.heartbeat()
		}
	}
}

// heartbeat probes an open socket and revives a closed one. The
// keep-alive is a plain text frame the server may ignore; what matters
// is that a dead link surfaces as a write error or as silence past the
// idle threshold.
func (s *Session) heartbeat() {
	s.mu.Lock()
	state := s.state
	conn := s.conn
	gen := s.gen
	last := s.lastMessageAt
	s.mu.Unlock()

	if state != StateOpen {
		s.tryConnect("heartbeat")
		return
	}

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		s.drop(gen, "keepalive write failed", err)
		return
	}

	idle := time.Since(last)
	if threshold := time.Duration(s.cfg.IdleMultiplier) * s.cfg.HeartbeatInterval; idle > threshold {
		s.logger.Warn("no inbound traffic, forcing close", "idle", idle, "threshold", threshold)
		s.drop(gen, "stale", ErrStaleConnection)
	}
}

func (s *Session) watchdogLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.watchdog()
		}
	}
}

// watchdog unsticks handshakes that hang in Connecting and revives a
// disconnected session that has nothing else scheduled, independently
// of socket event delivery.
func (s *Session) watchdog() {
	s.mu.Lock()
	state := s.state
	started := s.connectStart
	cancel := s.dialCancel
	s.mu.Unlock()

	switch state {
	case StateConnecting:
		if elapsed := time.Since(started); elapsed > s.cfg.ConnectTimeout && cancel != nil {
			s.logger.Warn("handshake stuck, cancelling dial", "elapsed", elapsed)
			cancel()
		}
	case StateDisconnected:
		s.tryConnect("watchdog")
	}
}

func closeReason(err error) string {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return fmt.Sprintf("close code %d", ce.Code)
	}
	return "read error"
}
