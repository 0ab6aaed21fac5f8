// Package refresh reconciles local console state with the REST API.
//
// Realtime events only signal that something changed. The refresher
// fetches the authoritative state in the background, rate limited so a
// burst of signals cannot hammer the API.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tridigitals/ispmanagement-realtime/internal/api"
	"github.com/tridigitals/ispmanagement-realtime/internal/store"
)

// Config holds refresher settings.
type Config struct {
	MinInterval time.Duration // minimum spacing between rate-limited refreshes
	Burst       int           // refreshes allowed to run back to back
	OpTimeout   time.Duration // per-fetch timeout
	TrayLimit   int           // notifications fetched on resync
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval: 10 * time.Second,
		Burst:       1,
		OpTimeout:   15 * time.Second,
		TrayLimit:   store.DefaultNotificationLimit,
	}
}

// Refresher runs background fetches against the console API and writes
// the results into the stores.
type Refresher struct {
	cfg           Config
	rest          *api.Client
	session       *store.SessionStore
	notifications *store.NotificationStore
	limiter       *rate.Limiter
	flights       singleflight.Group
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Refresher. Zero config fields fall back to defaults.
func New(cfg Config, rest *api.Client, session *store.SessionStore, notifications *store.NotificationStore, logger *slog.Logger) *Refresher {
	def := DefaultConfig()
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.Burst < 1 {
		cfg.Burst = def.Burst
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = def.OpTimeout
	}
	if cfg.TrayLimit <= 0 {
		cfg.TrayLimit = def.TrayLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		cfg:           cfg,
		rest:          rest,
		session:       session,
		notifications: notifications,
		limiter:       rate.NewLimiter(rate.Every(cfg.MinInterval), cfg.Burst),
		logger:        logger.With("component", "refresh"),
	}
}

// Start makes the refresher accept triggers.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)
	return nil
}

// Stop cancels in-flight fetches and waits for them to finish.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SessionInvalidated bumps the authorization version immediately and
// schedules a rate-limited profile refetch.
func (r *Refresher) SessionInvalidated() {
	v := r.session.BumpAuthzVersion()
	r.logger.Debug("authorization version bumped", "version", v)
	r.tryRefresh("profile", r.refreshProfile)
}

// SocketOpened schedules a full resync. The socket may have been down
// for a while, so events were missed; the resync is not rate limited
// because reconnects already are.
func (r *Refresher) SocketOpened() {
	r.spawn("resync", r.resync)
}

// TokenRotated drops the cached session, which may belong to a
// different principal now, and resyncs.
func (r *Refresher) TokenRotated() {
	r.session.Clear()
	r.session.BumpAuthzVersion()
	r.spawn("resync", r.resync)
}

// UnreadCountStale schedules a rate-limited refetch of the unread
// count, used when a tray mutation could not be applied locally.
func (r *Refresher) UnreadCountStale() {
	r.tryRefresh("unread count", r.refreshUnread)
}

func (r *Refresher) tryRefresh(name string, fn func(context.Context) error) {
	if !r.limiter.Allow() {
		r.logger.Debug("refresh suppressed by rate limit", "op", name)
		return
	}
	r.spawn(name, fn)
}

// spawn runs a fetch in the background. Concurrent triggers for the
// same operation collapse into a single flight.
func (r *Refresher) spawn(name string, fn func(context.Context) error) {
	if r.ctx == nil {
		r.logger.Warn("refresh trigger before start", "op", name)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		_, err, _ := r.flights.Do(name, func() (any, error) {
			ctx, cancel := context.WithTimeout(r.ctx, r.cfg.OpTimeout)
			defer cancel()
			return nil, fn(ctx)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Error("refresh failed", "op", name, "err", err)
		}
	}()
}

func (r *Refresher) refreshProfile(ctx context.Context) error {
	profile, err := r.rest.GetProfile(ctx)
	if err != nil {
		return err
	}

	r.session.SetProfile(profile)
	r.logger.Info("session profile refreshed",
		"user_id", profile.ID,
		"roles", len(profile.Roles),
		"permissions", len(profile.Permissions),
	)
	return nil
}

func (r *Refresher) refreshUnread(ctx context.Context) error {
	count, err := r.rest.GetUnreadCount(ctx)
	if err != nil {
		return err
	}

	r.notifications.SetUnread(count)
	r.logger.Debug("unread count refreshed", "count", count)
	return nil
}

func (r *Refresher) resync(ctx context.Context) error {
	if err := r.refreshProfile(ctx); err != nil {
		return err
	}

	items, unread, err := r.rest.GetNotifications(ctx, r.cfg.TrayLimit)
	if err != nil {
		return err
	}

	r.notifications.Replace(items, unread)
	r.logger.Info("notification tray resynced", "count", len(items), "unread", unread)
	return nil
}
