// realtimed is the realtime sync agent for the operations console.
//
// It keeps a single WebSocket session to the console backend, mirrors
// notification, session, and maintenance events into local state, and
// serves a loopback diagnostics API for the console shell to poll.
//
// SIGHUP re-reads the configured token file so credentials can be
// rotated without a restart.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/api"
	"github.com/tridigitals/ispmanagement-realtime/internal/auth"
	"github.com/tridigitals/ispmanagement-realtime/internal/config"
	"github.com/tridigitals/ispmanagement-realtime/internal/connection"
	"github.com/tridigitals/ispmanagement-realtime/internal/logging"
	"github.com/tridigitals/ispmanagement-realtime/internal/refresh"
	"github.com/tridigitals/ispmanagement-realtime/internal/router"
	"github.com/tridigitals/ispmanagement-realtime/internal/status"
	"github.com/tridigitals/ispmanagement-realtime/internal/store"
	"github.com/tridigitals/ispmanagement-realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/realtimed.local.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the configured one is built.
	logger := logging.New(logging.Config{})

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)

	logger.Info("starting realtimed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := auth.NewProvider(cfg.Auth.Token, cfg.Auth.TokenFile, logger)
	if err != nil {
		logger.Error("failed to load bearer token", "error", err)
		os.Exit(1)
	}

	socketURL, err := connection.DeriveSocketURL(cfg.API.BaseURL)
	if err != nil {
		logger.Error("failed to derive socket url", "error", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(
		cfg.API.BaseURL,
		provider.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Local state the router and refresher write into.
	session := store.NewSessionStore()
	notifications := store.NewNotificationStore(0)
	nav := store.NewNavStore()
	tickets := store.NewTicketFeed(0)

	refresher := refresh.New(refresh.Config{
		MinInterval: cfg.Refresh.MinInterval,
		Burst:       cfg.Refresh.Burst,
	}, apiClient, session, notifications, logger)

	events := router.NewRouter(router.DefaultRouterConfig(), router.Deps{
		Session:       session,
		Tokens:        provider,
		Refresher:     refresher,
		Notifications: notifications,
		Nav:           nav,
		Tickets:       tickets,
	}, logger)

	connCfg := connection.DefaultConfig()
	connCfg.URL = socketURL
	connCfg.HeartbeatInterval = cfg.Realtime.HeartbeatInterval
	connCfg.IdleMultiplier = cfg.Realtime.IdleMultiplier
	connCfg.WatchdogInterval = cfg.Realtime.WatchdogInterval
	connCfg.ConnectTimeout = cfg.Realtime.ConnectTimeout
	connCfg.ReconnectBaseDelay = cfg.Realtime.ReconnectBaseDelay
	connCfg.ReconnectMaxDelay = cfg.Realtime.ReconnectMaxDelay

	sess := connection.NewSession(connCfg, provider.Token, connection.Hooks{
		OnMessage: events.Handle,
		OnOpen:    refresher.SocketOpened,
	}, logger)

	statusSrv := status.NewServer(status.Config{
		Addr:           cfg.Status.Addr,
		AllowedOrigins: cfg.Status.AllowedOrigins,
		InstanceID:     cfg.Instance.ID,
	}, status.Deps{
		Connection:    sess,
		Events:        events,
		Session:       session,
		Notifications: notifications,
		Nav:           nav,
		Tickets:       tickets,
	}, logger)

	// SIGINT/SIGTERM stop the agent; SIGHUP rotates the token.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				rotateToken(provider, refresher, sess, logger)
				continue
			}
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
			return
		}
	}()

	if err := refresher.Start(ctx); err != nil {
		logger.Error("failed to start refresher", "error", err)
		os.Exit(1)
	}

	if err := statusSrv.Start(); err != nil {
		logger.Error("failed to start status server", "error", err)
		os.Exit(1)
	}

	if err := sess.Start(ctx); err != nil {
		logger.Error("failed to start realtime session", "error", err)
		os.Exit(1)
	}

	logger.Info("realtimed running",
		"socket_url", socketURL,
		"status_addr", statusSrv.Addr(),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	sess.Stop(shutdownCtx)
	statusSrv.Stop(shutdownCtx)
	refresher.Stop(shutdownCtx)

	logger.Info("realtimed stopped")
}

// rotateToken re-reads the token file and pushes the new token through
// the refresher and the socket session.
func rotateToken(provider *auth.Provider, refresher *refresh.Refresher, sess *connection.Session, logger *slog.Logger) {
	changed, err := provider.Reload()
	if err != nil {
		if errors.Is(err, auth.ErrNoTokenSource) {
			logger.Warn("token reload requested but no token file configured")
			return
		}
		logger.Error("failed to reload token", "error", err)
		return
	}
	if !changed {
		logger.Info("token unchanged after reload")
		return
	}

	logger.Info("token rotated")
	refresher.TokenRotated()
	sess.OnTokenChanged(provider.Token())
}
