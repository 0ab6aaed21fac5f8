// streamwatch connects to the console event stream and prints routed
// events to stdout.
// Usage: go run ./cmd/streamwatch --config configs/realtimed.local.yaml
//
// A bearer token must be configured via auth.token or auth.token_file;
// ${CONSOLE_TOKEN} expansion works in both fields.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/api"
	"github.com/tridigitals/ispmanagement-realtime/internal/auth"
	"github.com/tridigitals/ispmanagement-realtime/internal/config"
	"github.com/tridigitals/ispmanagement-realtime/internal/connection"
	"github.com/tridigitals/ispmanagement-realtime/internal/model"
	"github.com/tridigitals/ispmanagement-realtime/internal/refresh"
	"github.com/tridigitals/ispmanagement-realtime/internal/router"
	"github.com/tridigitals/ispmanagement-realtime/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/realtimed.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print raw frames and full event JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	provider, err := auth.NewProvider(cfg.Auth.Token, cfg.Auth.TokenFile, logger)
	if err != nil {
		logger.Error("failed to load bearer token", "error", err)
		logger.Info("set auth.token in the config or export CONSOLE_TOKEN")
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
	)

	session := store.NewSessionStore()
	notifications := store.NewNotificationStore(0)
	nav := store.NewNavStore()
	tickets := store.NewTicketFeed(0)

	refresher := refresh.New(refresh.Config{
		MinInterval: cfg.Refresh.MinInterval,
		Burst:       cfg.Refresh.Burst,
	}, apiClient, session, notifications, logger)

	// Route into the real stores, echoing each effect to the console.
	events := router.NewRouter(router.DefaultRouterConfig(), router.Deps{
		Session:       session,
		Tokens:        provider,
		Refresher:     refresher,
		Notifications: &trayPrinter{NotificationStore: notifications, verbose: *verbose},
		Nav:           &routePrinter{NavStore: nav},
		Tickets:       tickets,
	}, logger)

	onMessage := events.Handle
	if *verbose {
		onMessage = func(frame []byte) {
			fmt.Printf("[FRAME] %s\n", frame)
			events.Handle(frame)
		}
	}

	connCfg := connection.DefaultConfig()
	connCfg.URL = socketURL
	connCfg.HeartbeatInterval = cfg.Realtime.HeartbeatInterval
	connCfg.IdleMultiplier = cfg.Realtime.IdleMultiplier
	connCfg.WatchdogInterval = cfg.Realtime.WatchdogInterval
	connCfg.ConnectTimeout = cfg.Realtime.ConnectTimeout
	connCfg.ReconnectBaseDelay = cfg.Realtime.ReconnectBaseDelay
	connCfg.ReconnectMaxDelay = cfg.Realtime.ReconnectMaxDelay

	sess := connection.NewSession(connCfg, provider.Token, connection.Hooks{
		OnMessage: onMessage,
		OnOpen:    refresher.SocketOpened,
	}, logger)

	if err := refresher.Start(ctx); err != nil {
		logger.Error("failed to start refresher", "error", err)
		os.Exit(1)
	}

	// Console printer for the ticket feed
	go printTickets(ctx, tickets, *verbose)

	logger.Info("connecting", "socket_url", socketURL)
	if err := sess.Start(ctx); err != nil {
		logger.Error("failed to start realtime session", "error", err)
		os.Exit(1)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := sess.Snapshot()
				routerStats := events.Stats()
				logger.Info("stats",
					"conn_state", snap.State,
					"conn_opens", snap.TotalOpens,
					"conn_drops", snap.TotalDrops,
					"router_received", routerStats.EventsReceived,
					"router_routed", routerStats.EventsRouted,
					"parse_errors", routerStats.ParseErrors,
					"principal_drops", routerStats.PrincipalDrops,
					"tray_count", notifications.Len(),
					"tray_unread", notifications.Unread(),
				)
			}
		}
	}()

	logger.Info("watching console events - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	sess.Stop(shutdownCtx)
	refresher.Stop(shutdownCtx)

	logger.Info("shutdown complete")
}

// trayPrinter forwards to the notification store and echoes each
// mutation to stdout.
type trayPrinter struct {
	*store.NotificationStore
	verbose bool
}

func (p *trayPrinter) Insert(n model.Notification) {
	p.NotificationStore.Insert(n)
	if p.verbose {
		data, _ := json.MarshalIndent(n, "", "  ")
		fmt.Printf("[NOTIFICATION] %s\n", data)
		return
	}
	fmt.Printf("[NOTIFICATION] id=%s kind=%s title=%q\n", n.ID, n.Kind, n.Title)
}

func (p *trayPrinter) MarkRead(id string) bool {
	hit := p.NotificationStore.MarkRead(id)
	fmt.Printf("[NOTIFICATION READ] id=%s known=%v\n", id, hit)
	return hit
}

func (p *trayPrinter) SetUnread(count int) {
	p.NotificationStore.SetUnread(count)
	fmt.Printf("[UNREAD] count=%d\n", count)
}

// routePrinter echoes route changes decided by the router.
type routePrinter struct {
	*store.NavStore
}

func (p *routePrinter) Navigate(path string) bool {
	changed := p.NavStore.Navigate(path)
	if changed {
		fmt.Printf("[NAVIGATE] path=%s\n", path)
	}
	return changed
}

func printTickets(ctx context.Context, feed *store.TicketFeed, verbose bool) {
	ch, cancel := feed.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			if verbose {
				data, _ := json.MarshalIndent(msg, "", "  ")
				fmt.Printf("[TICKET] %s\n", data)
				continue
			}
			fmt.Printf("[TICKET] ticket=%d message=%s user=%s preview=%q\n",
				msg.TicketID, msg.MessageID, msg.UserID, msg.Preview)
		}
	}
}
