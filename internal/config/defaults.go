package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultHeartbeatInterval  = 25 * time.Second
	DefaultIdleMultiplier     = 3
	DefaultWatchdogInterval   = 2500 * time.Millisecond
	DefaultConnectTimeout     = 10 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultRefreshMinInterval = 10 * time.Second
	DefaultRefreshBurst       = 1
	DefaultStatusAddr         = "127.0.0.1:8990"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

func (c *AgentConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = uuid.NewString()
	}

	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Realtime.IdleMultiplier == 0 {
		c.Realtime.IdleMultiplier = DefaultIdleMultiplier
	}
	if c.Realtime.WatchdogInterval == 0 {
		c.Realtime.WatchdogInterval = DefaultWatchdogInterval
	}
	if c.Realtime.ConnectTimeout == 0 {
		c.Realtime.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Realtime.ReconnectBaseDelay == 0 {
		c.Realtime.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Realtime.ReconnectMaxDelay == 0 {
		c.Realtime.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if c.Refresh.MinInterval == 0 {
		c.Refresh.MinInterval = DefaultRefreshMinInterval
	}
	if c.Refresh.Burst == 0 {
		c.Refresh.Burst = DefaultRefreshBurst
	}

	if c.Status.Addr == "" {
		c.Status.Addr = DefaultStatusAddr
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
