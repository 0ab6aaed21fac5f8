// Package config defines the agent configuration schema and YAML loading.
//
// Configuration files support environment variable substitution using
// ${VAR} syntax, expanded before parsing.
package config

import "time"

// AgentConfig is the root configuration for the realtime agent.
type AgentConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Status   StatusConfig   `yaml:"status"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this agent instance in logs and status output.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds REST API connection settings. The realtime socket URL is
// derived from BaseURL, so only one endpoint needs to be configured.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// AuthConfig holds bearer token settings. Token takes precedence over
// TokenFile when both are set. TokenFile is re-read on SIGHUP.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

// RealtimeConfig tunes the socket session: keep-alive cadence, staleness
// detection, and reconnect backoff.
type RealtimeConfig struct {
	HeartbeatInterval  time.Duration `yaml:"heartbeat_interval"`
	IdleMultiplier     int           `yaml:"idle_multiplier"`
	WatchdogInterval   time.Duration `yaml:"watchdog_interval"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// RefreshConfig bounds how often session refreshes may hit the REST API.
type RefreshConfig struct {
	MinInterval time.Duration `yaml:"min_interval"`
	Burst       int           `yaml:"burst"`
}

// StatusConfig configures the local status HTTP server.
type StatusConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
