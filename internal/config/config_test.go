package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: console-agent-1
api:
  base_url: https://console.example.net/api
auth:
  token_file: /run/secrets/console-token
realtime:
  heartbeat_interval: 10s
status:
  addr: 127.0.0.1:9990
`
	path := writeConfigFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "console-agent-1" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "console-agent-1")
	}
	if cfg.API.BaseURL != "https://console.example.net/api" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://console.example.net/api")
	}
	if cfg.Auth.TokenFile != "/run/secrets/console-token" {
		t.Errorf("Auth.TokenFile = %q, want %q", cfg.Auth.TokenFile, "/run/secrets/console-token")
	}
	if cfg.Realtime.HeartbeatInterval != 10*time.Second {
		t.Errorf("Realtime.HeartbeatInterval = %v, want %v", cfg.Realtime.HeartbeatInterval, 10*time.Second)
	}
	if cfg.Status.Addr != "127.0.0.1:9990" {
		t.Errorf("Status.Addr = %q, want %q", cfg.Status.Addr, "127.0.0.1:9990")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_CONSOLE_TOKEN", "tok-secret-123")

	yaml := `
api:
  base_url: https://console.example.net/api
auth:
  token: ${TEST_CONSOLE_TOKEN}
`
	path := writeConfigFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.Token != "tok-secret-123" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "tok-secret-123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
api:
  base_url: https://console.example.net/api
`
	path := writeConfigFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Instance.ID == "" {
		t.Error("Instance.ID not generated")
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Realtime.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("Realtime.HeartbeatInterval = %v, want default %v", cfg.Realtime.HeartbeatInterval, DefaultHeartbeatInterval)
	}
	if cfg.Realtime.IdleMultiplier != DefaultIdleMultiplier {
		t.Errorf("Realtime.IdleMultiplier = %d, want default %d", cfg.Realtime.IdleMultiplier, DefaultIdleMultiplier)
	}
	if cfg.Realtime.WatchdogInterval != DefaultWatchdogInterval {
		t.Errorf("Realtime.WatchdogInterval = %v, want default %v", cfg.Realtime.WatchdogInterval, DefaultWatchdogInterval)
	}
	if cfg.Realtime.ReconnectMaxDelay != DefaultReconnectMaxDelay {
		t.Errorf("Realtime.ReconnectMaxDelay = %v, want default %v", cfg.Realtime.ReconnectMaxDelay, DefaultReconnectMaxDelay)
	}
	if cfg.Status.Addr != DefaultStatusAddr {
		t.Errorf("Status.Addr = %q, want default %q", cfg.Status.Addr, DefaultStatusAddr)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := func() AgentConfig {
		cfg := AgentConfig{}
		cfg.API.BaseURL = "https://console.example.net/api"
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr string
	}{
		{
			name:    "missing base url",
			mutate:  func(c *AgentConfig) { c.API.BaseURL = "" },
			wantErr: "api.base_url is required",
		},
		{
			name:    "bad base url scheme",
			mutate:  func(c *AgentConfig) { c.API.BaseURL = "ftp://console.example.net" },
			wantErr: `api.base_url scheme must be http or https, got "ftp"`,
		},
		{
			name:    "idle multiplier too small",
			mutate:  func(c *AgentConfig) { c.Realtime.IdleMultiplier = 1 },
			wantErr: "realtime.idle_multiplier must be >= 2, got 1",
		},
		{
			name:    "zero heartbeat",
			mutate:  func(c *AgentConfig) { c.Realtime.HeartbeatInterval = -time.Second },
			wantErr: "realtime.heartbeat_interval must be positive",
		},
		{
			name: "max delay below base delay",
			mutate: func(c *AgentConfig) {
				c.Realtime.ReconnectBaseDelay = 5 * time.Second
				c.Realtime.ReconnectMaxDelay = 2 * time.Second
			},
			wantErr: "realtime.reconnect_max_delay (2s) cannot be less than reconnect_base_delay (5s)",
		},
		{
			name:    "bad log level",
			mutate:  func(c *AgentConfig) { c.Logging.Level = "verbose" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "verbose"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *AgentConfig) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() = %v, want nil", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("Validate() = nil, want %q", tt.wantErr)
			case tt.wantErr != "" && err.Error() != tt.wantErr:
				t.Errorf("Validate() = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func writeConfigFile(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}
