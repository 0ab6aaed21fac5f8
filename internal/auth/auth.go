// Package auth provides the bearer token used for REST calls and the
// realtime socket handshake.
//
// Tokens come from either a literal config value or a file on disk. File
// backed tokens can be re-read at runtime so operators can rotate
// credentials without restarting the agent.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoTokenSource is returned by Reload when the provider was built from
// a literal token and has no file to re-read.
var ErrNoTokenSource = errors.New("no token file configured")

// Provider holds the current bearer token and resolves the principal it
// belongs to. Safe for concurrent use.
type Provider struct {
	mu        sync.RWMutex
	token     string
	tokenFile string
	logger    *slog.Logger
}

// NewProvider builds a token provider. A literal token takes precedence
// over a token file. Starting with no token at all is allowed; callers
// get an empty string until a Reload picks one up.
func NewProvider(token, tokenFile string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		token:     token,
		tokenFile: tokenFile,
		logger:    logger.With("component", "auth"),
	}

	if token == "" && tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read token file: %w", err)
		}
		p.token = strings.TrimSpace(string(data))
	}

	if p.token == "" {
		p.logger.Warn("starting without a bearer token")
	}

	return p, nil
}

// Token returns the current bearer token, or "" when none is configured.
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Reload re-reads the token file and reports whether the token changed.
// Providers built from a literal token have nothing to reload.
func (p *Provider) Reload() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokenFile == "" {
		return false, ErrNoTokenSource
	}

	data, err := os.ReadFile(p.tokenFile)
	if err != nil {
		return false, fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == p.token {
		return false, nil
	}

	p.token = token
	p.logger.Info("bearer token reloaded", "file", p.tokenFile)
	return true, nil
}

// Subject returns the sub claim of the current token without verifying
// its signature. Returns "" when there is no token or it does not parse
// as a JWT. Verification is the server's job; the claim is only used to
// match fan-out events against this principal.
func (p *Provider) Subject() string {
	return subjectOf(p.Token())
}

func subjectOf(token string) string {
	if token == "" {
		return ""
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
