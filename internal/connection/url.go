package connection

import (
	"fmt"
	"net/url"
	"strings"
)

// DeriveSocketURL maps the configured HTTP(S) API base to the realtime
// endpoint: the scheme becomes ws(s) and the fixed /ws path is appended
// after any base path, normalizing a trailing slash.
func DeriveSocketURL(base string) (string, error) {
	if base == "" {
		return "", ErrSocketURLRequired
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("api base url scheme must be http or https, got %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
