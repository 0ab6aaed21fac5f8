package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/tridigitals/ispmanagement-realtime/internal/version"
)

// APIError is a non-2xx response from the console API. Code carries the
// machine-readable error code when the body includes one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("console api error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("console api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may be reattempted. Server
// faults and throttling are retryable; client errors are not.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// errorBody is the console's error envelope.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// get fetches path with retries and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// do runs one logical request, reattempting retryable failures with
// doubled, jittered waits.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryWait(c.retryBase, attempt)
			c.logger.Debug("retrying request",
				"method", method,
				"path", path,
				"attempt", attempt,
				"wait", wait,
			)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		}

		body, err := c.send(ctx, method, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// send performs a single HTTP round trip.
func (c *Client) send(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ispmanagement-realtime/"+version.Version)
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, body)
	}
	return body, nil
}

// decodeError builds an APIError from a failed response, preferring the
// message and code from the console's error envelope.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			apiErr.Message = eb.Error
		}
		apiErr.Code = eb.Code
	}
	return apiErr
}

// retryWait doubles the step per attempt and jitters it across
// [step/2, step*3/2).
func retryWait(base time.Duration, attempt int) time.Duration {
	step := base << (attempt - 1)
	return step/2 + time.Duration(rand.Int63n(int64(step)))
}

// sleepCtx waits for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
