package connection

import (
	"math/rand"
	"time"
)

// maxBackoffShift caps the exponent so the doubling stops growing well
// before the delay cap makes it moot.
const maxBackoffShift = 10

// baseBackoff returns the deterministic delay for a reconnect attempt:
// base doubled per attempt, clamped to max.
func baseBackoff(attempt int, base, max time.Duration) time.Duration {
	shift := min(attempt, maxBackoffShift)
	d := base << shift
	if d > max || d <= 0 {
		d = max
	}
	return d
}

// reconnectDelay adds jitter in [0, base/2) on top of the deterministic
// delay so a fleet of clients does not reconnect in lockstep.
func reconnectDelay(attempt int, base, max time.Duration) time.Duration {
	d := baseBackoff(attempt, base, max)
	if half := base / 2; half > 0 {
		d += time.Duration(rand.Int63n(int64(half)))
	}
	return d
}
