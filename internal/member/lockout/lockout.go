// Package lockout throttles failed logins per identifier. A sliding window
// of failures is kept per key; once the threshold is reached within the
// window, further logins are refused until the oldest failure ages out.
package lockout

import "context"

// Store tracks login failures. Implementations: Memory (single process)
// and Redis (shared across instances).
type Store interface {
	// RecordFailure registers one failed attempt and returns the number of
	// failures currently inside the window.
	RecordFailure(ctx context.Context, key string) (int, error)
	// Failures returns the number of failures inside the window.
	Failures(ctx context.Context, key string) (int, error)
	// Reset clears the failure history after a successful login.
	Reset(ctx context.Context, key string) error
}
