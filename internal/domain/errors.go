package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the source does not know the hotel identifier.
	ErrNotFound = errors.New("booking: not found")
	// ErrInvalidReference means a user-supplied hotel reference could not be
	// resolved to a canonical identifier.
	ErrInvalidReference = errors.New("booking: invalid hotel reference")
	// ErrMalformedResponse means the source answered with a payload we could
	// not parse. Never retried.
	ErrMalformedResponse = errors.New("booking: malformed response")
	// ErrRejected means the source refused the request outright (auth walls,
	// anti-bot blocks, unexpected 4xx). Never retried.
	ErrRejected = errors.New("booking: request rejected")
)

// TransientError wraps a network-level failure (connection reset, timeout,
// transient 5xx) that is safe to retry.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string { return "transient: " + e.Cause.Error() }
func (e *TransientError) Unwrap() error { return e.Cause }

// RateLimitedError is an explicit throttling signal from the source.
// RetryAfter is zero when the source gave no wait hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s)", e.RetryAfter)
	}
	return "rate limited"
}

// FetchFailedError is the terminal form of a retried error: the retry budget
// ran out. Last carries the final underlying cause.
type FetchFailedError struct {
	Attempts int
	Last     error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Last)
}
func (e *FetchFailedError) Unwrap() error { return e.Last }

// ConfigError rejects an out-of-bound filter or concurrency value before any
// work starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Field + ": " + e.Reason }
