// Package retry is the shared "retry with classified errors" primitive used
// by the page fetcher and the media downloader.
package retry

import (
	"context"
	crand "crypto/rand"
	"errors"
	"time"

	"booking_reviews/internal/domain"
)

// Policy bounds one retry schedule.
type Policy struct {
	MaxAttempts int           // total attempts, >= 1
	BaseDelay   time.Duration // first backoff
	Multiplier  float64       // growth per attempt
	MaxDelay    time.Duration // backoff cap
}

// DefaultPolicy mirrors the schedule the source tolerates well in practice.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   200 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    10 * time.Second,
	}
}

// Classifier decides whether an error is worth another attempt. A positive
// wait overrides the backoff schedule (server-provided hints).
type Classifier func(err error) (retryable bool, wait time.Duration)

// Budget is the terminal error constructor: it converts the last retryable
// error into whatever the caller treats as "retry budget exhausted".
type Budget func(attempts int, last error) error

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. Backoff waits respect ctx.
func Do(ctx context.Context, p Policy, classify Classifier, exhausted Budget, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	var last error
	for i := 0; i < p.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := op(ctx)
		if err == nil {
			return nil
		}
		retryable, wait := classify(err)
		if !retryable {
			return err
		}
		last = err
		if i == p.MaxAttempts-1 {
			break
		}
		if wait <= 0 {
			wait = p.Backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return ctx.Err()
		}
	}
	return exhausted(p.MaxAttempts, last)
}

// Classify is the default classifier over the domain error taxonomy:
// transient network failures and throttling signals are retryable, throttling
// with a server wait hint overrides the backoff schedule, everything else
// propagates immediately.
func Classify(err error) (bool, time.Duration) {
	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		return true, rl.RetryAfter
	}
	var tr *domain.TransientError
	if errors.As(err, &tr) {
		return true, 0
	}
	return false, 0
}

// Exhaust converts a spent retry budget into the terminal FetchFailedError.
func Exhaust(attempts int, last error) error {
	return &domain.FetchFailedError{Attempts: attempts, Last: last}
}

// Backoff returns the delay after attempt i (0-based): base grows by the
// multiplier each attempt, capped, with up to +50% jitter to avoid thundering
// herds.
func (p Policy) Backoff(i int) time.Duration {
	d := float64(p.BaseDelay)
	for n := 0; n < i; n++ {
		d *= p.Multiplier
	}
	base := time.Duration(d)
	if p.MaxDelay > 0 && base > p.MaxDelay {
		base = p.MaxDelay
	}
	// concurrency-safe jitter using crypto/rand
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
