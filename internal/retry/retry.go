// Package retry runs a single logical operation with bounded retries and
// exponential backoff, masking transient connectivity failures.
//
// Only errors on the allow-list in IsRetryable are retried. Everything else
// is returned after the first attempt. When attempts run out the last error
// is returned unchanged so callers can classify it.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/zjrosen/deskctl/internal/log"
)

// Defaults for Policy.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 250 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// Policy bounds one retry sequence.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt. Attempt n waits
	// BaseDelay * 2^(n-1) before attempt n+1.
	BaseDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
	// OnRetry, if set, is called before each wait with the failed attempt
	// number, its error and the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultPolicy returns 3 attempts starting at 250ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay << (p.MaxAttempts - 1)
	}
	return p
}

// Do runs op until it succeeds, fails permanently, or MaxAttempts is reached.
// op receives the 1-based attempt number.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	p = p.normalized()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.MaxDelay

	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Warn(log.CatTransport, "transient failure, retrying",
				"attempt", attempt, "max_attempts", p.MaxAttempts, "delay", d, "error", err)
			if p.OnRetry != nil {
				p.OnRetry(attempt, err, d)
			}
		}),
	)
	// backoff leaves the wrapper on a permanent error from the last allowed try.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return v, err
}

// transientError marks an error as retryable regardless of its type.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so IsRetryable accepts it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Transientf is Transient(fmt.Errorf(format, args...)).
func Transientf(format string, args ...any) error {
	return Transient(fmt.Errorf(format, args...))
}

// temporary is implemented by errors that know whether they are transient,
// such as HTTP status errors for 502/503/504.
type temporary interface {
	Temporary() bool
}

// IsRetryable reports whether err belongs to the retry allow-list:
// connection refused/reset/unreachable, timeouts, explicitly transient errors
// and errors that report themselves as temporary. Cancellation never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

// IsUnreachable reports whether err means the remote end could not be reached.
func IsUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// IsTimeout reports whether err is an operation or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
