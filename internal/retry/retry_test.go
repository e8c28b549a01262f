package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func connRefused() error {
	return &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}
}

func fastPolicy(attempts int) (Policy, *[]time.Duration) {
	var mu sync.Mutex
	delays := []time.Duration{}
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    50 * time.Millisecond,
		OnRetry: func(_ int, _ error, d time.Duration) {
			mu.Lock()
			delays = append(delays, d)
			mu.Unlock()
		},
	}, &delays
}

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	policy, delays := fastPolicy(3)

	calls := 0
	got, err := Do(context.Background(), policy, func(_ context.Context, attempt int) (string, error) {
		calls++
		require.Equal(t, calls, attempt)
		if attempt < 3 {
			return "", connRefused()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, 3, calls)
	require.Len(t, *delays, 2)
	require.LessOrEqual(t, (*delays)[0], (*delays)[1], "delays must not decrease")
	require.Equal(t, time.Millisecond, (*delays)[0])
	require.Equal(t, 2*time.Millisecond, (*delays)[1])
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	policy, _ := fastPolicy(3)

	calls := 0
	var last error
	_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
		calls++
		last = Transientf("attempt %d timed out", calls)
		return 0, last
	})

	require.Error(t, err)
	require.Same(t, last, err)
	require.Equal(t, 3, calls)
}

func TestDo_ExhaustionHonoursConfiguredAttempts(t *testing.T) {
	policy, _ := fastPolicy(5)

	calls := 0
	_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
		calls++
		return 0, connRefused()
	})

	require.True(t, errors.Is(err, syscall.ECONNREFUSED))
	require.Equal(t, 5, calls)
}

func TestDo_NonRetryableShortCircuits(t *testing.T) {
	policy, delays := fastPolicy(3)
	permanent := errors.New("invalid command")

	calls := 0
	_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
		calls++
		return 0, permanent
	})

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
	require.Empty(t, *delays)
}

func TestDo_PermanentErrorOnLastAttemptIsUnwrapped(t *testing.T) {
	permanent := errors.New("invalid auth token")

	t.Run("after a transient failure", func(t *testing.T) {
		policy, _ := fastPolicy(2)
		calls := 0
		_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
			calls++
			if calls == 1 {
				return 0, connRefused()
			}
			return 0, permanent
		})
		require.Same(t, permanent, err)
		require.Equal(t, 2, calls)
	})

	t.Run("single attempt", func(t *testing.T) {
		policy, _ := fastPolicy(1)
		_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
			return 0, permanent
		})
		require.Same(t, permanent, err)
	})
}

func TestDo_CancelledContextStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, policy, func(context.Context, int) (int, error) {
			calls++
			return 0, connRefused()
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	case <-time.After(time.Second):
		require.Fail(t, "Do did not return after cancellation")
	}
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) Temporary() bool { return e.code >= 502 && e.code <= 504 }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", connRefused(), true},
		{"wrapped reset", fmt.Errorf("post: %w", syscall.ECONNRESET), true},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"transient marker", Transient(errors.New("x")), true},
		{"gateway timeout", statusErr{504}, true},
		{"bad request", statusErr{400}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsUnreachableAndTimeout(t *testing.T) {
	require.True(t, IsUnreachable(connRefused()))
	require.False(t, IsUnreachable(errors.New("x")))
	require.True(t, IsTimeout(fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
	require.False(t, IsTimeout(connRefused()))
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{}.normalized()
	require.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	require.Equal(t, DefaultBaseDelay, p.BaseDelay)
	require.GreaterOrEqual(t, p.MaxDelay, p.BaseDelay)
}
