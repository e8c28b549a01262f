package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/deskctl/internal/pubsub"
	"github.com/zjrosen/deskctl/internal/tracing"
)

const waitTimeout = 2 * time.Second

// blockUntilCancelled is a factory that signals started and then waits for
// its context, the way a command blocked on the agent does.
func blockUntilCancelled(started chan<- struct{}) Factory {
	return func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for "+what)
	}
}

func waitState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for RunExclusive to return")
		return StateIdle
	}
}

// waitReserved blocks until the slot for key belongs to command id.
func waitReserved[K comparable](t *testing.T, c *Coordinator[K], key K, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		s, ok := c.slots[key]
		return ok && s.id == id
	}, waitTimeout, time.Millisecond)
}

func TestRunExclusive_Completes(t *testing.T) {
	c := New[string]()

	ran := false
	state := c.RunExclusive(context.Background(), "chat-1", func(context.Context) error {
		ran = true
		return nil
	}, nil)

	require.True(t, ran)
	require.Equal(t, StateCompleted, state)
	require.False(t, c.IsRunning("chat-1"))

	got, ok := c.State("chat-1")
	require.True(t, ok)
	require.Equal(t, StateCompleted, got, "terminal slot stays as a marker")
}

func TestRunExclusive_SupersedeOrdering(t *testing.T) {
	c := New[string]()

	var mu sync.Mutex
	var trail []string
	record := func(s string) {
		mu.Lock()
		trail = append(trail, s)
		mu.Unlock()
	}

	aStarted := make(chan struct{})
	aResult := make(chan State, 1)
	go func() {
		aResult <- c.RunExclusive(context.Background(), "chat-1", func(ctx context.Context) error {
			record("a:start")
			close(aStarted)
			<-ctx.Done()
			record("a:unwound")
			return ctx.Err()
		}, nil, WithCommandID("A"))
	}()
	waitClosed(t, aStarted, "A to start")
	require.True(t, c.IsRunning("chat-1"))

	var notices atomic.Int32
	bState := c.RunExclusive(context.Background(), "chat-1", func(context.Context) error {
		record("b:start")
		return nil
	}, func(context.Context) error {
		notices.Add(1)
		record("notice")
		return nil
	}, WithCommandID("B"))

	require.Equal(t, StateCancelled, waitState(t, aResult))
	require.Equal(t, StateCompleted, bState)
	require.Equal(t, int32(1), notices.Load())
	require.Equal(t, []string{"a:start", "a:unwound", "notice", "b:start"}, trail)
}

func TestRunExclusive_NoNoticeWhenPreviousFinished(t *testing.T) {
	c := New[string]()

	notice := func(context.Context) error {
		require.Fail(t, "notice must not fire when nothing was displaced")
		return nil
	}

	require.Equal(t, StateCompleted, c.RunExclusive(context.Background(), "chat-1", func(context.Context) error { return nil }, notice))
	require.Equal(t, StateCompleted, c.RunExclusive(context.Background(), "chat-1", func(context.Context) error { return nil }, notice))
}

func TestRunExclusive_IndependentSessions(t *testing.T) {
	c := New[int64]()

	// Each command waits until the other has started, which only succeeds if
	// both run at the same time.
	started := map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	other := map[int64]int64{1: 2, 2: 1}

	results := make(chan State, 2)
	for _, key := range []int64{1, 2} {
		go func() {
			results <- c.RunExclusive(context.Background(), key, func(ctx context.Context) error {
				close(started[key])
				select {
				case <-started[other[key]]:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}, func(context.Context) error {
				require.Fail(t, "sessions must not supersede each other")
				return nil
			})
		}()
	}

	require.Equal(t, StateCompleted, waitState(t, results))
	require.Equal(t, StateCompleted, waitState(t, results))
}

func TestRunExclusive_SupersededCallbackFailureIsIsolated(t *testing.T) {
	tests := []struct {
		name   string
		notice SupersededFunc
	}{
		{"error", func(context.Context) error { return errors.New("chat api down") }},
		{"panic", func(context.Context) error { panic("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[string]()

			aStarted := make(chan struct{})
			aResult := make(chan State, 1)
			go func() {
				aResult <- c.RunExclusive(context.Background(), "k", blockUntilCancelled(aStarted), nil)
			}()
			waitClosed(t, aStarted, "A to start")

			bRan := false
			state := c.RunExclusive(context.Background(), "k", func(context.Context) error {
				bRan = true
				return nil
			}, tt.notice)

			require.Equal(t, StateCancelled, waitState(t, aResult))
			require.Equal(t, StateCompleted, state)
			require.True(t, bRan)
		})
	}
}

func TestRunExclusive_BurstChainsOnOldestUnwind(t *testing.T) {
	c := New[string]()

	// A ignores cancellation until released, so B and C both queue behind it.
	aStarted := make(chan struct{})
	release := make(chan struct{})
	var aDone atomic.Bool
	aResult := make(chan State, 1)
	go func() {
		aResult <- c.RunExclusive(context.Background(), "k", func(ctx context.Context) error {
			close(aStarted)
			<-release
			aDone.Store(true)
			return ctx.Err()
		}, nil, WithCommandID("A"))
	}()
	waitClosed(t, aStarted, "A to start")

	var notices atomic.Int32
	notice := func(context.Context) error {
		notices.Add(1)
		return nil
	}

	var bStarted atomic.Bool
	bResult := make(chan State, 1)
	go func() {
		bResult <- c.RunExclusive(context.Background(), "k", func(context.Context) error {
			bStarted.Store(true)
			return nil
		}, notice, WithCommandID("B"))
	}()
	waitReserved(t, c, "k", "B")

	cResult := make(chan State, 1)
	go func() {
		cResult <- c.RunExclusive(context.Background(), "k", func(context.Context) error {
			assert.True(t, aDone.Load(), "C must not start before A unwinds")
			return nil
		}, notice, WithCommandID("C"))
	}()
	waitReserved(t, c, "k", "C")

	close(release)

	require.Equal(t, StateCancelled, waitState(t, aResult))
	require.Equal(t, StateCancelled, waitState(t, bResult))
	require.Equal(t, StateCompleted, waitState(t, cResult))
	require.False(t, bStarted.Load(), "B was superseded before it could start")
	require.Equal(t, int32(1), notices.Load(), "only C, which runs, sends a notice")
}

func TestGo_ReservesInCallOrder(t *testing.T) {
	c := New[string]()

	aStarted := make(chan struct{})
	a := c.Go(context.Background(), "k", blockUntilCancelled(aStarted), nil, WithCommandID("A"))
	waitClosed(t, aStarted, "A to start")

	var ran []string
	var mu sync.Mutex
	record := func(id string) Factory {
		return func(context.Context) error {
			mu.Lock()
			ran = append(ran, id)
			mu.Unlock()
			return nil
		}
	}

	// No waiting between calls: the slot is already reserved when Go returns.
	b := c.Go(context.Background(), "k", record("B"), nil, WithCommandID("B"))
	cc := c.Go(context.Background(), "k", record("C"), nil, WithCommandID("C"))

	require.Equal(t, StateCancelled, waitState(t, a))
	require.Equal(t, StateCancelled, waitState(t, b))
	require.Equal(t, StateCompleted, waitState(t, cc))
	require.Equal(t, []string{"C"}, ran)

	state, ok := c.State("k")
	require.True(t, ok)
	require.Equal(t, StateCompleted, state)
}

func TestRunExclusive_FailuresAreNotPropagated(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
	}{
		{"error", func(context.Context) error { return errors.New("agent said no") }},
		{"panic", func(context.Context) error { panic("nil map") }},
		{"canceled without supersede", func(context.Context) error { return context.Canceled }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[string]()
			require.NotPanics(t, func() {
				require.Equal(t, StateFailed, c.RunExclusive(context.Background(), "k", tt.factory, nil))
			})
		})
	}
}

func TestRunExclusive_CallerContextCancels(t *testing.T) {
	c := New[string]()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	result := make(chan State, 1)
	go func() {
		result <- c.RunExclusive(ctx, "k", blockUntilCancelled(started), nil)
	}()
	waitClosed(t, started, "command to start")

	cancel()
	require.Equal(t, StateCancelled, waitState(t, result))
}

func TestCancelAll(t *testing.T) {
	c := New[string]()

	results := make(chan State, 2)
	for _, key := range []string{"a", "b"} {
		started := make(chan struct{})
		go func() {
			results <- c.RunExclusive(context.Background(), key, blockUntilCancelled(started), nil)
		}()
		waitClosed(t, started, key+" to start")
	}
	require.True(t, c.IsRunning("a"))
	require.True(t, c.IsRunning("b"))

	c.CancelAll()

	require.Equal(t, StateCancelled, waitState(t, results))
	require.Equal(t, StateCancelled, waitState(t, results))
	require.False(t, c.IsRunning("a"))
	require.False(t, c.IsRunning("b"))
}

func TestShutdown(t *testing.T) {
	t.Run("waits for cooperative commands", func(t *testing.T) {
		c := New[string]()
		started := make(chan struct{})
		go c.RunExclusive(context.Background(), "k", blockUntilCancelled(started), nil)
		waitClosed(t, started, "command to start")

		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		require.NoError(t, c.Shutdown(ctx))
		require.False(t, c.IsRunning("k"))
	})

	t.Run("gives up when ctx expires", func(t *testing.T) {
		c := New[string]()
		started := make(chan struct{})
		release := make(chan struct{})
		defer close(release)
		go c.RunExclusive(context.Background(), "k", func(context.Context) error {
			close(started)
			<-release
			return nil
		}, nil)
		waitClosed(t, started, "command to start")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, c.Shutdown(ctx), context.DeadlineExceeded)
	})
}

func TestIsRunning_UnknownKey(t *testing.T) {
	c := New[string]()
	require.False(t, c.IsRunning("nobody"))
	_, ok := c.State("nobody")
	require.False(t, ok)
}

func TestRunExclusive_PublishesLifecycleEvents(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New[string](WithClock(func() time.Time { return fixed }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := c.Subscribe(ctx)

	aStarted := make(chan struct{})
	go c.RunExclusive(context.Background(), "chat-1", blockUntilCancelled(aStarted), nil, WithCommandID("A"), WithName("volume"))
	waitClosed(t, aStarted, "A to start")

	c.RunExclusive(context.Background(), "chat-1", func(context.Context) error {
		return errors.New("agent said no")
	}, nil, WithCommandID("B"), WithName("volume"))

	var got []pubsub.Event[Event]
	for len(got) < 5 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(waitTimeout):
			require.FailNow(t, "missing events", "got %d", len(got))
		}
	}

	type seen struct {
		typ pubsub.EventType
		id  string
	}
	var order []seen
	for _, ev := range got {
		order = append(order, seen{ev.Type, ev.Payload.CommandID})
		require.Equal(t, "chat-1", ev.Payload.SessionKey)
		require.Equal(t, "volume", ev.Payload.Name)
		require.Equal(t, fixed, ev.Payload.At)
	}
	require.Equal(t, []seen{
		{pubsub.StartedEvent, "A"},
		{pubsub.CancelledEvent, "A"},
		{pubsub.SupersededEvent, "A"},
		{pubsub.StartedEvent, "B"},
		{pubsub.FailedEvent, "B"},
	}, order)
	require.EqualError(t, got[4].Payload.Err, "agent said no")
}

func TestRunExclusive_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c := New[string](WithTracer(tp.Tracer("test")))

	aStarted := make(chan struct{})
	go c.RunExclusive(context.Background(), "chat-1", blockUntilCancelled(aStarted), nil, WithCommandID("A"))
	waitClosed(t, aStarted, "A to start")
	c.RunExclusive(context.Background(), "chat-1", func(context.Context) error { return nil }, nil,
		WithCommandID("B"), WithName("status"))

	require.Eventually(t, func() bool { return len(recorder.Ended()) == 2 }, waitTimeout, time.Millisecond)

	var b sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		for _, kv := range span.Attributes() {
			if string(kv.Key) == tracing.AttrCommandID && kv.Value.AsString() == "B" {
				b = span
			}
		}
	}
	require.NotNil(t, b)
	require.Equal(t, tracing.SpanRunExclusive, b.Name())

	attrs := map[string]string{}
	for _, kv := range b.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	require.Equal(t, "chat-1", attrs[tracing.AttrSessionKey])
	require.Equal(t, "status", attrs[tracing.AttrCommandName])
	require.Equal(t, "completed", attrs[tracing.AttrCommandOutcome])

	require.Len(t, b.Events(), 1)
	require.Equal(t, tracing.EventSupersededPrevious, b.Events()[0].Name)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "cancelled", StateCancelled.String())
	require.Equal(t, "unknown", State(42).String())
	require.True(t, StateFailed.Terminal())
	require.False(t, StateRunning.Terminal())
}
