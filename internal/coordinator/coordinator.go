// Package coordinator runs at most one command per session at a time.
//
// A Coordinator keeps one slot per session key. Starting a command for a key
// whose slot is still live cancels that slot and waits for it to unwind before
// the new command's factory is invoked, so two commands for the same session
// never overlap. Keys are independent of each other.
//
//	RunExclusive(k, B) ──► cancel A ──► wait A.done ──► onSuperseded ──► B()
//
// Cancellation is cooperative: a factory must watch its context.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/pubsub"
	"github.com/zjrosen/deskctl/internal/tracing"
)

// Factory produces and runs one command. It is called at most once per
// RunExclusive call, and only after the previous command for the same key has
// unwound.
type Factory func(ctx context.Context) error

// SupersededFunc is called once when a RunExclusive call displaced a live
// predecessor. Its error is logged and otherwise ignored.
type SupersededFunc func(ctx context.Context) error

type slot struct {
	id     string
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	state  State // guarded by Coordinator.mu
}

// Coordinator owns the session key to slot table.
type Coordinator[K comparable] struct {
	mu    sync.Mutex
	slots map[K]*slot

	broker        *pubsub.Broker[Event]
	tracer        trace.Tracer
	now           func() time.Time
	noticeTimeout time.Duration
}

// New creates an empty coordinator.
func New[K comparable](opts ...Option) *Coordinator[K] {
	o := options{
		now:           time.Now,
		noticeTimeout: DefaultNoticeTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.broker == nil {
		o.broker = pubsub.NewBroker[Event]()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("github.com/zjrosen/deskctl/internal/coordinator")
	}

	return &Coordinator[K]{
		slots:         make(map[K]*slot),
		broker:        o.broker,
		tracer:        o.tracer,
		now:           o.now,
		noticeTimeout: o.noticeTimeout,
	}
}

// Subscribe returns a channel of lifecycle events. It closes when ctx ends.
func (c *Coordinator[K]) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return c.broker.Subscribe(ctx)
}

// RunExclusive runs factory as the only live command for key and blocks until
// it is terminal. Errors and panics from factory are logged, never returned.
// The returned State is the final state of this call's slot.
//
// ctx is the parent of the command context: cancelling it cancels the command.
func (c *Coordinator[K]) RunExclusive(ctx context.Context, key K, factory Factory, onSuperseded SupersededFunc, opts ...RunOption) State {
	return c.reserve(ctx, key, opts).run(factory, onSuperseded)
}

// Go is RunExclusive without the blocking. The slot is reserved before Go
// returns, so calls made one after another from a single goroutine supersede
// each other in call order. The channel receives the final State.
func (c *Coordinator[K]) Go(ctx context.Context, key K, factory Factory, onSuperseded SupersededFunc, opts ...RunOption) <-chan State {
	out := make(chan State, 1)
	r := c.reserve(ctx, key, opts)
	go func() {
		out <- r.run(factory, onSuperseded)
	}()
	return out
}

// reservation is a slot that has been placed in the table but not yet run.
type reservation[K comparable] struct {
	c          *Coordinator[K]
	ctx        context.Context
	slotCtx    context.Context
	span       trace.Span
	s          *slot
	prev       *slot
	displaced  bool
	sessionKey string
}

func (c *Coordinator[K]) reserve(ctx context.Context, key K, opts []RunOption) *reservation[K] {
	ro := newRunOptions(opts)
	sessionKey := fmt.Sprint(key)

	ctx, span := c.tracer.Start(ctx, tracing.SpanRunExclusive, trace.WithAttributes(
		attribute.String(tracing.AttrSessionKey, sessionKey),
		attribute.String(tracing.AttrCommandID, ro.id),
		attribute.String(tracing.AttrCommandName, ro.name),
	))

	slotCtx, cancel := context.WithCancel(ctx)
	s := &slot{
		id:     ro.id,
		name:   ro.name,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateIdle,
	}

	// Reserve the slot before waiting so a later call waits on us, not on our
	// predecessor.
	c.mu.Lock()
	prev := c.slots[key]
	c.slots[key] = s
	displaced := prev != nil && !prev.state.Terminal()
	if displaced {
		prev.cancel()
	}
	c.mu.Unlock()

	return &reservation[K]{
		c:          c,
		ctx:        ctx,
		slotCtx:    slotCtx,
		span:       span,
		s:          s,
		prev:       prev,
		displaced:  displaced,
		sessionKey: sessionKey,
	}
}

func (r *reservation[K]) run(factory Factory, onSuperseded SupersededFunc) State {
	defer r.span.End()
	defer r.s.cancel()

	state := r.c.run(r.ctx, r.slotCtx, r.s, r.prev, r.displaced, r.sessionKey, factory, onSuperseded)

	r.span.SetAttributes(attribute.String(tracing.AttrCommandOutcome, state.String()))
	if state == StateFailed {
		r.span.SetStatus(codes.Error, "command failed")
	}
	return state
}

func (c *Coordinator[K]) run(ctx, slotCtx context.Context, s, prev *slot, displaced bool, sessionKey string, factory Factory, onSuperseded SupersededFunc) (state State) {
	defer close(s.done)

	if prev != nil {
		// A predecessor that already finished closes done right away.
		<-prev.done
	}

	if displaced {
		c.mu.Lock()
		prevState := prev.state
		c.mu.Unlock()

		trace.SpanFromContext(ctx).AddEvent(tracing.EventSupersededPrevious, trace.WithAttributes(
			attribute.String(tracing.AttrCommandID, prev.id),
		))
		c.publish(pubsub.SupersededEvent, Event{CommandID: prev.id, SessionKey: sessionKey, Name: prev.name, State: prevState})
		// Only a command that is about to run tells the user; one displaced
		// in turn leaves the notice to its successor.
		if slotCtx.Err() == nil {
			c.notifySuperseded(ctx, sessionKey, onSuperseded)
		}
	}

	c.mu.Lock()
	if slotCtx.Err() != nil {
		// Superseded (or the caller gave up) before we ever started.
		s.state = StateCancelled
		c.mu.Unlock()
		log.Debug(log.CatCoord, "command cancelled before start", "session", sessionKey, "command_id", s.id, "name", s.name)
		c.publish(pubsub.CancelledEvent, Event{CommandID: s.id, SessionKey: sessionKey, Name: s.name, State: StateCancelled})
		return StateCancelled
	}
	s.state = StateRunning
	c.mu.Unlock()

	c.publish(pubsub.StartedEvent, Event{CommandID: s.id, SessionKey: sessionKey, Name: s.name, State: StateRunning})

	err := invoke(slotCtx, factory)

	var eventType pubsub.EventType
	switch {
	case err == nil:
		state, eventType = StateCompleted, pubsub.CompletedEvent
	case errors.Is(err, context.Canceled) && slotCtx.Err() != nil:
		state, eventType = StateCancelled, pubsub.CancelledEvent
		log.Debug(log.CatCoord, "command cancelled", "session", sessionKey, "command_id", s.id, "name", s.name)
	default:
		state, eventType = StateFailed, pubsub.FailedEvent
		log.ErrorErr(log.CatCoord, "command failed", err, "session", sessionKey, "command_id", s.id, "name", s.name)
	}

	c.mu.Lock()
	s.state = state
	c.mu.Unlock()

	ev := Event{CommandID: s.id, SessionKey: sessionKey, Name: s.name, State: state}
	if state == StateFailed {
		ev.Err = err
	}
	c.publish(eventType, ev)
	return state
}

// notifySuperseded runs the callback detached from cancellation so a notice
// still goes out when this call is itself displaced a moment later.
func (c *Coordinator[K]) notifySuperseded(ctx context.Context, sessionKey string, fn SupersededFunc) {
	if fn == nil {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.noticeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatCoord, "superseded callback panicked", "session", sessionKey, "panic", r)
		}
	}()
	if err := fn(nctx); err != nil {
		log.ErrorErr(log.CatCoord, "superseded callback failed", err, "session", sessionKey)
	}
}

func invoke(ctx context.Context, factory Factory) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return factory(ctx)
}

func (c *Coordinator[K]) publish(t pubsub.EventType, ev Event) {
	ev.At = c.now()
	c.broker.Publish(t, ev)
}

// CancelAll cancels every live slot and returns without waiting.
func (c *Coordinator[K]) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, s := range c.slots {
		if !s.state.Terminal() {
			s.cancel()
			n++
		}
	}
	if n > 0 {
		log.Info(log.CatCoord, "cancelled all commands", "count", n)
	}
}

// Shutdown cancels every live slot and waits for them to unwind or for ctx to
// end, whichever comes first.
func (c *Coordinator[K]) Shutdown(ctx context.Context) error {
	c.CancelAll()

	c.mu.Lock()
	pending := make([]chan struct{}, 0, len(c.slots))
	for _, s := range c.slots {
		pending = append(pending, s.done)
	}
	c.mu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for commands to unwind: %w", ctx.Err())
		}
	}
	return nil
}

// IsRunning reports whether key has a non-terminal slot. The answer may be
// stale by the time the caller acts on it.
func (c *Coordinator[K]) IsRunning(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	return ok && !s.state.Terminal()
}

// State returns the state of the current slot for key.
func (c *Coordinator[K]) State(key K) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return StateIdle, false
	}
	return s.state, true
}
