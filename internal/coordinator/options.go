package coordinator

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/deskctl/internal/pubsub"
)

// DefaultNoticeTimeout bounds a single on-superseded callback.
const DefaultNoticeTimeout = 10 * time.Second

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	broker        *pubsub.Broker[Event]
	tracer        trace.Tracer
	now           func() time.Time
	noticeTimeout time.Duration
}

// WithBroker publishes lifecycle events on b instead of a private broker.
func WithBroker(b *pubsub.Broker[Event]) Option {
	return func(o *options) { o.broker = b }
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithNoticeTimeout bounds how long an on-superseded callback may run.
func WithNoticeTimeout(d time.Duration) Option {
	return func(o *options) { o.noticeTimeout = d }
}

// RunOption configures a single RunExclusive call.
type RunOption func(*runOptions)

type runOptions struct {
	id   string
	name string
}

func newRunOptions(opts []RunOption) runOptions {
	ro := runOptions{}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.id == "" {
		ro.id = uuid.NewString()
	}
	return ro
}

// WithName labels the command in events, history and spans.
func WithName(name string) RunOption {
	return func(o *runOptions) { o.name = name }
}

// WithCommandID sets the command ID. A random UUID is used otherwise.
func WithCommandID(id string) RunOption {
	return func(o *runOptions) { o.id = id }
}
