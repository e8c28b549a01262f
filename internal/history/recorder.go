package history

import (
	"context"
	"time"

	"github.com/zjrosen/deskctl/internal/coordinator"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/pubsub"
)

// writeTimeout bounds each database write made by the recorder.
const writeTimeout = 5 * time.Second

// Recorder writes coordinator lifecycle events into a Repository.
type Recorder struct {
	repo *Repository
}

// NewRecorder creates a recorder for repo.
func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Run consumes events until ctx is done or events is closed.
func (r *Recorder) Run(ctx context.Context, events <-chan pubsub.Event[coordinator.Event]) {
	pubsub.Consume(ctx, events, func(ev pubsub.Event[coordinator.Event]) {
		// A write already under way is not cut short by ctx.
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		if err := r.Record(wctx, ev); err != nil {
			log.ErrorErr(log.CatDB, "Failed to record command event", err, "command_id", ev.Payload.CommandID, "event", ev.Type)
		}
	})
}

// Record applies one event.
func (r *Recorder) Record(ctx context.Context, ev pubsub.Event[coordinator.Event]) error {
	p := ev.Payload
	e := Entry{
		ID:         p.CommandID,
		SessionKey: p.SessionKey,
		Name:       p.Name,
		State:      p.State.String(),
	}

	switch ev.Type {
	case pubsub.StartedEvent:
		e.StartedAt = p.At
		return r.repo.Start(ctx, e)
	case pubsub.CompletedEvent, pubsub.FailedEvent, pubsub.CancelledEvent:
		e.EndedAt = p.At
		if p.Err != nil {
			e.Error = p.Err.Error()
		}
		return r.repo.Finish(ctx, e)
	default:
		// The displaced row is closed by its own cancelled event.
		return nil
	}
}
