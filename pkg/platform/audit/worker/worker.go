package worker

import (
	"context"
	"log/slog"

	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/circuit"
)

// probeEvery is how many events are dropped between delivery probes while the
// sink breaker is open.
const probeEvery = 10

// Worker consumes audit events from a channel and delivers them to a sink.
// It keeps background forwarding (e.g. to Kafka) off the request path. A
// failed delivery is logged and skipped; the worker only stops when its
// context is cancelled or the inbox is closed.
//
// With a circuit breaker attached, repeated sink failures open the breaker
// and most events are dropped without a delivery attempt, so a dead broker
// cannot back up the inbox. While open, every probeEvery-th event is still
// attempted; enough successful probes close the breaker again. Dropped
// events are not lost to the audit trail: the publisher has already appended
// them to the primary audit store.
type Worker struct {
	sink    audit.Sink
	inbox   <-chan audit.Event
	logger  *slog.Logger
	breaker *circuit.Breaker

	skipped int
}

// Option configures the Worker.
type Option func(*Worker)

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithBreaker guards the sink with a circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		w.breaker = b
	}
}

func NewWorker(sink audit.Sink, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{sink: sink, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.deliver(ctx, event)
		}
	}
}

// deliver attempts one sink delivery, honoring the breaker when present.
func (w *Worker) deliver(ctx context.Context, event audit.Event) {
	if w.breaker != nil && w.breaker.IsOpen() {
		w.skipped++
		if w.skipped%probeEvery != 0 {
			if w.logger != nil {
				w.logger.DebugContext(ctx, "audit sink circuit open, event not forwarded",
					"action", event.Action,
				)
			}
			return
		}
	}

	err := w.sink.Append(ctx, event)

	if w.breaker != nil {
		if err != nil {
			if _, change := w.breaker.RecordFailure(); change.Opened && w.logger != nil {
				w.logger.WarnContext(ctx, "audit sink circuit opened", "sink", w.breaker.Name())
			}
		} else {
			if _, change := w.breaker.RecordSuccess(); change.Closed {
				w.skipped = 0
				if w.logger != nil {
					w.logger.InfoContext(ctx, "audit sink circuit closed", "sink", w.breaker.Name())
				}
			}
		}
	}

	if err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "audit sink delivery failed",
			"action", event.Action,
			"error", err,
		)
	}
}
