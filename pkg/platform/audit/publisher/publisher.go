// Package publisher provides the audit emission path used by services.
//
// The publisher appends events to a primary audit store, either inline or
// through a bounded async buffer, and can tee each event into a forward
// channel for downstream sinks (e.g. the Kafka worker). Audit emission must
// never block a request indefinitely: when the async buffer is full the
// event is dropped, counted, and logged.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	audit "anchorage/pkg/platform/audit"
)

// Publisher appends audit events to a store, optionally via an async buffer.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	forward chan<- audit.Event

	inbox chan audit.Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error and drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// buffer size. Emit then enqueues instead of writing to the store inline.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithForward tees every emitted event into ch without blocking. Events are
// dropped from the tee when ch is full; the primary store write is unaffected.
func WithForward(ch chan<- audit.Event) Option {
	return func(p *Publisher) {
		p.forward = ch
	}
}

// NewPublisher creates a publisher writing to store. Without options the
// publisher is synchronous: Emit returns once the store append completed.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.inbox != nil {
		go p.drain()
	} else {
		close(p.done)
	}

	return p
}

// Emit records an audit event. A zero timestamp is stamped with the current
// time and the category is derived from the action when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("audit publisher closed")
	}

	if p.inbox == nil {
		p.mu.Unlock()
		if err := p.store.Append(ctx, event); err != nil {
			if p.metrics != nil {
				p.metrics.IncPersistFailures()
			}
			return fmt.Errorf("append audit event: %w", err)
		}
		if p.metrics != nil {
			p.metrics.IncEmitted()
		}
		p.tee(event)
		return nil
	}

	// Async mode: enqueue without blocking the request path. The mutex is
	// held across the send so Close cannot close the inbox underneath us.
	select {
	case p.inbox <- event:
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.IncEmitted()
		}
		p.tee(event)
		return nil
	default:
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.IncDropped()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped", "action", event.Action)
		}
		return fmt.Errorf("audit buffer full")
	}
}

// tee forwards the event to the downstream channel, dropping when full.
func (p *Publisher) tee(event audit.Event) {
	if p.forward == nil {
		return
	}
	select {
	case p.forward <- event:
	default:
		if p.metrics != nil {
			p.metrics.IncForwardDropped()
		}
	}
}

// drain consumes the async inbox until it is closed.
func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.metrics != nil {
				p.metrics.IncPersistFailures()
			}
			if p.logger != nil {
				p.logger.Error("failed to append audit event", "action", event.Action, "error", err)
			}
		}
	}
}

// Close stops accepting events and, in async mode, blocks until buffered
// events have been written to the store.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	<-p.done
	return nil
}
