// Package events provides the in-process event pipeline for deal and claim
// lifecycle notifications. Producers hand events to an Emitter; a worker pool
// drains them and fans out to registered handlers.
//
// Delivery is fire-and-forget for producers and at-least-once toward
// handlers, so the dispatcher deduplicates on the event's dedupe key before
// fan-out. Invalid events are rejected at the boundary and never reach a
// handler.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// Emitter is the producer-side contract. Emit never blocks the caller beyond
// a full buffer; a dropped event is logged, not returned as an error, because
// event emission is a best-effort side effect of the primary operation.
type Emitter interface {
	Emit(ctx context.Context, ev domain.Event)
}

// Handler consumes one event. Handler errors are logged; there is no retry,
// matching at-least-once semantics where the producer may emit again.
type Handler func(ctx context.Context, ev domain.Event) error

// NopEmitter discards every event. Useful in tests and tools.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(context.Context, domain.Event) {}

// Dispatcher is a bounded worker pool with per-key deduplication.
type Dispatcher struct {
	log      zerolog.Logger
	ch       chan domain.Event
	handlers map[string][]Handler

	mu       sync.Mutex
	seen     map[string]time.Time
	seenTTL  time.Duration
	lastScan time.Time

	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBuffer sets the queue depth (default 256).
func WithBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.ch = make(chan domain.Event, n)
		}
	}
}

// WithDedupeTTL sets how long a dedupe key is remembered (default 10m).
func WithDedupeTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.seenTTL = ttl
		}
	}
}

// NewDispatcher builds a Dispatcher and starts workers goroutines.
// Call Close to drain and stop.
func NewDispatcher(log zerolog.Logger, workers int, opts ...Option) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		log:      log.With().Str("component", "events").Logger(),
		ch:       make(chan domain.Event, 256),
		handlers: make(map[string][]Handler),
		seen:     make(map[string]time.Time),
		seenTTL:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// On registers a handler for an event type. Registration must complete before
// the first Emit; it is not synchronized against in-flight dispatch.
func (d *Dispatcher) On(eventType string, h Handler) {
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Emit validates and enqueues the event. Invalid events and full-buffer drops
// are logged and discarded.
func (d *Dispatcher) Emit(ctx context.Context, ev domain.Event) {
	if err := ev.Validate(); err != nil {
		d.log.Warn().Err(err).Str("type", ev.Type).Str("deal_id", ev.DealID).Msg("rejecting invalid event")
		return
	}
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		d.log.Warn().Str("type", ev.Type).Msg("emit after close, dropping")
		return
	}
	select {
	case d.ch <- ev:
		d.closeMu.Unlock()
	default:
		d.closeMu.Unlock()
		d.log.Warn().Str("type", ev.Type).Str("deal_id", ev.DealID).Msg("event buffer full, dropping")
	}
}

// Close stops intake, drains the queue, and waits for workers to finish.
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.closeMu.Unlock()
	d.wg.Wait()
}

// markSeen records the key and reports whether it was already present.
// Stale entries are evicted opportunistically.
func (d *Dispatcher) markSeen(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastScan) > d.seenTTL {
		for k, at := range d.seen {
			if now.Sub(at) > d.seenTTL {
				delete(d.seen, k)
			}
		}
		d.lastScan = now
	}

	if _, dup := d.seen[key]; dup {
		return true
	}
	d.seen[key] = now
	return false
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.ch {
		if d.markSeen(ev.DedupeKey(), time.Now()) {
			d.log.Debug().Str("type", ev.Type).Str("deal_id", ev.DealID).Msg("duplicate event skipped")
			continue
		}
		ctx := context.Background()
		for _, h := range d.handlers[ev.Type] {
			if err := h(ctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("type", ev.Type).
					Str("deal_id", ev.DealID).
					Msg("event handler failed")
			}
		}
	}
}
