// Package publisher emits audit events to a store, either synchronously or
// through a buffered background worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rollcall/internal/audit"
	id "rollcall/pkg/domain"
)

// ErrBufferFull is returned in async mode when the event buffer is saturated.
// Callers treat audit as best-effort and must not fail the request on it.
var ErrBufferFull = errors.New("audit buffer full")

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer
// size. Events are appended by a background worker; Close drains the buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// Publisher appends audit events to a store. The zero mode is synchronous:
// Emit blocks until the store accepts the event.
type Publisher struct {
	store  audit.ReadStore
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPublisher(store audit.ReadStore, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event. A zero Timestamp is stamped with the current time.
// In async mode a full buffer drops the event and returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	// The send happens under the mutex so Close cannot close the channel
	// between the closed check and the send.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
		p.logger.Warn("audit event dropped", "action", event.Action)
		return ErrBufferFull
	}
}

// List returns the student's events from the underlying store.
func (p *Publisher) List(ctx context.Context, studentID id.UserID) ([]audit.Event, error) {
	return p.store.ListByStudent(ctx, studentID)
}

// Close stops the async worker after draining buffered events. Safe to call
// on a synchronous publisher and safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.buffer != nil {
		close(p.buffer)
		p.wg.Wait()
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
	}
}
