package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	id "origo/pkg/domain"
)

// Store persists audit events. It is append-only; implementations must never
// update or delete rows.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]Event, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// ErrBufferFull is returned by Emit when the async buffer cannot accept
// another event. Callers running best-effort should drop and move on.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. In sync mode every Emit writes
// through to the store; with an async buffer, events are queued and a
// background goroutine drains them, so domain operations never wait on the
// audit sink.
type Publisher struct {
	store Store

	inbox chan Event
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered async mode with the
// given queue capacity. Events that arrive while the queue is full are
// dropped rather than blocking the caller.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an audit event. Missing ID, Timestamp, and Category fields
// are filled in before the event reaches the store.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditAction(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			// Background writes get their own deadline; the emitting
			// request's context may already be gone.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = p.store.Append(ctx, event)
			cancel()
		case <-p.done:
			// Flush whatever is still queued before exiting.
			for {
				select {
				case event := <-p.inbox:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					_ = p.store.Append(ctx, event)
					cancel()
				default:
					return
				}
			}
		}
	}
}

// Close stops the async drainer after flushing queued events. Safe to call
// multiple times and on sync-mode publishers.
func (p *Publisher) Close() error {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
	return nil
}

// ListByApplication returns the audit trail for one application.
func (p *Publisher) ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]Event, error) {
	return p.store.ListByApplication(ctx, applicationID)
}

// ListByEntity returns the audit trail for a single record within an
// application, e.g. one document's review history.
func (p *Publisher) ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	return p.store.ListByEntity(ctx, entityType, entityID)
}

// Emitter is the write-side surface services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// BestEffort wraps an Emitter so that failures are logged and counted but
// never surfaced to the caller. Domain mutations must not fail or roll back
// because the audit sink is down.
type BestEffort struct {
	next    Emitter
	logger  *slog.Logger
	dropped func()
}

// NewBestEffort builds the wrapper. logger may be nil; onDrop is invoked for
// every event that could not be recorded (wire a metrics counter here).
func NewBestEffort(next Emitter, logger *slog.Logger, onDrop func()) *BestEffort {
	return &BestEffort{next: next, logger: logger, dropped: onDrop}
}

func (b *BestEffort) Emit(ctx context.Context, event Event) error {
	if err := b.next.Emit(ctx, event); err != nil {
		if b.logger != nil {
			b.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"application_id", event.ApplicationID,
				"error", err,
			)
		}
		if b.dropped != nil {
			b.dropped()
		}
	}
	return nil
}
