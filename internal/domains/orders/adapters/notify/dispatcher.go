package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

const DefaultQueueSize = 256

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

var _ ports.Notifier = (*Dispatcher)(nil)

type queued struct {
	ctx   context.Context
	event domain.Event
}

// Dispatcher hands events to a sink on a background goroutine so callers never wait on the
// broker. When the queue is full the event is dropped and ErrQueueFull returned.
type Dispatcher struct {
	sink   ports.Notifier
	logger *slog.Logger
	queue  chan queued
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the delivery goroutine. Call Close to drain and stop it.
func NewDispatcher(sink ports.Notifier, size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan queued, size),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues the event. The request context is detached from cancellation so delivery
// still happens after the HTTP request finished, while trace values are kept.
func (d *Dispatcher) Notify(ctx context.Context, event domain.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		if err := d.sink.Notify(item.ctx, item.event); err != nil {
			d.logger.LogAttrs(item.ctx, slog.LevelWarn, "order event delivery failed",
				slog.String("event", item.event.EventName()),
				slog.Int64("order.id", item.event.AggregateID()),
				slog.String("error", err.Error()))
		}
	}
}

// Close stops accepting events and waits until queued events are delivered or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
