package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var ErrQueueFull = errors.New("notification queue is full")

// AsyncSink decouples a slow sink from the caller through a bounded queue.
// Publish never blocks; events are dropped when the queue is full.
type AsyncSink struct {
	next    Sink
	queue   chan TradeEvent
	timeout time.Duration
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewAsyncSink(next Sink, size int, timeout time.Duration, logger *slog.Logger) *AsyncSink {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncSink{
		next:    next,
		queue:   make(chan TradeEvent, size),
		timeout: timeout,
		logger:  logger,
	}
}

func (a *AsyncSink) Publish(_ context.Context, event TradeEvent) error {
	select {
	case a.queue <- event:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped is the number of events rejected because the queue was full.
func (a *AsyncSink) Dropped() int64 {
	return a.dropped.Load()
}

// Run delivers queued events until ctx is cancelled. Events still queued at
// that point are delivered before Run returns.
func (a *AsyncSink) Run(ctx context.Context) {
	for {
		select {
		case event := <-a.queue:
			a.deliver(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-a.queue:
					a.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (a *AsyncSink) deliver(event TradeEvent) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	if err := a.next.Publish(ctx, event); err != nil {
		a.logger.Warn("Async trade event delivery failed",
			slog.String("event_type", string(event.Type)),
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err))
	}
}
