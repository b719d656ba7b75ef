package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

// Notifier turns trade transitions into TradeEvents and fans them out to
// every sink. Sink failures are logged and otherwise ignored.
type Notifier struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewNotifier(logger *slog.Logger, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sinks:  sinks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (n *Notifier) NotifyProposed(ctx context.Context, trade *models.Trade) {
	n.publish(ctx, EventTradeProposed, trade, nil)
}

func (n *Notifier) NotifyAccepted(ctx context.Context, trade *models.Trade) {
	n.publish(ctx, EventTradeAccepted, trade, nil)
}

func (n *Notifier) NotifyRejected(ctx context.Context, trade *models.Trade) {
	n.publish(ctx, EventTradeRejected, trade, nil)
}

func (n *Notifier) NotifyCancelled(ctx context.Context, trade *models.Trade) {
	n.publish(ctx, EventTradeCancelled, trade, nil)
}

func (n *Notifier) NotifyCountered(ctx context.Context, original, counter *models.Trade) {
	n.publish(ctx, EventTradeCountered, original, counter)
}

func (n *Notifier) publish(ctx context.Context, eventType EventType, trade, counter *models.Trade) {
	event := TradeEvent{
		ID:           uuid.New(),
		Type:         eventType,
		Trade:        trade,
		CounterTrade: counter,
		OccurredAt:   n.now(),
	}
	for _, sink := range n.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			n.logger.WarnContext(ctx, "Failed to publish trade event",
				slog.String("event_type", string(event.Type)),
				slog.String("trade_id", trade.ID.String()),
				slog.Any("error", err))
		}
	}
}
