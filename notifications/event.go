package notifications

import (
	"context"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EventTradeProposed  EventType = "TRADE_PROPOSED"
	EventTradeAccepted  EventType = "TRADE_ACCEPTED"
	EventTradeRejected  EventType = "TRADE_REJECTED"
	EventTradeCancelled EventType = "TRADE_CANCELLED"
	EventTradeCountered EventType = "TRADE_COUNTERED"
)

// TradeEvent is a committed trade transition. CounterTrade is set only for
// EventTradeCountered.
type TradeEvent struct {
	ID           uuid.UUID     `json:"id"`
	Type         EventType     `json:"type"`
	Trade        *models.Trade `json:"trade"`
	CounterTrade *models.Trade `json:"counter_trade,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// TeamIDs lists the teams interested in the event.
func (e TradeEvent) TeamIDs() []uuid.UUID {
	if e.Trade == nil {
		return nil
	}
	return []uuid.UUID{e.Trade.FromTeamID, e.Trade.ToTeamID}
}

// Sink delivers trade events somewhere.
type Sink interface {
	Publish(ctx context.Context, event TradeEvent) error
}

type SinkFunc func(ctx context.Context, event TradeEvent) error

func (f SinkFunc) Publish(ctx context.Context, event TradeEvent) error { return f(ctx, event) }
