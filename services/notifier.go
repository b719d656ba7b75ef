package services

import (
	"context"

	"github.com/N3z3d/FortniteProject-sub000/models"
)

// TradeNotifier receives trade lifecycle events after they are committed.
// Implementations must not block for long; delivery is best-effort.
type TradeNotifier interface {
	NotifyProposed(ctx context.Context, trade *models.Trade)
	NotifyAccepted(ctx context.Context, trade *models.Trade)
	NotifyRejected(ctx context.Context, trade *models.Trade)
	NotifyCancelled(ctx context.Context, trade *models.Trade)
	NotifyCountered(ctx context.Context, original, counter *models.Trade)
}

type NopNotifier struct{}

func (NopNotifier) NotifyProposed(context.Context, *models.Trade)                 {}
func (NopNotifier) NotifyAccepted(context.Context, *models.Trade)                 {}
func (NopNotifier) NotifyRejected(context.Context, *models.Trade)                 {}
func (NopNotifier) NotifyCancelled(context.Context, *models.Trade)                {}
func (NopNotifier) NotifyCountered(context.Context, *models.Trade, *models.Trade) {}
