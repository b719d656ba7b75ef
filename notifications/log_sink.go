package notifications

import (
	"context"
	"log/slog"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, event TradeEvent) error {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.String("trade_id", event.Trade.ID.String()),
		slog.String("from_team_id", event.Trade.FromTeamID.String()),
		slog.String("to_team_id", event.Trade.ToTeamID.String()),
		slog.String("status", string(event.Trade.Status)),
	}
	if event.CounterTrade != nil {
		attrs = append(attrs, slog.String("counter_trade_id", event.CounterTrade.ID.String()))
	}
	s.Logger.LogAttrs(ctx, slog.LevelInfo, "Trade event", attrs...)
	return nil
}
