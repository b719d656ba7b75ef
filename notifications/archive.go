package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/storage"
)

// ArchiveSink stores every event as a JSON object, keyed by game and trade.
type ArchiveSink struct {
	Store  storage.ObjectStore
	Prefix string
}

func (s ArchiveSink) Key(event TradeEvent) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "trade-events"
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s.json",
		prefix,
		event.Trade.GameID,
		event.Trade.ID,
		event.OccurredAt.UTC().Format("20060102T150405.000000000Z"),
		event.Type)
}

func (s ArchiveSink) Publish(ctx context.Context, event TradeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode trade event %s: %w", event.ID, err)
	}
	if _, err := s.Store.Put(ctx, s.Key(event), "application/json", bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to archive trade event %s: %w", event.ID, err)
	}
	return nil
}
