package models

import (
	"time"

	"github.com/google/uuid"
)

type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusAccepted  TradeStatus = "ACCEPTED"
	TradeStatusRejected  TradeStatus = "REJECTED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
	TradeStatusCountered TradeStatus = "COUNTERED"
)

// AllTradeStatuses lists every status in lifecycle order.
var AllTradeStatuses = []TradeStatus{
	TradeStatusPending,
	TradeStatusAccepted,
	TradeStatusRejected,
	TradeStatusCancelled,
	TradeStatusCountered,
}

func (s TradeStatus) Valid() bool {
	for _, st := range AllTradeStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s TradeStatus) Terminal() bool {
	return s != TradeStatusPending
}

type Trade struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	GameID             uuid.UUID   `json:"game_id" db:"game_id"`
	FromTeamID         uuid.UUID   `json:"from_team_id" db:"from_team_id"`
	ToTeamID           uuid.UUID   `json:"to_team_id" db:"to_team_id"`
	OfferedPlayerIDs   []uuid.UUID `json:"offered_player_ids" db:"offered_player_ids"`
	RequestedPlayerIDs []uuid.UUID `json:"requested_player_ids" db:"requested_player_ids"`
	Status             TradeStatus `json:"status" db:"status"`
	ProposedAt         time.Time   `json:"proposed_at" db:"proposed_at"`
	AcceptedAt         *time.Time  `json:"accepted_at,omitempty" db:"accepted_at"`
	RejectedAt         *time.Time  `json:"rejected_at,omitempty" db:"rejected_at"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CounteredAt        *time.Time  `json:"countered_at,omitempty" db:"countered_at"`
	OriginalTradeID    *uuid.UUID  `json:"original_trade_id,omitempty" db:"original_trade_id"`
}

// PlayerCount is the number of players moving in either direction.
func (t *Trade) PlayerCount() int {
	return len(t.OfferedPlayerIDs) + len(t.RequestedPlayerIDs)
}

// Involves reports whether teamID is on either side of the trade.
func (t *Trade) Involves(teamID uuid.UUID) bool {
	return t.FromTeamID == teamID || t.ToTeamID == teamID
}

// MarkResolved moves the trade into a terminal status and stamps the matching timestamp.
func (t *Trade) MarkResolved(status TradeStatus, at time.Time) {
	ts := at
	t.Status = status
	switch status {
	case TradeStatusAccepted:
		t.AcceptedAt = &ts
	case TradeStatusRejected:
		t.RejectedAt = &ts
	case TradeStatusCancelled:
		t.CancelledAt = &ts
	case TradeStatusCountered:
		t.CounteredAt = &ts
	}
}

func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	c := *t
	c.OfferedPlayerIDs = append([]uuid.UUID(nil), t.OfferedPlayerIDs...)
	c.RequestedPlayerIDs = append([]uuid.UUID(nil), t.RequestedPlayerIDs...)
	c.AcceptedAt = cloneTime(t.AcceptedAt)
	c.RejectedAt = cloneTime(t.RejectedAt)
	c.CancelledAt = cloneTime(t.CancelledAt)
	c.CounteredAt = cloneTime(t.CounteredAt)
	if t.OriginalTradeID != nil {
		id := *t.OriginalTradeID
		c.OriginalTradeID = &id
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
