package models

import (
	"time"

	"github.com/google/uuid"
)

// RegionRule caps how many players of one region a roster may hold.
type RegionRule struct {
	Region     Region `json:"region" db:"region"`
	MaxPlayers int    `json:"max_players" db:"max_players"`
}

type Game struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	TradingEnabled bool       `json:"trading_enabled" db:"trading_enabled"`
	TradeDeadline  *time.Time `json:"trade_deadline,omitempty" db:"trade_deadline"`
	// MaxTradesPerTeam of zero means no cap.
	MaxTradesPerTeam int       `json:"max_trades_per_team" db:"max_trades_per_team"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	RegionRules []RegionRule `json:"region_rules,omitempty" db:"-"`
}

// TradeWindowClosed reports whether the trade deadline has passed at the given instant.
func (g *Game) TradeWindowClosed(at time.Time) bool {
	return g.TradeDeadline != nil && !at.Before(*g.TradeDeadline)
}
