package models

import "github.com/google/uuid"

// TradeStats aggregates trade counts of one game by status.
type TradeStats struct {
	GameID    uuid.UUID `json:"game_id"`
	Accepted  int       `json:"accepted"`
	Pending   int       `json:"pending"`
	Rejected  int       `json:"rejected"`
	Cancelled int       `json:"cancelled"`
	Countered int       `json:"countered"`
	Total     int       `json:"total"`
}
