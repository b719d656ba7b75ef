package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a user's roster for one game and season.
type Team struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	OwnerID              uuid.UUID `json:"owner_id" db:"owner_id"`
	GameID               uuid.UUID `json:"game_id" db:"game_id"`
	Season               int       `json:"season" db:"season"`
	CompletedTradesCount int       `json:"completed_trades_count" db:"completed_trades_count"`
	Version              int       `json:"version" db:"version"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`

	// Players holds active and historical memberships, ordered by position.
	Players []TeamPlayer `json:"players" db:"-"`
}

// TeamPlayer binds a player to a team. A non-nil Until marks historical membership.
type TeamPlayer struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	TeamID   uuid.UUID  `json:"team_id" db:"team_id"`
	PlayerID uuid.UUID  `json:"player_id" db:"player_id"`
	Position int        `json:"position" db:"position"`
	Until    *time.Time `json:"until,omitempty" db:"until"`

	Player *Player `json:"player,omitempty" db:"-"`
}

// IsActive reports whether the membership is open. Until only records when a
// membership was closed, so any stamped Until is historical.
func (tp TeamPlayer) IsActive() bool {
	return tp.Until == nil
}

func (t *Team) ActivePlayers() []TeamPlayer {
	active := make([]TeamPlayer, 0, len(t.Players))
	for _, tp := range t.Players {
		if tp.IsActive() {
			active = append(active, tp)
		}
	}
	return active
}

func (t *Team) activeIndex(playerID uuid.UUID) int {
	for i, tp := range t.Players {
		if tp.PlayerID == playerID && tp.IsActive() {
			return i
		}
	}
	return -1
}

func (t *Team) HasActivePlayer(playerID uuid.UUID) bool {
	return t.activeIndex(playerID) >= 0
}

// ActiveMembership returns the active membership of playerID, if any.
func (t *Team) ActiveMembership(playerID uuid.UUID) (*TeamPlayer, bool) {
	i := t.activeIndex(playerID)
	if i < 0 {
		return nil, false
	}
	return &t.Players[i], true
}

// NextPosition is one past the highest position ever used on the roster.
func (t *Team) NextPosition() int {
	maxPos := 0
	for _, tp := range t.Players {
		if tp.Position > maxPos {
			maxPos = tp.Position
		}
	}
	return maxPos + 1
}

// RemovePlayer closes the active membership of playerID at the given instant
// and returns the player it referenced.
func (t *Team) RemovePlayer(playerID uuid.UUID, at time.Time) (*Player, bool) {
	i := t.activeIndex(playerID)
	if i < 0 {
		return nil, false
	}
	until := at
	t.Players[i].Until = &until
	return t.Players[i].Player, true
}

// AddPlayer appends an active membership at the end of the roster.
func (t *Team) AddPlayer(player *Player) TeamPlayer {
	tp := TeamPlayer{
		ID:       uuid.New(),
		TeamID:   t.ID,
		PlayerID: player.ID,
		Position: t.NextPosition(),
		Player:   player,
	}
	t.Players = append(t.Players, tp)
	return tp
}

// Clone returns a deep copy so callers never share roster state.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = make([]TeamPlayer, len(t.Players))
	for i, tp := range t.Players {
		cp := tp
		if tp.Until != nil {
			until := *tp.Until
			cp.Until = &until
		}
		if tp.Player != nil {
			p := *tp.Player
			cp.Player = &p
		}
		c.Players[i] = cp
	}
	return &c
}
