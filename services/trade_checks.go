package services

import (
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

// runChecks evaluates checks in order and returns the first failure.
func runChecks(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func checkTradeShape(op string, fromTeamID, toTeamID uuid.UUID, offered, requested []uuid.UUID) error {
	if fromTeamID == toTeamID {
		return newTradeError(KindInvalidRequest, op, ErrSameTeam, "team %s", fromTeamID)
	}
	if len(offered)+len(requested) == 0 {
		return newTradeError(KindInvalidRequest, op, ErrNoPlayers, "")
	}
	seen := make(map[uuid.UUID]struct{}, len(offered)+len(requested))
	for _, ids := range [][]uuid.UUID{offered, requested} {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return newTradeError(KindInvalidRequest, op, ErrDuplicatePlayer, "player %s", id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func checkTradingOpen(op string, game *models.Game, at time.Time) error {
	if !game.TradingEnabled {
		return newTradeError(KindTradingDisabled, op, ErrTradingDisabled, "game %q", game.Name)
	}
	if game.TradeWindowClosed(at) {
		return newTradeError(KindDeadlinePassed, op, ErrTradeDeadlinePassed,
			"game %q closed trading at %s", game.Name, game.TradeDeadline.Format(time.RFC3339))
	}
	return nil
}

func checkSameGame(op string, from, to *models.Team) error {
	if from.GameID != to.GameID {
		return newTradeError(KindInvalidRequest, op, ErrCrossGameTrade,
			"team %q plays game %s, team %q plays game %s", from.Name, from.GameID, to.Name, to.GameID)
	}
	return nil
}

func checkTradeCap(op string, team *models.Team, game *models.Game) error {
	if game.MaxTradesPerTeam > 0 && team.CompletedTradesCount >= game.MaxTradesPerTeam {
		return newTradeError(KindLimitExceeded, op, ErrTradeLimitReached,
			"team %q completed %d of %d trades", team.Name, team.CompletedTradesCount, game.MaxTradesPerTeam)
	}
	return nil
}

// checkOwnership requires every id to be on team. Rosters in known are
// searched for a display name when an id is missing.
func checkOwnership(op string, team *models.Team, playerIDs []uuid.UUID, known ...*models.Team) error {
	for _, id := range playerIDs {
		if team.HasActivePlayer(id) {
			continue
		}
		if name, ok := playerName(id, append(known, team)...); ok {
			return newTradeError(KindOwnershipMismatch, op, ErrPlayerNotOnTeam,
				"player %q (%s) is not on team %q", name, id, team.Name)
		}
		return newTradeError(KindOwnershipMismatch, op, ErrPlayerNotOnTeam, "player %s is not on team %q", id, team.Name)
	}
	return nil
}

func playerName(id uuid.UUID, teams ...*models.Team) (string, bool) {
	for _, team := range teams {
		if team == nil {
			continue
		}
		for _, tp := range team.Players {
			if tp.PlayerID == id && tp.Player != nil && tp.Player.Name != "" {
				return tp.Player.Name, true
			}
		}
	}
	return "", false
}

func checkNotLocked(op string, team *models.Team, playerIDs []uuid.UUID) error {
	for _, id := range playerIDs {
		tp, ok := team.ActiveMembership(id)
		if !ok || tp.Player == nil || !tp.Player.Locked {
			continue
		}
		return newTradeError(KindLimitExceeded, op, ErrPlayerLocked, "player %q on team %q", tp.Player.Name, team.Name)
	}
	return nil
}

func checkPlayerCount(op string, n int) error {
	if n > MaxPlayersPerTrade {
		return newTradeError(KindLimitExceeded, op, ErrTooManyPlayers, "%d players, limit is %d", n, MaxPlayersPerTrade)
	}
	return nil
}
