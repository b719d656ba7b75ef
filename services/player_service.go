package services

import (
	"context"
	"log/slog"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/google/uuid"
)

type PlayerService interface {
	GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error)
	// SetLocked freezes or releases a player for trading.
	SetLocked(ctx context.Context, playerID uuid.UUID, locked bool) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{playerRepo: playerRepo, logger: logger}
}

func (s *playerService) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	p, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, mapRepositoryError("PlayerService.GetPlayer", err, "player %s", playerID)
	}
	return p, nil
}

func (s *playerService) SetLocked(ctx context.Context, playerID uuid.UUID, locked bool) (*models.Player, error) {
	const op = "PlayerService.SetLocked"
	if err := s.playerRepo.SetLocked(ctx, playerID, locked); err != nil {
		return nil, mapRepositoryError(op, err, "player %s", playerID)
	}
	s.logger.InfoContext(ctx, "Player lock changed",
		slog.String("player_id", playerID.String()),
		slog.Bool("locked", locked))
	return s.GetPlayer(ctx, playerID)
}
