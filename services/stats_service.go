package services

import (
	"context"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TradeStatsService interface {
	GameStats(ctx context.Context, gameID uuid.UUID) (models.TradeStats, error)
}

type tradeStatsService struct {
	gameRepo  repositories.GameRepository
	tradeRepo repositories.TradeRepository
}

func NewTradeStatsService(gameRepo repositories.GameRepository, tradeRepo repositories.TradeRepository) TradeStatsService {
	return &tradeStatsService{gameRepo: gameRepo, tradeRepo: tradeRepo}
}

func (s *tradeStatsService) GameStats(ctx context.Context, gameID uuid.UUID) (models.TradeStats, error) {
	const op = "TradeStatsService.GameStats"
	if _, err := s.gameRepo.FindByID(ctx, gameID); err != nil {
		return models.TradeStats{}, mapRepositoryError(op, err, "game %s", gameID)
	}

	counts := make([]int, len(models.AllTradeStatuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range models.AllTradeStatuses {
		i, status := i, status
		g.Go(func() error {
			n, err := s.tradeRepo.CountByGameIDAndStatus(gctx, gameID, status)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.TradeStats{}, err
	}

	stats := models.TradeStats{GameID: gameID}
	for i, status := range models.AllTradeStatuses {
		switch status {
		case models.TradeStatusPending:
			stats.Pending = counts[i]
		case models.TradeStatusAccepted:
			stats.Accepted = counts[i]
		case models.TradeStatusRejected:
			stats.Rejected = counts[i]
		case models.TradeStatusCancelled:
			stats.Cancelled = counts[i]
		case models.TradeStatusCountered:
			stats.Countered = counts[i]
		}
		stats.Total += counts[i]
	}
	return stats, nil
}
