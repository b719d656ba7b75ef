package services

import (
	"context"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/google/uuid"
)

// RosterService exposes read access to rosters.
type RosterService interface {
	GetTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	ListTeamsForOwner(ctx context.Context, ownerID uuid.UUID, season int) ([]*models.Team, error)
	ListTeamsWithActivePlayer(ctx context.Context, playerID uuid.UUID) ([]*models.Team, error)
}

type rosterService struct {
	teamRepo repositories.TeamRepository
}

func NewRosterService(teamRepo repositories.TeamRepository) RosterService {
	return &rosterService{teamRepo: teamRepo}
}

func (s *rosterService) GetTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	const op = "RosterService.GetTeam"
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, mapRepositoryError(op, err, "team %s", teamID)
	}
	return team, nil
}

func (s *rosterService) ListTeamsForOwner(ctx context.Context, ownerID uuid.UUID, season int) ([]*models.Team, error) {
	const op = "RosterService.ListTeamsForOwner"
	if season <= 0 {
		return nil, newTradeError(KindInvalidRequest, op, ErrInvalidSeason, "season %d", season)
	}
	teams, err := s.teamRepo.FindByOwnerAndSeason(ctx, ownerID, season)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return teams, nil
}

func (s *rosterService) ListTeamsWithActivePlayer(ctx context.Context, playerID uuid.UUID) ([]*models.Team, error) {
	const op = "RosterService.ListTeamsWithActivePlayer"
	teams, err := s.teamRepo.FindTeamsWithActivePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return teams, nil
}
