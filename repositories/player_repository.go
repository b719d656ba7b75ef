package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
)

type PlayerRepository interface {
	Create(ctx context.Context, p *models.Player) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	SetLocked(ctx context.Context, id uuid.UUID, locked bool) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	executor := executorFromContext(ctx, r.db)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `INSERT INTO players (id, name, region, locked) VALUES ($1, $2, $3, $4)`
	if _, err := executor.ExecContext(ctx, query, p.ID, p.Name, p.Region, p.Locked); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	executor := executorFromContext(ctx, r.db)
	query := `SELECT id, name, region, locked FROM players WHERE id = $1`

	var p models.Player
	err := executor.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Region, &p.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	executor := executorFromContext(ctx, r.db)
	result, err := executor.ExecContext(ctx, `UPDATE players SET locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return fmt.Errorf("failed to update lock of player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
