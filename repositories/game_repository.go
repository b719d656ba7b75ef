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
	ErrGameNotFound = errors.New("game not found")
)

type GameRepository interface {
	Create(ctx context.Context, g *models.Game) error
	// FindByID loads the game together with its region rules.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, g *models.Game) error {
	executor := executorFromContext(ctx, r.db)
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	query := `
		INSERT INTO games (id, name, trading_enabled, trade_deadline, max_trades_per_team)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := executor.QueryRowContext(ctx, query, g.ID, g.Name, g.TradingEnabled, g.TradeDeadline, g.MaxTradesPerTeam).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	for _, rule := range g.RegionRules {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO game_region_rules (game_id, region, max_players) VALUES ($1, $2, $3)`,
			g.ID, rule.Region, rule.MaxPlayers)
		if err != nil {
			return fmt.Errorf("failed to create region rule %s for game %s: %w", rule.Region, g.ID, err)
		}
	}
	return nil
}

func (r *postgresGameRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	executor := executorFromContext(ctx, r.db)
	query := `SELECT id, name, trading_enabled, trade_deadline, max_trades_per_team, created_at FROM games WHERE id = $1`

	var g models.Game
	var deadline sql.NullTime
	err := executor.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.TradingEnabled, &deadline, &g.MaxTradesPerTeam, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}
	g.TradeDeadline = nullTimeToPtr(deadline)

	rows, err := executor.QueryContext(ctx,
		`SELECT region, max_players FROM game_region_rules WHERE game_id = $1 ORDER BY region`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load region rules for game %s: %w", id, err)
	}
	defer rows.Close()

	g.RegionRules = make([]models.RegionRule, 0)
	for rows.Next() {
		var rule models.RegionRule
		if err := rows.Scan(&rule.Region, &rule.MaxPlayers); err != nil {
			return nil, fmt.Errorf("failed to scan region rule: %w", err)
		}
		g.RegionRules = append(g.RegionRules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rules: %w", err)
	}
	return &g, nil
}
