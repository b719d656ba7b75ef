package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamConflict        = errors.New("team conflict: owner already has a roster for this game and season")
	ErrTeamGameInvalid     = errors.New("team game conflict or invalid")
	ErrTeamVersionConflict = errors.New("team was modified concurrently")
	ErrRosterConflict      = errors.New("roster conflict: duplicate active player or position")
)

type TeamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	FindByOwnerAndSeason(ctx context.Context, ownerID uuid.UUID, season int) ([]*models.Team, error)
	FindTeamsWithActivePlayer(ctx context.Context, playerID uuid.UUID) ([]*models.Team, error)
	// LockForUpdate acquires row locks on the given teams in ascending id order.
	// It must be called inside a transaction.
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) error
	Create(ctx context.Context, team *models.Team) error
	// Save persists the team row and its memberships. It fails with
	// ErrTeamVersionConflict when team.Version is stale and bumps it on success.
	Save(ctx context.Context, team *models.Team) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(ctx context.Context) SQLExecutor {
	return executorFromContext(ctx, r.db)
}

const teamColumns = `t.id, t.name, t.owner_id, t.game_id, t.season, t.completed_trades_count, t.version, t.created_at`

func scanTeam(rowScanner interface{ Scan(...interface{}) error }, t *models.Team) error {
	return rowScanner.Scan(&t.ID, &t.Name, &t.OwnerID, &t.GameID, &t.Season, &t.CompletedTradesCount, &t.Version, &t.CreatedAt)
}

func (r *postgresTeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	executor := r.getExecutor(ctx)
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.id = $1`

	var team models.Team
	if err := scanTeam(executor.QueryRowContext(ctx, query, id), &team); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	if err := r.loadMemberships(ctx, executor, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) FindByOwnerAndSeason(ctx context.Context, ownerID uuid.UUID, season int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.owner_id = $1 AND t.season = $2 ORDER BY t.created_at ASC`
	return r.listTeams(ctx, query, ownerID, season)
}

func (r *postgresTeamRepository) FindTeamsWithActivePlayer(ctx context.Context, playerID uuid.UUID) ([]*models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams t
		WHERE EXISTS (
			SELECT 1 FROM team_players tp
			WHERE tp.team_id = t.id AND tp.player_id = $1 AND tp.until IS NULL
		)
		ORDER BY t.created_at ASC`
	return r.listTeams(ctx, query, playerID)
}

func (r *postgresTeamRepository) listTeams(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	executor := r.getExecutor(ctx)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := scanTeam(rows, &team); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	rows.Close()

	// Memberships are loaded after the cursor is closed; a transaction
	// connection cannot serve two result sets at once.
	for _, team := range teams {
		if err := r.loadMemberships(ctx, executor, team); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *postgresTeamRepository) loadMemberships(ctx context.Context, executor SQLExecutor, team *models.Team) error {
	query := `
		SELECT tp.id, tp.team_id, tp.player_id, tp.position, tp.until,
		       p.name, p.region, p.locked
		FROM team_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.team_id = $1
		ORDER BY tp.position ASC`
	rows, err := executor.QueryContext(ctx, query, team.ID)
	if err != nil {
		return fmt.Errorf("failed to load roster of team %s: %w", team.ID, err)
	}
	defer rows.Close()

	team.Players = make([]models.TeamPlayer, 0)
	for rows.Next() {
		var tp models.TeamPlayer
		var until sql.NullTime
		p := &models.Player{}
		if err := rows.Scan(&tp.ID, &tp.TeamID, &tp.PlayerID, &tp.Position, &until, &p.Name, &p.Region, &p.Locked); err != nil {
			return fmt.Errorf("failed to scan roster entry: %w", err)
		}
		p.ID = tp.PlayerID
		tp.Until = nullTimeToPtr(until)
		tp.Player = p
		team.Players = append(team.Players, tp)
	}
	return rows.Err()
}

func (r *postgresTeamRepository) LockForUpdate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, ok := txFromContext(ctx); !ok {
		return fmt.Errorf("team row locks require a transaction")
	}
	executor := r.getExecutor(ctx)

	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	// One statement per row keeps the acquisition order explicit.
	for _, id := range sorted {
		var locked uuid.UUID
		err := executor.QueryRowContext(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to lock team %s: %w", id, err)
		}
	}
	return nil
}

// Create inserts the team row and its memberships atomically, joining the
// caller's transaction when there is one.
func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	return r.withinTx(ctx, func(ctx context.Context) error {
		return r.create(ctx, team)
	})
}

func (r *postgresTeamRepository) create(ctx context.Context, team *models.Team) error {
	executor := r.getExecutor(ctx)
	query := `
		INSERT INTO teams (id, name, owner_id, game_id, season, completed_trades_count, version)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING version, created_at`
	err := executor.QueryRowContext(ctx, query,
		team.ID, team.Name, team.OwnerID, team.GameID, team.Season, team.CompletedTradesCount,
	).Scan(&team.Version, &team.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				if strings.Contains(constraint, "owner") {
					return ErrTeamConflict
				}
			case pqForeignKeyViolation:
				return ErrTeamGameInvalid
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return r.upsertMemberships(ctx, executor, team)
}

func (r *postgresTeamRepository) Save(ctx context.Context, team *models.Team) error {
	err := r.withinTx(ctx, func(ctx context.Context) error {
		executor := r.getExecutor(ctx)
		query := `
			UPDATE teams
			SET name = $1, completed_trades_count = $2, version = version + 1
			WHERE id = $3 AND version = $4`
		result, err := executor.ExecContext(ctx, query, team.Name, team.CompletedTradesCount, team.ID, team.Version)
		if err != nil {
			return fmt.Errorf("failed to update team %s: %w", team.ID, err)
		}
		if err := checkAffectedRows(result, ErrTeamVersionConflict); err != nil {
			return err
		}
		return r.upsertMemberships(ctx, executor, team)
	})
	if err != nil {
		return err
	}
	team.Version++
	return nil
}

func (r *postgresTeamRepository) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return (&postgresTransactor{db: r.db}).WithinTx(ctx, fn)
}

func (r *postgresTeamRepository) upsertMemberships(ctx context.Context, executor SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO team_players (id, team_id, player_id, position, until)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, until = EXCLUDED.until`
	for i := range team.Players {
		tp := &team.Players[i]
		if tp.ID == uuid.Nil {
			tp.ID = uuid.New()
		}
		tp.TeamID = team.ID
		if _, err := executor.ExecContext(ctx, query, tp.ID, tp.TeamID, tp.PlayerID, tp.Position, tp.Until); err != nil {
			if code, _, ok := pqErrorCode(err); ok {
				switch code {
				case pqUniqueViolation:
					return ErrRosterConflict
				case pqForeignKeyViolation:
					return ErrPlayerNotFound
				}
			}
			return fmt.Errorf("failed to save roster entry for player %s on team %s: %w", tp.PlayerID, team.ID, err)
		}
	}
	return nil
}
