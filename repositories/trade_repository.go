package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrTradeNotFound       = errors.New("trade not found")
	ErrTradeStatusConflict = errors.New("trade is no longer pending")
	ErrTradeTeamInvalid    = errors.New("trade team conflict or invalid")
)

type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	// FindByIDForUpdate reads the trade and holds its row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	// UpdateStatus writes a transition out of PENDING. It fails with
	// ErrTradeStatusConflict when the stored trade is no longer pending.
	UpdateStatus(ctx context.Context, trade *models.Trade) error
	FindByTeamID(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error)
	FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error)
	CountByGameIDAndStatus(ctx context.Context, gameID uuid.UUID, status models.TradeStatus) (int, error)
}

type postgresTradeRepository struct {
	db *sql.DB
}

func NewPostgresTradeRepository(db *sql.DB) TradeRepository {
	return &postgresTradeRepository{db: db}
}

func (r *postgresTradeRepository) getExecutor(ctx context.Context) SQLExecutor {
	return executorFromContext(ctx, r.db)
}

const tradeColumns = `id, game_id, from_team_id, to_team_id, offered_player_ids, requested_player_ids,
	status, proposed_at, accepted_at, rejected_at, cancelled_at, countered_at, original_trade_id`

func scanTrade(rowScanner interface{ Scan(...interface{}) error }) (*models.Trade, error) {
	var (
		t                             models.Trade
		offered, requested            pq.StringArray
		accepted, rejected, cancelled sql.NullTime
		countered                     sql.NullTime
		original                      uuid.NullUUID
	)
	err := rowScanner.Scan(
		&t.ID, &t.GameID, &t.FromTeamID, &t.ToTeamID, &offered, &requested,
		&t.Status, &t.ProposedAt, &accepted, &rejected, &cancelled, &countered, &original,
	)
	if err != nil {
		return nil, err
	}
	if t.OfferedPlayerIDs, err = stringsToUUIDs(offered); err != nil {
		return nil, err
	}
	if t.RequestedPlayerIDs, err = stringsToUUIDs(requested); err != nil {
		return nil, err
	}
	t.AcceptedAt = nullTimeToPtr(accepted)
	t.RejectedAt = nullTimeToPtr(rejected)
	t.CancelledAt = nullTimeToPtr(cancelled)
	t.CounteredAt = nullTimeToPtr(countered)
	if original.Valid {
		id := original.UUID
		t.OriginalTradeID = &id
	}
	return &t, nil
}

func (r *postgresTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	executor := r.getExecutor(ctx)
	if trade.ID == uuid.Nil {
		trade.ID = uuid.New()
	}
	var original uuid.NullUUID
	if trade.OriginalTradeID != nil {
		original = uuid.NullUUID{UUID: *trade.OriginalTradeID, Valid: true}
	}

	query := `
		INSERT INTO trades (id, game_id, from_team_id, to_team_id, offered_player_ids, requested_player_ids,
		                    status, proposed_at, original_trade_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := executor.ExecContext(ctx, query,
		trade.ID, trade.GameID, trade.FromTeamID, trade.ToTeamID,
		uuidsToStrings(trade.OfferedPlayerIDs), uuidsToStrings(trade.RequestedPlayerIDs),
		trade.Status, trade.ProposedAt, original,
	)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return ErrTradeTeamInvalid
		}
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (r *postgresTradeRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Trade, error) {
	trade, err := scanTrade(r.getExecutor(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to find trade: %w", err)
	}
	return trade, nil
}

func (r *postgresTradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return r.findOne(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
}

func (r *postgresTradeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if _, ok := txFromContext(ctx); !ok {
		return nil, fmt.Errorf("trade row lock requires a transaction")
	}
	return r.findOne(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTradeRepository) UpdateStatus(ctx context.Context, trade *models.Trade) error {
	executor := r.getExecutor(ctx)
	query := `
		UPDATE trades
		SET status = $1, accepted_at = $2, rejected_at = $3, cancelled_at = $4, countered_at = $5
		WHERE id = $6 AND status = $7`
	result, err := executor.ExecContext(ctx, query,
		trade.Status, trade.AcceptedAt, trade.RejectedAt, trade.CancelledAt, trade.CounteredAt,
		trade.ID, models.TradeStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade %s status: %w", trade.ID, err)
	}
	return checkAffectedRows(result, ErrTradeStatusConflict)
}

func (r *postgresTradeRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Trade, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*models.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

func (r *postgresTradeRepository) FindByTeamID(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades
		WHERE from_team_id = $1 OR to_team_id = $1
		ORDER BY proposed_at DESC`
	return r.list(ctx, query, teamID)
}

func (r *postgresTradeRepository) FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades
		WHERE (from_team_id = $1 OR to_team_id = $1) AND status = $2
		ORDER BY proposed_at DESC`
	return r.list(ctx, query, teamID, models.TradeStatusPending)
}

func (r *postgresTradeRepository) CountByGameIDAndStatus(ctx context.Context, gameID uuid.UUID, status models.TradeStatus) (int, error) {
	var count int
	err := r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE game_id = $1 AND status = $2`, gameID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s trades for game %s: %w", status, gameID, err)
	}
	return count, nil
}
