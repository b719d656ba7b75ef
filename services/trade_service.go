package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/google/uuid"
)

// MaxPlayersPerTrade caps offered plus requested players in a single trade.
const MaxPlayersPerTrade = 5

type ProposeTradeInput struct {
	FromTeamID         uuid.UUID   `json:"from_team_id"`
	ToTeamID           uuid.UUID   `json:"to_team_id"`
	OfferedPlayerIDs   []uuid.UUID `json:"offered_player_ids"`
	RequestedPlayerIDs []uuid.UUID `json:"requested_player_ids"`
	// ActingUserID, when set, must own FromTeamID.
	ActingUserID *uuid.UUID `json:"-"`
}

// CounterTradeInput describes a counter-offer from the recipient of TradeID.
// Offered players come from the recipient's roster, requested players from
// the original proposer's roster.
type CounterTradeInput struct {
	TradeID            uuid.UUID   `json:"-"`
	ActingUserID       uuid.UUID   `json:"-"`
	OfferedPlayerIDs   []uuid.UUID `json:"offered_player_ids"`
	RequestedPlayerIDs []uuid.UUID `json:"requested_player_ids"`
}

type TradeService interface {
	ProposeTrade(ctx context.Context, input ProposeTradeInput) (*models.Trade, error)
	AcceptTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error)
	RejectTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error)
	CancelTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error)
	CounterTrade(ctx context.Context, input CounterTradeInput) (*models.Trade, error)

	GetTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error)
	ListTradesForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error)
	ListPendingTradesForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error)
}

type TradeServiceOption func(*tradeService)

// WithClock replaces the wall clock used for deadlines and timestamps.
func WithClock(now func() time.Time) TradeServiceOption {
	return func(s *tradeService) { s.now = now }
}

type tradeService struct {
	tx        repositories.Transactor
	teamRepo  repositories.TeamRepository
	gameRepo  repositories.GameRepository
	tradeRepo repositories.TradeRepository
	validator *CompositionValidator
	notifier  TradeNotifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewTradeService(
	tx repositories.Transactor,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	tradeRepo repositories.TradeRepository,
	validator *CompositionValidator,
	notifier TradeNotifier,
	logger *slog.Logger,
	opts ...TradeServiceOption,
) TradeService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &tradeService{
		tx:        tx,
		teamRepo:  teamRepo,
		gameRepo:  gameRepo,
		tradeRepo: tradeRepo,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = NewCompositionValidator()
	}
	return s
}

func (s *tradeService) ProposeTrade(ctx context.Context, input ProposeTradeInput) (*models.Trade, error) {
	const op = "TradeService.ProposeTrade"

	if err := checkTradeShape(op, input.FromTeamID, input.ToTeamID, input.OfferedPlayerIDs, input.RequestedPlayerIDs); err != nil {
		return nil, err
	}

	var trade *models.Trade
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		from, to, game, err := s.validateProposal(ctx, op, input.FromTeamID, input.ToTeamID, input.ActingUserID,
			input.OfferedPlayerIDs, input.RequestedPlayerIDs, now)
		if err != nil {
			return err
		}

		trade = &models.Trade{
			ID:                 uuid.New(),
			GameID:             game.ID,
			FromTeamID:         from.ID,
			ToTeamID:           to.ID,
			OfferedPlayerIDs:   append([]uuid.UUID(nil), input.OfferedPlayerIDs...),
			RequestedPlayerIDs: append([]uuid.UUID(nil), input.RequestedPlayerIDs...),
			Status:             models.TradeStatusPending,
			ProposedAt:         now,
		}
		if err := s.tradeRepo.Create(ctx, trade); err != nil {
			return fmt.Errorf("%s: failed to create trade: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Trade proposed",
		slog.String("trade_id", trade.ID.String()),
		slog.String("from_team_id", trade.FromTeamID.String()),
		slog.String("to_team_id", trade.ToTeamID.String()),
		slog.Int("players", trade.PlayerCount()))
	s.safeNotify(ctx, "proposed", trade.ID, func() { s.notifier.NotifyProposed(ctx, trade.Clone()) })
	return trade, nil
}

// validateProposal runs the proposal preconditions in order against freshly
// loaded rosters and returns the loaded parties.
func (s *tradeService) validateProposal(
	ctx context.Context,
	op string,
	fromTeamID, toTeamID uuid.UUID,
	actingUserID *uuid.UUID,
	offered, requested []uuid.UUID,
	now time.Time,
) (*models.Team, *models.Team, *models.Game, error) {
	from, err := s.findTeam(ctx, op, fromTeamID)
	if err != nil {
		return nil, nil, nil, err
	}
	to, err := s.findTeam(ctx, op, toTeamID)
	if err != nil {
		return nil, nil, nil, err
	}
	if actingUserID != nil && from.OwnerID != *actingUserID {
		return nil, nil, nil, newTradeError(KindUnauthorized, op, ErrNotInitiator,
			"user %s does not own team %q", *actingUserID, from.Name)
	}

	game, err := s.findGame(ctx, op, from.GameID)
	if err != nil {
		return nil, nil, nil, err
	}
	toGame := game
	if to.GameID != from.GameID {
		if toGame, err = s.findGame(ctx, op, to.GameID); err != nil {
			return nil, nil, nil, err
		}
	}

	err = runChecks(
		func() error { return checkTradingOpen(op, game, now) },
		func() error { return checkTradingOpen(op, toGame, now) },
		func() error { return checkSameGame(op, from, to) },
		func() error { return checkTradeCap(op, from, game) },
		func() error { return checkTradeCap(op, to, game) },
		func() error { return checkOwnership(op, from, offered, to) },
		func() error { return checkOwnership(op, to, requested, from) },
		func() error { return checkNotLocked(op, from, offered) },
		func() error { return checkNotLocked(op, to, requested) },
		func() error { return checkPlayerCount(op, len(offered)+len(requested)) },
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return from, to, game, nil
}

func (s *tradeService) AcceptTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error) {
	const op = "TradeService.AcceptTrade"

	var trade *models.Trade
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		t, err := s.lockPendingTrade(ctx, op, tradeID)
		if err != nil {
			return err
		}

		if err := s.teamRepo.LockForUpdate(ctx, t.FromTeamID, t.ToTeamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return newTradeError(KindNotFound, op, ErrTeamNotFound, "team of trade %s", t.ID)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		from, err := s.findTeam(ctx, op, t.FromTeamID)
		if err != nil {
			return err
		}
		to, err := s.findTeam(ctx, op, t.ToTeamID)
		if err != nil {
			return err
		}
		if to.OwnerID != actingUserID {
			return newTradeError(KindUnauthorized, op, ErrNotRecipient,
				"user %s does not own team %q", actingUserID, to.Name)
		}
		game, err := s.findGame(ctx, op, t.GameID)
		if err != nil {
			return err
		}

		err = runChecks(
			func() error { return checkTradingOpen(op, game, now) },
			func() error { return checkTradeCap(op, from, game) },
			func() error { return checkTradeCap(op, to, game) },
			func() error { return checkOwnership(op, from, t.OfferedPlayerIDs, to) },
			func() error { return checkOwnership(op, to, t.RequestedPlayerIDs, from) },
			func() error { return checkNotLocked(op, from, t.OfferedPlayerIDs) },
			func() error { return checkNotLocked(op, to, t.RequestedPlayerIDs) },
		)
		if err != nil {
			return err
		}

		swapPlayers(from, to, t.OfferedPlayerIDs, t.RequestedPlayerIDs, now)

		if err := s.validator.Validate(from, game.RegionRules); err != nil {
			return err
		}
		if err := s.validator.Validate(to, game.RegionRules); err != nil {
			return err
		}

		from.CompletedTradesCount++
		to.CompletedTradesCount++
		if err := s.teamRepo.Save(ctx, from); err != nil {
			return fmt.Errorf("%s: failed to save team %s: %w", op, from.ID, err)
		}
		if err := s.teamRepo.Save(ctx, to); err != nil {
			return fmt.Errorf("%s: failed to save team %s: %w", op, to.ID, err)
		}

		t.MarkResolved(models.TradeStatusAccepted, now)
		if err := s.updateStatus(ctx, op, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Trade accepted",
		slog.String("trade_id", trade.ID.String()),
		slog.String("from_team_id", trade.FromTeamID.String()),
		slog.String("to_team_id", trade.ToTeamID.String()))
	s.safeNotify(ctx, "accepted", trade.ID, func() { s.notifier.NotifyAccepted(ctx, trade.Clone()) })
	return trade, nil
}

func (s *tradeService) RejectTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error) {
	trade, err := s.resolve(ctx, "TradeService.RejectTrade", tradeID, actingUserID, models.TradeStatusRejected)
	if err != nil {
		return nil, err
	}
	s.safeNotify(ctx, "rejected", trade.ID, func() { s.notifier.NotifyRejected(ctx, trade.Clone()) })
	return trade, nil
}

func (s *tradeService) CancelTrade(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error) {
	trade, err := s.resolve(ctx, "TradeService.CancelTrade", tradeID, actingUserID, models.TradeStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.safeNotify(ctx, "cancelled", trade.ID, func() { s.notifier.NotifyCancelled(ctx, trade.Clone()) })
	return trade, nil
}

// resolve moves a pending trade into REJECTED (recipient only) or CANCELLED
// (initiator only) without touching any roster.
func (s *tradeService) resolve(ctx context.Context, op string, tradeID, actingUserID uuid.UUID, status models.TradeStatus) (*models.Trade, error) {
	var trade *models.Trade
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.lockPendingTrade(ctx, op, tradeID)
		if err != nil {
			return err
		}

		partyID, reason := t.ToTeamID, ErrNotRecipient
		if status == models.TradeStatusCancelled {
			partyID, reason = t.FromTeamID, ErrNotInitiator
		}
		party, err := s.findTeam(ctx, op, partyID)
		if err != nil {
			return err
		}
		if party.OwnerID != actingUserID {
			return newTradeError(KindUnauthorized, op, reason, "user %s does not own team %q", actingUserID, party.Name)
		}

		t.MarkResolved(status, s.now())
		if err := s.updateStatus(ctx, op, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Trade resolved",
		slog.String("trade_id", trade.ID.String()),
		slog.String("status", string(trade.Status)))
	return trade, nil
}

func (s *tradeService) CounterTrade(ctx context.Context, input CounterTradeInput) (*models.Trade, error) {
	const op = "TradeService.CounterTrade"

	var original, counter *models.Trade
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		t, err := s.lockPendingTrade(ctx, op, input.TradeID)
		if err != nil {
			return err
		}

		recipient, err := s.findTeam(ctx, op, t.ToTeamID)
		if err != nil {
			return err
		}
		if recipient.OwnerID != input.ActingUserID {
			return newTradeError(KindUnauthorized, op, ErrNotRecipient,
				"user %s does not own team %q", input.ActingUserID, recipient.Name)
		}

		if err := checkTradeShape(op, t.ToTeamID, t.FromTeamID, input.OfferedPlayerIDs, input.RequestedPlayerIDs); err != nil {
			return err
		}
		actor := input.ActingUserID
		from, to, game, err := s.validateProposal(ctx, op, t.ToTeamID, t.FromTeamID, &actor,
			input.OfferedPlayerIDs, input.RequestedPlayerIDs, now)
		if err != nil {
			return err
		}

		t.MarkResolved(models.TradeStatusCountered, now)
		if err := s.updateStatus(ctx, op, t); err != nil {
			return err
		}

		originalID := t.ID
		c := &models.Trade{
			ID:                 uuid.New(),
			GameID:             game.ID,
			FromTeamID:         from.ID,
			ToTeamID:           to.ID,
			OfferedPlayerIDs:   append([]uuid.UUID(nil), input.OfferedPlayerIDs...),
			RequestedPlayerIDs: append([]uuid.UUID(nil), input.RequestedPlayerIDs...),
			Status:             models.TradeStatusPending,
			ProposedAt:         now,
			OriginalTradeID:    &originalID,
		}
		if err := s.tradeRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("%s: failed to create counter trade: %w", op, err)
		}
		original, counter = t, c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Trade countered",
		slog.String("trade_id", original.ID.String()),
		slog.String("counter_trade_id", counter.ID.String()))
	s.safeNotify(ctx, "countered", original.ID, func() { s.notifier.NotifyCountered(ctx, original.Clone(), counter.Clone()) })
	return counter, nil
}

func (s *tradeService) GetTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error) {
	const op = "TradeService.GetTrade"
	t, err := s.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		if errors.Is(err, repositories.ErrTradeNotFound) {
			return nil, newTradeError(KindNotFound, op, ErrTradeNotFound, "trade %s", tradeID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (s *tradeService) ListTradesForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	const op = "TradeService.ListTradesForTeam"
	if _, err := s.findTeam(ctx, op, teamID); err != nil {
		return nil, err
	}
	trades, err := s.tradeRepo.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trades, nil
}

func (s *tradeService) ListPendingTradesForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	const op = "TradeService.ListPendingTradesForTeam"
	if _, err := s.findTeam(ctx, op, teamID); err != nil {
		return nil, err
	}
	trades, err := s.tradeRepo.FindPendingForTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trades, nil
}

func (s *tradeService) findTeam(ctx context.Context, op string, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, newTradeError(KindNotFound, op, ErrTeamNotFound, "team %s", id)
		}
		return nil, fmt.Errorf("%s: failed to load team %s: %w", op, id, err)
	}
	return team, nil
}

func (s *tradeService) findGame(ctx context.Context, op string, id uuid.UUID) (*models.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, newTradeError(KindNotFound, op, ErrGameNotFound, "game %s", id)
		}
		return nil, fmt.Errorf("%s: failed to load game %s: %w", op, id, err)
	}
	return game, nil
}

// lockPendingTrade reads the trade under a row lock and requires it to be PENDING.
func (s *tradeService) lockPendingTrade(ctx context.Context, op string, id uuid.UUID) (*models.Trade, error) {
	t, err := s.tradeRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTradeNotFound) {
			return nil, newTradeError(KindNotFound, op, ErrTradeNotFound, "trade %s", id)
		}
		return nil, fmt.Errorf("%s: failed to load trade %s: %w", op, id, err)
	}
	if t.Status != models.TradeStatusPending {
		return nil, newTradeError(KindInvalidState, op, ErrTradeAlreadyProcessed, "trade %s is %s", t.ID, t.Status)
	}
	return t, nil
}

func (s *tradeService) updateStatus(ctx context.Context, op string, t *models.Trade) error {
	if err := s.tradeRepo.UpdateStatus(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTradeStatusConflict) {
			return newTradeError(KindInvalidState, op, ErrTradeAlreadyProcessed, "trade %s", t.ID)
		}
		return fmt.Errorf("%s: failed to update trade %s: %w", op, t.ID, err)
	}
	return nil
}

// safeNotify runs a notifier call after commit. Failures never reach the caller.
func (s *tradeService) safeNotify(ctx context.Context, event string, tradeID uuid.UUID, call func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WarnContext(ctx, "Trade notifier panicked",
				slog.String("event", event),
				slog.String("trade_id", tradeID.String()),
				slog.Any("panic", r))
		}
	}()
	call()
}

// swapPlayers closes the memberships of the moving players on their current
// teams and appends them to the end of the receiving rosters.
func swapPlayers(from, to *models.Team, offered, requested []uuid.UUID, at time.Time) {
	toFrom := make([]*models.Player, 0, len(requested))
	toTo := make([]*models.Player, 0, len(offered))

	for _, id := range offered {
		if p, ok := from.RemovePlayer(id, at); ok {
			toTo = append(toTo, playerOrStub(p, id))
		}
	}
	for _, id := range requested {
		if p, ok := to.RemovePlayer(id, at); ok {
			toFrom = append(toFrom, playerOrStub(p, id))
		}
	}
	for _, p := range toTo {
		to.AddPlayer(p)
	}
	for _, p := range toFrom {
		from.AddPlayer(p)
	}
}

func playerOrStub(p *models.Player, id uuid.UUID) *models.Player {
	if p == nil {
		return &models.Player{ID: id}
	}
	cp := *p
	return &cp
}
