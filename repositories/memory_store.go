package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/google/uuid"
)

// MemoryStore keeps every aggregate in process memory. A transaction holds the
// store mutex for its whole duration and restores a snapshot when it fails, so
// transactions are serialized and all-or-nothing.
type MemoryStore struct {
	mu      sync.Mutex
	teams   map[uuid.UUID]*models.Team
	players map[uuid.UUID]*models.Player
	games   map[uuid.UUID]*models.Game
	trades  map[uuid.UUID]*models.Trade
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:   make(map[uuid.UUID]*models.Team),
		players: make(map[uuid.UUID]*models.Player),
		games:   make(map[uuid.UUID]*models.Game),
		trades:  make(map[uuid.UUID]*models.Trade),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type memTxKey struct{}

func (s *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memTxKey{}).(*MemoryStore)
	return owner == s
}

// run executes fn under the store mutex unless ctx already carries a
// transaction of this store, which holds the mutex.
func (s *MemoryStore) run(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type memorySnapshot struct {
	teams   map[uuid.UUID]*models.Team
	players map[uuid.UUID]*models.Player
	games   map[uuid.UUID]*models.Game
	trades  map[uuid.UUID]*models.Trade
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		teams:   make(map[uuid.UUID]*models.Team, len(s.teams)),
		players: make(map[uuid.UUID]*models.Player, len(s.players)),
		games:   make(map[uuid.UUID]*models.Game, len(s.games)),
		trades:  make(map[uuid.UUID]*models.Trade, len(s.trades)),
	}
	for id, t := range s.teams {
		snap.teams[id] = t.Clone()
	}
	for id, p := range s.players {
		cp := *p
		snap.players[id] = &cp
	}
	for id, g := range s.games {
		snap.games[id] = cloneGame(g)
	}
	for id, t := range s.trades {
		snap.trades[id] = t.Clone()
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.teams = snap.teams
	s.players = snap.players
	s.games = snap.games
	s.trades = snap.trades
}

// WithinTx implements Transactor.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		} else if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, memTxKey{}, s))
}

func (s *MemoryStore) Teams() TeamRepository     { return &memoryTeamRepository{s: s} }
func (s *MemoryStore) Players() PlayerRepository { return &memoryPlayerRepository{s: s} }
func (s *MemoryStore) Games() GameRepository     { return &memoryGameRepository{s: s} }
func (s *MemoryStore) Trades() TradeRepository   { return &memoryTradeRepository{s: s} }

func cloneGame(g *models.Game) *models.Game {
	c := *g
	if g.TradeDeadline != nil {
		d := *g.TradeDeadline
		c.TradeDeadline = &d
	}
	c.RegionRules = append([]models.RegionRule(nil), g.RegionRules...)
	return &c
}

// loadTeam returns a copy of the stored team with player details taken from
// the current player records.
func (s *MemoryStore) loadTeam(t *models.Team) *models.Team {
	c := t.Clone()
	for i := range c.Players {
		if p, ok := s.players[c.Players[i].PlayerID]; ok {
			cp := *p
			c.Players[i].Player = &cp
		}
	}
	return c
}

func sortTeams(teams []*models.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return teams[i].ID.String() < teams[j].ID.String()
	})
}

type memoryTeamRepository struct {
	s *MemoryStore
}

func (r *memoryTeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team *models.Team
	err := r.s.run(ctx, func() error {
		stored, ok := r.s.teams[id]
		if !ok {
			return ErrTeamNotFound
		}
		team = r.s.loadTeam(stored)
		return nil
	})
	return team, err
}

func (r *memoryTeamRepository) FindByOwnerAndSeason(ctx context.Context, ownerID uuid.UUID, season int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	err := r.s.run(ctx, func() error {
		for _, t := range r.s.teams {
			if t.OwnerID == ownerID && t.Season == season {
				teams = append(teams, r.s.loadTeam(t))
			}
		}
		return nil
	})
	sortTeams(teams)
	return teams, err
}

func (r *memoryTeamRepository) FindTeamsWithActivePlayer(ctx context.Context, playerID uuid.UUID) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	err := r.s.run(ctx, func() error {
		for _, t := range r.s.teams {
			if t.HasActivePlayer(playerID) {
				teams = append(teams, r.s.loadTeam(t))
			}
		}
		return nil
	})
	sortTeams(teams)
	return teams, err
}

func (r *memoryTeamRepository) LockForUpdate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if !r.s.inTx(ctx) {
		return fmt.Errorf("team row locks require a transaction")
	}
	for _, id := range ids {
		if _, ok := r.s.teams[id]; !ok {
			return ErrTeamNotFound
		}
	}
	return nil
}

func (r *memoryTeamRepository) checkRoster(team *models.Team) error {
	active := make(map[uuid.UUID]struct{}, len(team.Players))
	positions := make(map[int]struct{}, len(team.Players))
	for _, tp := range team.Players {
		if _, ok := r.s.players[tp.PlayerID]; !ok {
			return ErrPlayerNotFound
		}
		if _, dup := positions[tp.Position]; dup {
			return ErrRosterConflict
		}
		positions[tp.Position] = struct{}{}
		if !tp.IsActive() {
			continue
		}
		if _, dup := active[tp.PlayerID]; dup {
			return ErrRosterConflict
		}
		active[tp.PlayerID] = struct{}{}
	}
	return nil
}

func (r *memoryTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.s.run(ctx, func() error {
		if team.ID == uuid.Nil {
			team.ID = uuid.New()
		}
		if _, ok := r.s.games[team.GameID]; !ok {
			return ErrTeamGameInvalid
		}
		for _, t := range r.s.teams {
			if t.ID == team.ID {
				return fmt.Errorf("failed to create team: duplicate id %s", team.ID)
			}
			if t.OwnerID == team.OwnerID && t.Season == team.Season && t.GameID == team.GameID {
				return ErrTeamConflict
			}
		}
		for i := range team.Players {
			if team.Players[i].ID == uuid.Nil {
				team.Players[i].ID = uuid.New()
			}
			team.Players[i].TeamID = team.ID
		}
		if err := r.checkRoster(team); err != nil {
			return err
		}
		team.Version = 0
		team.CreatedAt = r.s.now()
		r.s.teams[team.ID] = team.Clone()
		return nil
	})
}

func (r *memoryTeamRepository) Save(ctx context.Context, team *models.Team) error {
	return r.s.run(ctx, func() error {
		stored, ok := r.s.teams[team.ID]
		if !ok || stored.Version != team.Version {
			return ErrTeamVersionConflict
		}
		for i := range team.Players {
			if team.Players[i].ID == uuid.Nil {
				team.Players[i].ID = uuid.New()
			}
			team.Players[i].TeamID = team.ID
		}
		if err := r.checkRoster(team); err != nil {
			return err
		}
		team.Version++
		saved := team.Clone()
		saved.CreatedAt = stored.CreatedAt
		saved.OwnerID = stored.OwnerID
		saved.GameID = stored.GameID
		saved.Season = stored.Season
		r.s.teams[team.ID] = saved
		return nil
	})
}

type memoryPlayerRepository struct {
	s *MemoryStore
}

func (r *memoryPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	return r.s.run(ctx, func() error {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if _, exists := r.s.players[p.ID]; exists {
			return fmt.Errorf("failed to create player: duplicate id %s", p.ID)
		}
		cp := *p
		r.s.players[p.ID] = &cp
		return nil
	})
}

func (r *memoryPlayerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var player *models.Player
	err := r.s.run(ctx, func() error {
		p, ok := r.s.players[id]
		if !ok {
			return ErrPlayerNotFound
		}
		cp := *p
		player = &cp
		return nil
	})
	return player, err
}

func (r *memoryPlayerRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	return r.s.run(ctx, func() error {
		p, ok := r.s.players[id]
		if !ok {
			return ErrPlayerNotFound
		}
		p.Locked = locked
		return nil
	})
}

type memoryGameRepository struct {
	s *MemoryStore
}

func (r *memoryGameRepository) Create(ctx context.Context, g *models.Game) error {
	return r.s.run(ctx, func() error {
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		if _, exists := r.s.games[g.ID]; exists {
			return fmt.Errorf("failed to create game: duplicate id %s", g.ID)
		}
		g.CreatedAt = r.s.now()
		r.s.games[g.ID] = cloneGame(g)
		return nil
	})
}

func (r *memoryGameRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var game *models.Game
	err := r.s.run(ctx, func() error {
		g, ok := r.s.games[id]
		if !ok {
			return ErrGameNotFound
		}
		game = cloneGame(g)
		return nil
	})
	return game, err
}

type memoryTradeRepository struct {
	s *MemoryStore
}

func (r *memoryTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	return r.s.run(ctx, func() error {
		if trade.ID == uuid.Nil {
			trade.ID = uuid.New()
		}
		if _, exists := r.s.trades[trade.ID]; exists {
			return fmt.Errorf("failed to create trade: duplicate id %s", trade.ID)
		}
		if _, ok := r.s.teams[trade.FromTeamID]; !ok {
			return ErrTradeTeamInvalid
		}
		if _, ok := r.s.teams[trade.ToTeamID]; !ok {
			return ErrTradeTeamInvalid
		}
		r.s.trades[trade.ID] = trade.Clone()
		return nil
	})
}

func (r *memoryTradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	var trade *models.Trade
	err := r.s.run(ctx, func() error {
		t, ok := r.s.trades[id]
		if !ok {
			return ErrTradeNotFound
		}
		trade = t.Clone()
		return nil
	})
	return trade, err
}

func (r *memoryTradeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if !r.s.inTx(ctx) {
		return nil, fmt.Errorf("trade row lock requires a transaction")
	}
	return r.FindByID(ctx, id)
}

func (r *memoryTradeRepository) UpdateStatus(ctx context.Context, trade *models.Trade) error {
	return r.s.run(ctx, func() error {
		stored, ok := r.s.trades[trade.ID]
		if !ok || stored.Status != models.TradeStatusPending {
			return ErrTradeStatusConflict
		}
		c := trade.Clone()
		stored.Status = c.Status
		stored.AcceptedAt = c.AcceptedAt
		stored.RejectedAt = c.RejectedAt
		stored.CancelledAt = c.CancelledAt
		stored.CounteredAt = c.CounteredAt
		return nil
	})
}

func (r *memoryTradeRepository) filter(ctx context.Context, keep func(*models.Trade) bool) ([]*models.Trade, error) {
	trades := make([]*models.Trade, 0)
	err := r.s.run(ctx, func() error {
		for _, t := range r.s.trades {
			if keep(t) {
				trades = append(trades, t.Clone())
			}
		}
		return nil
	})
	sort.Slice(trades, func(i, j int) bool {
		if !trades[i].ProposedAt.Equal(trades[j].ProposedAt) {
			return trades[i].ProposedAt.After(trades[j].ProposedAt)
		}
		return trades[i].ID.String() < trades[j].ID.String()
	})
	return trades, err
}

func (r *memoryTradeRepository) FindByTeamID(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	return r.filter(ctx, func(t *models.Trade) bool { return t.Involves(teamID) })
}

func (r *memoryTradeRepository) FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Trade, error) {
	return r.filter(ctx, func(t *models.Trade) bool {
		return t.Involves(teamID) && t.Status == models.TradeStatusPending
	})
}

func (r *memoryTradeRepository) CountByGameIDAndStatus(ctx context.Context, gameID uuid.UUID, status models.TradeStatus) (int, error) {
	count := 0
	err := r.s.run(ctx, func() error {
		for _, t := range r.s.trades {
			if t.GameID == gameID && t.Status == status {
				count++
			}
		}
		return nil
	})
	return count, err
}
