package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu        sync.Mutex
	proposed  []*models.Trade
	accepted  []*models.Trade
	rejected  []*models.Trade
	cancelled []*models.Trade
	countered [][2]*models.Trade
}

func (n *recordingNotifier) NotifyProposed(_ context.Context, t *models.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposed = append(n.proposed, t)
}

func (n *recordingNotifier) NotifyAccepted(_ context.Context, t *models.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, t)
}

func (n *recordingNotifier) NotifyRejected(_ context.Context, t *models.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, t)
}

func (n *recordingNotifier) NotifyCancelled(_ context.Context, t *models.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, t)
}

func (n *recordingNotifier) NotifyCountered(_ context.Context, original, counter *models.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.countered = append(n.countered, [2]*models.Trade{original, counter})
}

type fixture struct {
	ctx      context.Context
	store    *repositories.MemoryStore
	svc      services.TradeService
	notifier *recordingNotifier
	now      time.Time
	game     *models.Game
	season   int
}

// newFixture builds an engine over a fresh memory store with one open game.
// Options adjust the game before it is stored.
func newFixture(t require.TestingT, gameOpts ...func(*models.Game)) *fixture {
	f := &fixture{
		ctx:      context.Background(),
		store:    repositories.NewMemoryStore(),
		notifier: &recordingNotifier{},
		now:      baseTime,
		season:   2025,
	}
	f.game = f.addGame(t, "Solo Cup", gameOpts...)

	clock := func() time.Time { return f.now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = services.NewTradeService(
		f.store,
		f.store.Teams(),
		f.store.Games(),
		f.store.Trades(),
		services.NewCompositionValidator(),
		f.notifier,
		logger,
		services.WithClock(clock),
	)
	return f
}

func (f *fixture) addGame(t require.TestingT, name string, opts ...func(*models.Game)) *models.Game {
	g := &models.Game{Name: name, TradingEnabled: true}
	for _, opt := range opts {
		opt(g)
	}
	require.NoError(t, f.store.Games().Create(f.ctx, g))
	return g
}

func (f *fixture) addPlayer(t require.TestingT, name string, region models.Region) *models.Player {
	p := &models.Player{Name: name, Region: region}
	require.NoError(t, f.store.Players().Create(f.ctx, p))
	return p
}

func (f *fixture) addTeam(t require.TestingT, name string, owner uuid.UUID, players ...*models.Player) *models.Team {
	return f.addTeamInGame(t, f.game, name, owner, players...)
}

func (f *fixture) addTeamInGame(t require.TestingT, game *models.Game, name string, owner uuid.UUID, players ...*models.Player) *models.Team {
	team := &models.Team{Name: name, OwnerID: owner, GameID: game.ID, Season: f.season}
	for _, p := range players {
		team.AddPlayer(p)
	}
	require.NoError(t, f.store.Teams().Create(f.ctx, team))
	return team
}

func (f *fixture) team(t require.TestingT, id uuid.UUID) *models.Team {
	team, err := f.store.Teams().FindByID(f.ctx, id)
	require.NoError(t, err)
	return team
}

func (f *fixture) trade(t require.TestingT, id uuid.UUID) *models.Trade {
	trade, err := f.store.Trades().FindByID(f.ctx, id)
	require.NoError(t, err)
	return trade
}

func activeIDs(team *models.Team) []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, tp := range team.ActivePlayers() {
		ids = append(ids, tp.PlayerID)
	}
	return ids
}

func ids(players ...*models.Player) []uuid.UUID {
	out := make([]uuid.UUID, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }
