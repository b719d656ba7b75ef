package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/handlers"
	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/notifications"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("routes-test-secret")

type apiFixture struct {
	t      *testing.T
	server *httptest.Server
	store  *repositories.MemoryStore
	hub    *notifications.Hub
	game   *models.Game
	ownerA uuid.UUID
	ownerB uuid.UUID
	teamA  *models.Team
	teamB  *models.Team
	pa     *models.Player
	pb     *models.Player
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	hub := notifications.NewHub(logger)
	go hub.Run(ctx)

	f := &apiFixture{t: t, store: store, hub: hub, ownerA: uuid.New(), ownerB: uuid.New()}
	f.game = &models.Game{Name: "Solo Cup", TradingEnabled: true}
	require.NoError(t, store.Games().Create(ctx, f.game))
	f.pa = f.addPlayer("Bugha", models.RegionNAC)
	f.pb = f.addPlayer("Mongraal", models.RegionEU)
	f.teamA = f.addTeam("Team A", f.ownerA, f.pa)
	f.teamB = f.addTeam("Team B", f.ownerB, f.pb)

	notifier := notifications.NewNotifier(logger, notifications.HubSink{Hub: hub})
	tradeService := services.NewTradeService(store, store.Teams(), store.Games(), store.Trades(), nil, notifier, logger)
	rosterService := services.NewRosterService(store.Teams())
	playerService := services.NewPlayerService(store.Players(), logger)
	statsService := services.NewTradeStatsService(store.Games(), store.Trades())

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Trade:     handlers.NewTradeHandler(tradeService, logger),
		Team:      handlers.NewTeamHandler(rosterService, tradeService, logger),
		Player:    handlers.NewPlayerHandler(playerService, rosterService, logger),
		Stats:     handlers.NewStatsHandler(statsService, logger),
		WebSocket: handlers.NewWebSocketHandler(hub, rosterService, nil, logger),
	}, Options{JWTSecret: testSecret})

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *apiFixture) addPlayer(name string, region models.Region) *models.Player {
	p := &models.Player{Name: name, Region: region}
	require.NoError(f.t, f.store.Players().Create(context.Background(), p))
	return p
}

func (f *apiFixture) addTeam(name string, owner uuid.UUID, players ...*models.Player) *models.Team {
	team := &models.Team{Name: name, OwnerID: owner, GameID: f.game.ID, Season: 2025}
	for _, p := range players {
		team.AddPlayer(p)
	}
	require.NoError(f.t, f.store.Teams().Create(context.Background(), team))
	return team
}

func (f *apiFixture) token(userID uuid.UUID, role string) string {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(f.t, err)
	return token
}

// do sends a request as userID and decodes the JSON response into out when
// out is non-nil.
func (f *apiFixture) do(method, path string, userID uuid.UUID, body interface{}, out interface{}) int {
	return f.doWithRole(method, path, userID, "", body, out)
}

func (f *apiFixture) doWithRole(method, path string, userID uuid.UUID, role string, body interface{}, out interface{}) int {
	f.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+f.token(userID, role))
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type tradeEnvelope struct {
	Trade models.Trade `json:"trade"`
}

type errorEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *apiFixture) propose(actor uuid.UUID) models.Trade {
	f.t.Helper()
	var env tradeEnvelope
	status := f.do(http.MethodPost, "/api/trades", actor, map[string]interface{}{
		"from_team_id":         f.teamA.ID,
		"to_team_id":           f.teamB.ID,
		"offered_player_ids":   []uuid.UUID{f.pa.ID},
		"requested_player_ids": []uuid.UUID{f.pb.ID},
	}, &env)
	require.Equal(f.t, http.StatusCreated, status)
	return env.Trade
}

func TestTradeLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	trade := f.propose(f.ownerA)
	assert.Equal(t, models.TradeStatusPending, trade.Status)
	assert.Equal(t, f.game.ID, trade.GameID)

	var errEnv errorEnvelope
	status := f.do(http.MethodPost, "/api/trades/"+trade.ID.String()+"/accept", f.ownerA, nil, &errEnv)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, string(services.KindUnauthorized), errEnv.Error.Kind)
	assert.Equal(t, services.ErrNotRecipient.Error(), errEnv.Error.Reason)

	var accepted tradeEnvelope
	status = f.do(http.MethodPost, "/api/trades/"+trade.ID.String()+"/accept", f.ownerB, nil, &accepted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.TradeStatusAccepted, accepted.Trade.Status)
	assert.NotNil(t, accepted.Trade.AcceptedAt)

	status = f.do(http.MethodPost, "/api/trades/"+trade.ID.String()+"/cancel", f.ownerA, nil, &errEnv)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(services.KindInvalidState), errEnv.Error.Kind)

	var playerTeams struct {
		Teams []models.Team `json:"teams"`
	}
	status = f.do(http.MethodGet, "/api/players/"+f.pa.ID.String()+"/teams", f.ownerA, nil, &playerTeams)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, playerTeams.Teams, 1)
	assert.Equal(t, f.teamB.ID, playerTeams.Teams[0].ID)

	var history struct {
		Trades []models.Trade `json:"trades"`
	}
	status = f.do(http.MethodGet, "/api/teams/"+f.teamA.ID.String()+"/trades", f.ownerA, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.Trades, 1)

	var pending struct {
		Trades []models.Trade `json:"trades"`
	}
	status = f.do(http.MethodGet, "/api/teams/"+f.teamA.ID.String()+"/trades/pending", f.ownerA, nil, &pending)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, pending.Trades)

	var stats struct {
		Stats models.TradeStats `json:"stats"`
	}
	status = f.do(http.MethodGet, "/api/games/"+f.game.ID.String()+"/trade-stats", f.ownerA, nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.Stats.Accepted)
	assert.Equal(t, 1, stats.Stats.Total)
}

func TestCounterOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	trade := f.propose(f.ownerA)

	var counter tradeEnvelope
	status := f.do(http.MethodPost, "/api/trades/"+trade.ID.String()+"/counter", f.ownerB, map[string]interface{}{
		"offered_player_ids": []uuid.UUID{f.pb.ID},
	}, &counter)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, f.teamB.ID, counter.Trade.FromTeamID)
	assert.Equal(t, f.teamA.ID, counter.Trade.ToTeamID)
	require.NotNil(t, counter.Trade.OriginalTradeID)
	assert.Equal(t, trade.ID, *counter.Trade.OriginalTradeID)

	var original tradeEnvelope
	status = f.do(http.MethodGet, "/api/trades/"+trade.ID.String(), f.ownerA, nil, &original)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.TradeStatusCountered, original.Trade.Status)
}

func TestRequestErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   uuid.UUID
		body   interface{}
		want   int
	}{
		{name: "missing token", method: http.MethodGet, path: "/api/teams/" + f.teamA.ID.String(), want: http.StatusUnauthorized},
		{name: "malformed trade id", method: http.MethodGet, path: "/api/trades/not-a-uuid", user: f.ownerA, want: http.StatusBadRequest},
		{name: "unknown trade", method: http.MethodGet, path: "/api/trades/" + uuid.NewString(), user: f.ownerA, want: http.StatusNotFound},
		{name: "unknown team", method: http.MethodGet, path: "/api/teams/" + uuid.NewString(), user: f.ownerA, want: http.StatusNotFound},
		{name: "badly formed json", method: http.MethodPost, path: "/api/trades", user: f.ownerA, body: `{"from_team_id":`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/trades", user: f.ownerA, body: `{"team":"x"}`, want: http.StatusBadRequest},
		{name: "propose for someone else's team", method: http.MethodPost, path: "/api/trades", user: f.ownerB, body: map[string]interface{}{
			"from_team_id":       f.teamA.ID,
			"to_team_id":         f.teamB.ID,
			"offered_player_ids": []uuid.UUID{f.pa.ID},
		}, want: http.StatusForbidden},
		{name: "player not on team", method: http.MethodPost, path: "/api/trades", user: f.ownerA, body: map[string]interface{}{
			"from_team_id":       f.teamA.ID,
			"to_team_id":         f.teamB.ID,
			"offered_player_ids": []uuid.UUID{f.pb.ID},
		}, want: http.StatusConflict},
		{name: "empty trade", method: http.MethodPost, path: "/api/trades", user: f.ownerA, body: map[string]interface{}{
			"from_team_id": f.teamA.ID,
			"to_team_id":   f.teamB.ID,
		}, want: http.StatusBadRequest},
		{name: "season missing", method: http.MethodGet, path: "/api/users/" + f.ownerA.String() + "/teams", user: f.ownerA, want: http.StatusBadRequest},
		{name: "season not positive", method: http.MethodGet, path: "/api/users/" + f.ownerA.String() + "/teams?season=0", user: f.ownerA, want: http.StatusBadRequest},
		{name: "stats for unknown game", method: http.MethodGet, path: "/api/games/" + uuid.NewString() + "/trade-stats", user: f.ownerA, want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status := f.do(tc.method, tc.path, tc.user, tc.body, nil)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestUserTeamsBySeason(t *testing.T) {
	f := newAPIFixture(t)

	var out struct {
		Teams []models.Team `json:"teams"`
	}
	status := f.do(http.MethodGet, "/api/users/"+f.ownerA.String()+"/teams?season=2025", f.ownerA, nil, &out)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out.Teams, 1)
	assert.Equal(t, f.teamA.ID, out.Teams[0].ID)

	status = f.do(http.MethodGet, "/api/users/"+f.ownerA.String()+"/teams?season=2024", f.ownerA, nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, out.Teams)
}

func TestPlayerLockRequiresAdmin(t *testing.T) {
	f := newAPIFixture(t)
	path := "/api/players/" + f.pa.ID.String() + "/lock"

	status := f.doWithRole(http.MethodPut, path, f.ownerA, "player", map[string]bool{"locked": true}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var out struct {
		Player models.Player `json:"player"`
	}
	status = f.doWithRole(http.MethodPut, path, uuid.New(), "admin", map[string]bool{"locked": true}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Player.Locked)

	var errEnv errorEnvelope
	status = f.do(http.MethodPost, "/api/trades", f.ownerA, map[string]interface{}{
		"from_team_id":       f.teamA.ID,
		"to_team_id":         f.teamB.ID,
		"offered_player_ids": []uuid.UUID{f.pa.ID},
	}, &errEnv)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, services.ErrPlayerLocked.Error(), errEnv.Error.Reason)
}

func TestPublicEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestWebSocketReceivesTeamEvents(t *testing.T) {
	f := newAPIFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/teams/" + f.teamB.ID.String() +
		"?access_token=" + f.token(f.ownerB, "")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	room := notifications.TeamRoom(f.teamB.ID)
	require.Eventually(t, func() bool { return f.hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	trade := f.propose(f.ownerA)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string                   `json:"type"`
		Payload notifications.TradeEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(notifications.EventTradeProposed), msg.Type)
	assert.Equal(t, trade.ID, msg.Payload.Trade.ID)
}

func TestWebSocketRejectsUnknownTeam(t *testing.T) {
	f := newAPIFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/teams/" + uuid.NewString() +
		"?access_token=" + f.token(f.ownerB, "")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
