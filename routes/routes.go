package routes

import (
	"net/http"

	"github.com/N3z3d/FortniteProject-sub000/docs"
	"github.com/N3z3d/FortniteProject-sub000/handlers"
	"github.com/N3z3d/FortniteProject-sub000/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Trade     *handlers.TradeHandler
	Team      *handlers.TeamHandler
	Player    *handlers.PlayerHandler
	Stats     *handlers.StatsHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.With(authenticate).Get("/ws/teams/{teamID}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/trades", func(r chi.Router) {
			r.Post("/", h.Trade.ProposeTrade)
			r.Route("/{tradeID}", func(r chi.Router) {
				r.Get("/", h.Trade.GetTrade)
				r.Post("/accept", h.Trade.AcceptTrade)
				r.Post("/reject", h.Trade.RejectTrade)
				r.Post("/cancel", h.Trade.CancelTrade)
				r.Post("/counter", h.Trade.CounterTrade)
			})
		})

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/", h.Team.GetTeamByID)
			r.Get("/trades", h.Team.ListTeamTrades)
			r.Get("/trades/pending", h.Team.ListPendingTeamTrades)
		})

		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/", h.Player.GetPlayer)
			r.Get("/teams", h.Player.ListPlayerTeams)
			r.With(middleware.Authorize(middleware.RoleAdmin)).Put("/lock", h.Player.SetPlayerLocked)
		})

		r.Get("/users/{userID}/teams", h.Team.ListUserTeams)
		r.Get("/games/{gameID}/trade-stats", h.Stats.GetGameTradeStats)
	})
}
