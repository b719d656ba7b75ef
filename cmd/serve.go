package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/config"
	"github.com/N3z3d/FortniteProject-sub000/db"
	"github.com/N3z3d/FortniteProject-sub000/handlers"
	"github.com/N3z3d/FortniteProject-sub000/notifications"
	"github.com/N3z3d/FortniteProject-sub000/repositories"
	"github.com/N3z3d/FortniteProject-sub000/routes"
	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/N3z3d/FortniteProject-sub000/storage"
	"github.com/go-chi/chi/v5"
)

const (
	shutdownTimeout     = 15 * time.Second
	archiveWriteTimeout = 10 * time.Second
)

type stores struct {
	tx      repositories.Transactor
	teams   repositories.TeamRepository
	players repositories.PlayerRepository
	games   repositories.GameRepository
	trades  repositories.TradeRepository
	close   func() error
}

func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		mem := repositories.NewMemoryStore()
		return &stores{
			tx:      mem,
			teams:   mem.Teams(),
			players: mem.Players(),
			games:   mem.Games(),
			trades:  mem.Trades(),
			close:   func() error { return nil },
		}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")
	return &stores{
		tx:      repositories.NewPostgresTransactor(dbConn),
		teams:   repositories.NewPostgresTeamRepository(dbConn),
		players: repositories.NewPostgresPlayerRepository(dbConn),
		games:   repositories.NewPostgresGameRepository(dbConn),
		trades:  repositories.NewPostgresTradeRepository(dbConn),
		close:   dbConn.Close,
	}, nil
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		newLogger(slog.LevelInfo).Error("failed to load configuration", slog.Any("error", err))
		return err
	}
	logger := newLogger(cfg.LogLevel)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	// Background workers stop on workerCtx so the HTTP server drains first.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	defer func() {
		stopWorkers()
		workers.Wait()
	}()
	startWorker := func(run func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(workerCtx)
		}()
	}

	hub := notifications.NewHub(logger)
	startWorker(hub.Run)
	logger.Info("WebSocket Hub started")

	sinks := []notifications.Sink{
		notifications.LogSink{Logger: logger},
		notifications.HubSink{Hub: hub},
	}
	if cfg.R2.Enabled() {
		objectStore, err := storage.NewCloudflareR2Store(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			return err
		}
		archive := notifications.NewAsyncSink(
			notifications.ArchiveSink{Store: objectStore},
			cfg.NotifyQueueSize,
			archiveWriteTimeout,
			logger,
		)
		startWorker(archive.Run)
		sinks = append(sinks, archive)
		logger.Info("trade event archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}
	notifier := notifications.NewNotifier(logger, sinks...)

	tradeService := services.NewTradeService(
		st.tx,
		st.teams,
		st.games,
		st.trades,
		nil,
		notifier,
		logger,
	)
	rosterService := services.NewRosterService(st.teams)
	playerService := services.NewPlayerService(st.players, logger)
	statsService := services.NewTradeStatsService(st.games, st.trades)

	var checkOrigin func(*http.Request) bool
	if len(cfg.AllowedOrigins) > 0 {
		checkOrigin = func(r *http.Request) bool {
			return slices.Contains(cfg.AllowedOrigins, r.Header.Get("Origin"))
		}
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Trade:     handlers.NewTradeHandler(tradeService, logger),
		Team:      handlers.NewTeamHandler(rosterService, tradeService, logger),
		Player:    handlers.NewPlayerHandler(playerService, rosterService, logger),
		Stats:     handlers.NewStatsHandler(statsService, logger),
		WebSocket: handlers.NewWebSocketHandler(hub, rosterService, checkOrigin, logger),
	}, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
