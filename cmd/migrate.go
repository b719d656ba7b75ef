package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/N3z3d/FortniteProject-sub000/config"
	"github.com/N3z3d/FortniteProject-sub000/db"
)

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		newLogger(slog.LevelInfo).Error("failed to load configuration", slog.Any("error", err))
		return err
	}
	logger := newLogger(cfg.LogLevel)
	if cfg.StoreDriver != config.StoreDriverPostgres {
		err := errors.New("migrate requires STORE_DRIVER=postgres")
		logger.Error("nothing to migrate", slog.Any("error", err))
		return err
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		return err
	}
	logger.Info("schema applied")
	return nil
}
