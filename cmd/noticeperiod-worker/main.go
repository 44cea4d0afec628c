package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"noticeperiod/internal/config"
	"noticeperiod/internal/game"
	"noticeperiod/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	st, closeStore, err := store.Open(ctx, cfg.Store, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("store open failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := game.NewService(st, logger, 0)

	if cfg.RunOnce {
		if err := refresh(ctx, svc, logger); err != nil {
			logger.Error("leaderboard refresh failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.LeaderboardEvery)
	defer ticker.Stop()

	logger.Info("worker started", "every", cfg.LeaderboardEvery.String(), "store", cfg.Store)
	if err := refresh(ctx, svc, logger); err != nil {
		logger.Error("leaderboard refresh failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := refresh(ctx, svc, logger); err != nil {
				logger.Error("leaderboard refresh failed", "err", err)
			}
		}
	}
}

func refresh(ctx context.Context, svc *game.Service, logger *slog.Logger) error {
	lb, err := svc.RefreshLeaderboard(ctx)
	if err != nil {
		return err
	}
	logger.Info("leaderboard refreshed",
		"players", lb.TotalPlayers,
		"escaped", lb.EscapedCount,
		"trapped", lb.TrappedCount,
		"avg_stress", lb.AverageStress,
	)
	return nil
}
