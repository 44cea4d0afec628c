package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"noticeperiod/internal/api"
	"noticeperiod/internal/config"
	"noticeperiod/internal/game"
	"noticeperiod/internal/share"
	"noticeperiod/internal/store"
	"noticeperiod/internal/viral"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.LoadAPIFromEnv()
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

	gameSvc := game.NewService(st, logger, cfg.RandSeed)
	gen := viral.NewGenerator(cfg.RandSeed)

	var publisher api.Publisher
	pub, err := share.NewDiscordPublisher(cfg.DiscordWebhookID, cfg.DiscordToken, logger)
	switch {
	case err == nil:
		publisher = pub
	case errors.Is(err, share.ErrNotConfigured):
		logger.Info("discord sharing disabled")
	default:
		logger.Error("discord publisher init failed", "err", err)
		os.Exit(1)
	}

	server := api.New(cfg, logger, gameSvc, gen, publisher)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("notice period api listening", "addr", cfg.Addr, "store", cfg.Store)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
