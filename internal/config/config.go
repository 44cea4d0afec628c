package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type APIConfig struct {
	Addr             string
	Store            string
	DatabaseURL      string
	SQLitePath       string
	RequestTimeout   time.Duration
	RandSeed         int64
	DiscordWebhookID string
	DiscordToken     string
	ShareURL         string
	LogLevel         slog.Level
}

type WorkerConfig struct {
	Store            string
	DatabaseURL      string
	SQLitePath       string
	LeaderboardEvery time.Duration
	RunOnce          bool
	LogLevel         slog.Level
}

type CLIConfig struct {
	APIBaseURL string
	ShareURL   string
	PostID     string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("NOTICE_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		Store:            strings.ToLower(envDefault("NOTICE_STORE", StoreMemory)),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:       envDefault("SQLITE_PATH", "noticeperiod.db"),
		RequestTimeout:   envDurationDefault("NOTICE_REQUEST_TIMEOUT", 5*time.Second),
		RandSeed:         envInt64Default("NOTICE_RAND_SEED", 0),
		DiscordWebhookID: strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_ID")),
		DiscordToken:     strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_TOKEN")),
		ShareURL:         strings.TrimSpace(os.Getenv("NP_SHARE_URL")),
		LogLevel:         envLogLevel(),
	}
	if err := validateStore(cfg.Store, cfg.DatabaseURL); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		Store:            strings.ToLower(envDefault("NOTICE_STORE", StorePostgres)),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:       envDefault("SQLITE_PATH", "noticeperiod.db"),
		LeaderboardEvery: envDurationDefault("NOTICE_LEADERBOARD_EVERY", time.Minute),
		RunOnce:          envBoolDefault("NOTICE_WORKER_RUN_ONCE", false),
		LogLevel:         envLogLevel(),
	}
	if cfg.Store == StoreMemory {
		return cfg, fmt.Errorf("worker needs a persistent store; NOTICE_STORE=memory is per-process")
	}
	if err := validateStore(cfg.Store, cfg.DatabaseURL); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("NP_API_BASE_URL", "http://localhost:8080"), "/"),
		ShareURL:   strings.TrimSpace(os.Getenv("NP_SHARE_URL")),
		PostID:     envDefault("NP_POST_ID", "cli"),
	}
}

func validateStore(kind, databaseURL string) error {
	switch kind {
	case StoreMemory, StoreSQLite:
		return nil
	case StorePostgres:
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when NOTICE_STORE=postgres")
		}
		return nil
	default:
		return fmt.Errorf("NOTICE_STORE must be memory, postgres or sqlite, got %q", kind)
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
