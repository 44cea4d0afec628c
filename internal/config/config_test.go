package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NOTICE_API_ADDR", "")
	t.Setenv("NOTICE_STORE", "")
	t.Setenv("NOTICE_REQUEST_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Store != StoreMemory || cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("log level %v", cfg.LogLevel)
	}
}

func TestLoadAPIPortWins(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("NOTICE_API_ADDR", ":7000")
	t.Setenv("NOTICE_STORE", "")
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr %q", cfg.Addr)
	}
}

func TestLoadAPIStoreValidation(t *testing.T) {
	t.Setenv("NOTICE_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected DATABASE_URL error")
	}

	t.Setenv("NOTICE_STORE", "redis")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected unknown store error")
	}

	t.Setenv("NOTICE_STORE", "SQLite")
	cfg, err := LoadAPIFromEnv()
	if err != nil || cfg.Store != StoreSQLite {
		t.Fatalf("got %+v, %v", cfg, err)
	}
}

func TestLoadWorkerRejectsMemory(t *testing.T) {
	t.Setenv("NOTICE_STORE", "memory")
	if _, err := LoadWorkerFromEnv(); err == nil {
		t.Fatalf("expected memory store to be rejected")
	}

	t.Setenv("NOTICE_STORE", "sqlite")
	t.Setenv("NOTICE_LEADERBOARD_EVERY", "30s")
	t.Setenv("NOTICE_WORKER_RUN_ONCE", "true")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LeaderboardEvery != 30*time.Second || !cfg.RunOnce {
		t.Fatalf("unexpected worker config %+v", cfg)
	}
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_DUR", "soon")
	if got := envDurationDefault("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("duration fallback %v", got)
	}
	t.Setenv("X_DUR", "-1s")
	if got := envDurationDefault("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("negative duration should fall back, got %v", got)
	}
	t.Setenv("X_INT", "12x")
	if got := envInt64Default("X_INT", 3); got != 3 {
		t.Fatalf("int fallback %d", got)
	}
	t.Setenv("X_BOOL", "maybe")
	if !envBoolDefault("X_BOOL", true) {
		t.Fatalf("bool fallback")
	}
	t.Setenv("LOG_LEVEL", "DEBUG")
	if envLogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
}

func TestLoadCLI(t *testing.T) {
	t.Setenv("NP_API_BASE_URL", "http://api.test/")
	t.Setenv("NP_POST_ID", "")
	cfg := LoadCLIFromEnv()
	if cfg.APIBaseURL != "http://api.test" || cfg.PostID != "cli" {
		t.Fatalf("unexpected cli config %+v", cfg)
	}
}
