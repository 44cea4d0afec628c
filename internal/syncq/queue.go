// Package syncq is the CLI's offline queue: choices made while the API is
// unreachable are stored on disk and replayed in order by `np sync`.
package syncq

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type Command struct {
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	Body           map[string]any `json:"body,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
	QueuedAt       time.Time      `json:"queued_at"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".np")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	if cmd.QueuedAt.IsZero() {
		cmd.QueuedAt = time.Now().UTC()
	}
	commands = append(commands, cmd)
	return Save(commands)
}

type Result struct {
	Replayed int
	Dropped  int
	// Errors holds the non-retryable failures that caused drops.
	Errors []error
}

// Replay sends commands in order. It stops at the first retryable failure
// and returns that command and everything after it as still pending, since
// later choices depend on earlier ones. Non-retryable failures (e.g. an
// idempotency conflict for a choice the server already has) are dropped.
func Replay(ctx context.Context, commands []Command, send func(context.Context, Command) error, retryable func(error) bool) (Result, []Command) {
	var res Result
	for i, c := range commands {
		if ctx.Err() != nil {
			return res, commands[i:]
		}
		err := send(ctx, c)
		switch {
		case err == nil:
			res.Replayed++
		case retryable(err):
			return res, commands[i:]
		default:
			res.Dropped++
			res.Errors = append(res.Errors, err)
		}
	}
	return res, []Command{}
}
