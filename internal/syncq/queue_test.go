package syncq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errOffline  = errors.New("dial tcp: connection refused")
	errConflict = errors.New("api status 409")
)

func retryable(err error) bool { return errors.Is(err, errOffline) }

func cmds(keys ...string) []Command {
	out := make([]Command, 0, len(keys))
	for _, k := range keys {
		out = append(out, Command{Method: "POST", Path: "/api/game/choice", IdempotencyKey: k})
	}
	return out
}

func TestPushLoadSave(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, Push(Command{Method: "POST", Path: "/api/game/choice", Body: map[string]any{"choice": "a"}, IdempotencyKey: "k1"}))
	require.NoError(t, Push(Command{Method: "POST", Path: "/api/game/choice", IdempotencyKey: "k2"}))

	got, err = Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "k1", got[0].IdempotencyKey)
	assert.Equal(t, "a", got[0].Body["choice"])
	assert.False(t, got[0].QueuedAt.IsZero())

	require.NoError(t, Save(nil))
	got, err = Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplayAllSucceed(t *testing.T) {
	var sent []string
	res, pending := Replay(context.Background(), cmds("a", "b"), func(_ context.Context, c Command) error {
		sent = append(sent, c.IdempotencyKey)
		return nil
	}, retryable)
	assert.Equal(t, 2, res.Replayed)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"a", "b"}, sent)
}

func TestReplayStopsAtRetryable(t *testing.T) {
	res, pending := Replay(context.Background(), cmds("a", "b", "c"), func(_ context.Context, c Command) error {
		if c.IdempotencyKey == "b" {
			return errOffline
		}
		return nil
	}, retryable)
	assert.Equal(t, 1, res.Replayed)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].IdempotencyKey)
}

func TestReplayDropsConflicts(t *testing.T) {
	res, pending := Replay(context.Background(), cmds("a", "b"), func(_ context.Context, c Command) error {
		if c.IdempotencyKey == "a" {
			return errConflict
		}
		return nil
	}, retryable)
	assert.Equal(t, 1, res.Replayed)
	assert.Equal(t, 1, res.Dropped)
	assert.ErrorIs(t, res.Errors[0], errConflict)
	assert.Empty(t, pending)
}

func TestReplayHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, pending := Replay(ctx, cmds("a"), func(context.Context, Command) error { return nil }, retryable)
	assert.Zero(t, res.Replayed)
	assert.Len(t, pending, 1)
}
