package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "player:p1:u1", PlayerKey("p1", "u1"))
	assert.Equal(t, "post_config:p1", PostConfigKey("p1"))
}

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"a":1}`)
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	got[0] = 'y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestMemoryStoreScan(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, PlayerKey("p", "b"), []byte("2")))
	require.NoError(t, s.Set(ctx, PlayerKey("p", "a"), []byte("1")))
	require.NoError(t, s.Set(ctx, PostConfigKey("p"), []byte("x")))

	var keys []string
	err := s.Scan(ctx, PlayerPrefix, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"player:p:a", "player:p:b"}, keys)

	stop := errors.New("stop")
	calls := 0
	err = s.Scan(ctx, PlayerPrefix, func(string, []byte) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestMemoryStoreScanHonoursCancel(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), "player:x", []byte("1")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Scan(ctx, "", func(string, []byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
