package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "np.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, ok, err := s.Get(ctx, PlayerKey("p", "u"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, PlayerKey("p", "u"), []byte(`{"currentStep":1}`)))
	require.NoError(t, s.Set(ctx, PlayerKey("p", "u"), []byte(`{"currentStep":2}`)))

	got, ok, err := s.Get(ctx, PlayerKey("p", "u"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"currentStep":2}`, string(got))
}

func TestSQLiteStoreScanPrefix(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	require.NoError(t, s.Set(ctx, PlayerKey("p", "2"), []byte("{}")))
	require.NoError(t, s.Set(ctx, PlayerKey("p", "1"), []byte("{}")))
	require.NoError(t, s.Set(ctx, PostConfigKey("p"), []byte("{}")))
	require.NoError(t, s.Set(ctx, "players_other", []byte("{}")))

	var keys []string
	require.NoError(t, s.Scan(ctx, PlayerPrefix, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"player:p:1", "player:p:2"}, keys)
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "np.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte(`"v"`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"v"`, string(got))
}
