package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, closeFn, err := Open(ctx, "memory", "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)
	closeFn()

	st, closeFn, err = Open(ctx, "sqlite", "", filepath.Join(t.TempDir(), "np.db"))
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, st.Set(ctx, "player:a:b", []byte(`{"ok":true}`)))

	_, _, err = Open(ctx, "redis", "", "")
	assert.Error(t, err)
}
