package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type fakeQuerier struct {
	row     fakeRow
	execErr error
	execArgs []any
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func TestPostgresGetMissing(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "bare", err: pgx.ErrNoRows},
		{name: "wrapped", err: fmt.Errorf("query row: %w", pgx.ErrNoRows)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &PostgresStore{db: &fakeQuerier{row: fakeRow{err: tc.err}}}
			raw, ok, err := s.Get(context.Background(), "player:p:u")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, raw)
		})
	}
}

func TestPostgresGetAndSet(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{value: `{"a":1}`}}
	s := &PostgresStore{db: q}
	ctx := context.Background()

	raw, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	require.NoError(t, s.Set(ctx, "k", []byte(`{"b":2}`)))
	assert.Equal(t, []any{"k", `{"b":2}`}, q.execArgs)

	boom := errors.New("conn reset")
	q.row = fakeRow{err: boom}
	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)

	q.execErr = boom
	assert.ErrorIs(t, s.Set(ctx, "k", nil), boom)
}
