package store

import (
	"context"
	"fmt"

	"noticeperiod/internal/config"
	"noticeperiod/internal/db"
)

// Open builds the backend named by kind. The returned close func is never nil.
func Open(ctx context.Context, kind, databaseURL, sqlitePath string) (Store, func(), error) {
	switch kind {
	case config.StoreMemory:
		return NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewPostgresStore(pool), pool.Close, nil
	case config.StoreSQLite:
		st, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}
