// Package store persists serialized game records under string keys. It is a
// plain get/set primitive: writes are last-writer-wins and there are no
// multi-key transactions.
package store

import "context"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Scan calls fn for every key with the given prefix, in key order.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
}

const (
	PlayerPrefix        = "player:"
	postConfigPrefix    = "post_config:"
	LeaderboardSnapshot = "leaderboard:snapshot"
)

func PlayerKey(postID, userID string) string {
	return PlayerPrefix + postID + ":" + userID
}

func PostConfigKey(postID string) string {
	return postConfigPrefix + postID
}
