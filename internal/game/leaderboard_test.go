package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeperiod/internal/store"
	"noticeperiod/internal/viral"
)

func TestAggregateLeaderboard(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(t, st)
	ctx := context.Background()

	alice := Identity{PostID: "p", UserID: "alice"}
	bob := Identity{PostID: "p", UserID: "bob"}
	carol := Identity{PostID: "p", UserID: "carol"}

	playToFinalStep(t, svc, alice, 1)
	choose(t, svc, alice, 0)
	playToFinalStep(t, svc, bob, 1)
	choose(t, svc, bob, 1)
	_, err := svc.InitPlayer(ctx, carol)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, store.PlayerKey("p", "broken"), []byte("{")))

	lb, err := svc.AggregateLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, lb.TotalPlayers)
	assert.Equal(t, 1, lb.EscapedCount)
	assert.Equal(t, 1, lb.TrappedCount)
	assert.False(t, lb.Simulated)

	a, _ := svc.Player(ctx, alice)
	assert.Equal(t, a.EndingChoice, lb.MostCommonEscape)
	b, _ := svc.Player(ctx, bob)
	assert.Equal(t, b.EndingChoice, lb.MostCommonTrap)
	require.Len(t, lb.TopViralMoments, topMomentsLimit)
	for i, m := range lb.TopViralMoments {
		assert.Contains(t, []int{8, 15, 25, 30}, m.Step)
		if i > 0 {
			assert.GreaterOrEqual(t, lb.TopViralMoments[i-1].ViralScore, m.ViralScore)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	svc := newTestService(t, nil)
	lb, err := svc.AggregateLeaderboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, lb.TotalPlayers)
	assert.Zero(t, lb.AverageStress)
	assert.Equal(t, viral.DefaultEscape, lb.MostCommonEscape)
	assert.Equal(t, viral.DefaultTrap, lb.MostCommonTrap)
	assert.Len(t, lb.TopViralMoments, 2, "featured moments fill an empty board")
}

func TestRefreshAndReadSnapshot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, found, err := svc.LeaderboardSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.InitPlayer(ctx, player1)
	require.NoError(t, err)
	want, err := svc.RefreshLeaderboard(ctx)
	require.NoError(t, err)

	got, found, err := svc.LeaderboardSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, got.TotalPlayers)
	assert.Equal(t, InitialStress, got.AverageStress)
}

func TestMostCommonTieBreak(t *testing.T) {
	assert.Equal(t, "a", mostCommon(map[string]int{"b": 2, "a": 2, "c": 1}, "x"))
	assert.Equal(t, "x", mostCommon(nil, "x"))
}
