package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"noticeperiod/internal/store"
	"noticeperiod/internal/viral"
)

const topMomentsLimit = 5

// AggregateLeaderboard computes community totals from every stored player.
// Unreadable records are logged and skipped.
func (s *Service) AggregateLeaderboard(ctx context.Context) (viral.LeaderboardData, error) {
	var (
		players, escaped, trapped int
		stressSum                 int
		escapes                   = map[string]int{}
		traps                     = map[string]int{}
		moments                   []viral.Moment
	)
	err := s.store.Scan(ctx, store.PlayerPrefix, func(key string, raw []byte) error {
		p, err := DecodeProgress(raw)
		if err != nil {
			s.log.Warn("skipping unreadable player record", "key", key, "err", err)
			return nil
		}
		players++
		stressSum += p.StressLevel
		switch p.Outcome {
		case OutcomeEscaped:
			escaped++
			if p.EndingChoice != "" {
				escapes[p.EndingChoice]++
			}
		case OutcomeRepeat:
			trapped++
			if p.EndingChoice != "" {
				traps[p.EndingChoice]++
			}
		}
		moments = append(moments, p.ViralMoments...)
		return nil
	})
	if err != nil {
		return viral.LeaderboardData{}, fmt.Errorf("%w: scan players: %w", ErrStoreUnavailable, err)
	}

	ts := s.timestamp()
	out := viral.LeaderboardData{
		TotalPlayers:     players,
		EscapedCount:     escaped,
		TrappedCount:     trapped,
		MostCommonEscape: mostCommon(escapes, viral.DefaultEscape),
		MostCommonTrap:   mostCommon(traps, viral.DefaultTrap),
		TopViralMoments:  topMoments(moments, ts),
		GeneratedAt:      ts,
	}
	if players > 0 {
		out.AverageStress = int(math.Round(float64(stressSum) / float64(players)))
	}
	return out, nil
}

func (s *Service) RefreshLeaderboard(ctx context.Context) (viral.LeaderboardData, error) {
	lb, err := s.AggregateLeaderboard(ctx)
	if err != nil {
		return lb, err
	}
	raw, err := json.Marshal(lb)
	if err != nil {
		return lb, err
	}
	if err := s.store.Set(ctx, store.LeaderboardSnapshot, raw); err != nil {
		return lb, fmt.Errorf("%w: save leaderboard: %w", ErrStoreUnavailable, err)
	}
	return lb, nil
}

// LeaderboardSnapshot returns the last refreshed board, if any.
func (s *Service) LeaderboardSnapshot(ctx context.Context) (viral.LeaderboardData, bool, error) {
	raw, found, err := s.store.Get(ctx, store.LeaderboardSnapshot)
	if err != nil {
		return viral.LeaderboardData{}, false, fmt.Errorf("%w: load leaderboard: %w", ErrStoreUnavailable, err)
	}
	if !found {
		return viral.LeaderboardData{}, false, nil
	}
	var lb viral.LeaderboardData
	if err := json.Unmarshal(raw, &lb); err != nil {
		return viral.LeaderboardData{}, false, errors.Join(ErrCorruptRecord, err)
	}
	return lb, true, nil
}

// mostCommon breaks ties alphabetically.
func mostCommon(counts map[string]int, fallback string) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	if bestN == 0 {
		return fallback
	}
	return best
}

func topMoments(moments []viral.Moment, ts string) []viral.Moment {
	if len(moments) == 0 {
		return viral.FeaturedMoments(ts)
	}
	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].ViralScore > moments[j].ViralScore
	})
	if len(moments) > topMomentsLimit {
		moments = moments[:topMomentsLimit]
	}
	return moments
}
