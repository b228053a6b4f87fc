package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/domain/scoring"
	"codequest/internal/platform/cache"
	"codequest/internal/platform/logger"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 200
)

type LeaderboardService struct {
	statsRepo  repository.StatsRepository
	followRepo repository.FollowRepository
	cache      cache.Cache
	ttl        time.Duration
	now        func() time.Time
}

func NewLeaderboardService(statsRepo repository.StatsRepository, followRepo repository.FollowRepository, c cache.Cache, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{statsRepo: statsRepo, followRepo: followRepo, cache: c, ttl: ttl, now: time.Now}
}

// ParseLeaderboardQuery reads the scope and limit query values.
func ParseLeaderboardQuery(scope, limit string) (model.LeaderboardScope, int, error) {
	sc := model.ScopeGlobal
	switch model.LeaderboardScope(scope) {
	case "", model.ScopeGlobal:
	case model.ScopeFollowing:
		sc = model.ScopeFollowing
	default:
		return "", 0, common.E(common.ErrValidation, "scope must be global or following")
	}
	n, err := parseLimit(limit, defaultLeaderboardLimit, maxLeaderboardLimit)
	if err != nil {
		return "", 0, err
	}
	return sc, n, nil
}

func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, common.E(common.ErrValidation, "limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}

func (s *LeaderboardService) Users(ctx context.Context, callerID string, scope model.LeaderboardScope, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	var err error
	if scope == model.ScopeFollowing {
		entries, err = s.following(ctx, callerID, limit)
	} else {
		entries, err = s.global(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	// Cached rows can outlive a day boundary, so lapse streaks after the cache too.
	now := s.now().UTC()
	for i := range entries {
		e := &entries[i]
		e.CurrentStreak, _ = scoring.ActiveStreaks(e.CurrentStreak, 0, e.LastSolvedOn, now)
	}
	return entries, nil
}

func (s *LeaderboardService) global(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	log := logger.FromContext(ctx)
	key := fmt.Sprintf("leaderboard:global:%d", limit)

	var entries []model.LeaderboardEntry
	err := s.cache.Get(ctx, key, &entries)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
	}

	entries, err = s.statsRepo.Leaderboard(ctx, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
	}
	return entries, nil
}

// following ranks the caller together with everyone they follow.
func (s *LeaderboardService) following(ctx context.Context, callerID string, limit int) ([]model.LeaderboardEntry, error) {
	ids, err := s.followRepo.FollowingIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load followed users: %w", err)
	}
	ids = append(ids, callerID)
	return s.statsRepo.Leaderboard(ctx, limit, ids)
}

func (s *LeaderboardService) Teams(ctx context.Context, limit int) ([]model.TeamLeaderboardEntry, error) {
	return s.statsRepo.TeamLeaderboard(ctx, limit)
}
