package mocks

import (
	"context"
	"time"

	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Get(ctx context.Context, userID string) (*model.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserStats), args.Error(1)
}

func (m *MockStatsRepository) UpdateStreaks(ctx context.Context, userID string, current, longest, weekly int, lastSolvedOn *time.Time) error {
	args := m.Called(ctx, userID, current, longest, weekly, lastSolvedOn)
	return args.Error(0)
}

func (m *MockStatsRepository) UpdateLeetCodeStats(ctx context.Context, userID string, counts repository.LeetCodeCounts, syncedAt time.Time) error {
	args := m.Called(ctx, userID, counts, syncedAt)
	return args.Error(0)
}

func (m *MockStatsRepository) Leaderboard(ctx context.Context, limit int, userIDs []string) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Error(1)
}

func (m *MockStatsRepository) TeamLeaderboard(ctx context.Context, limit int) ([]model.TeamLeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamLeaderboardEntry), args.Error(1)
}
