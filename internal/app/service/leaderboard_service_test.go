package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/testutil/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeaderboardQuery(t *testing.T) {
	scope, limit, err := ParseLeaderboardQuery("", "")
	require.NoError(t, err)
	assert.Equal(t, model.ScopeGlobal, scope)
	assert.Equal(t, defaultLeaderboardLimit, limit)

	scope, limit, err = ParseLeaderboardQuery("following", "1000")
	require.NoError(t, err)
	assert.Equal(t, model.ScopeFollowing, scope)
	assert.Equal(t, maxLeaderboardLimit, limit)

	_, _, err = ParseLeaderboardQuery("friends", "")
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))

	_, _, err = ParseLeaderboardQuery("", "-3")
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
}

func TestLeaderboardGlobal_ServedFromCacheOnSecondCall(t *testing.T) {
	stats := new(mocks.MockStatsRepository)
	follows := new(mocks.MockFollowRepository)
	c := mocks.NewMemoryCache()
	svc := NewLeaderboardService(stats, follows, c, 30*time.Second)
	ctx := context.Background()

	rows := []model.LeaderboardEntry{
		{Rank: 1, UserID: "alice", Username: "alice", TotalPoints: 300},
		{Rank: 2, UserID: "bob", Username: "bob", TotalPoints: 120},
	}
	stats.On("Leaderboard", ctx, 10, []string(nil)).Return(rows, nil).Once()

	first, err := svc.Users(ctx, "carol", model.ScopeGlobal, 10)
	require.NoError(t, err)
	second, err := svc.Users(ctx, "carol", model.ScopeGlobal, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Sets)
	stats.AssertExpectations(t)
}

func TestLeaderboardFollowing_IncludesCaller(t *testing.T) {
	stats := new(mocks.MockStatsRepository)
	follows := new(mocks.MockFollowRepository)
	svc := NewLeaderboardService(stats, follows, mocks.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	follows.On("FollowingIDs", ctx, "alice").Return([]string{"bob"}, nil).Once()
	stats.On("Leaderboard", ctx, 50, []string{"bob", "alice"}).
		Return([]model.LeaderboardEntry{{Rank: 1, UserID: "bob"}, {Rank: 2, UserID: "alice"}}, nil).Once()

	got, err := svc.Users(ctx, "alice", model.ScopeFollowing, 50)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	stats.AssertExpectations(t)
}

func TestLeaderboard_LapsedStreaksReadAsZero(t *testing.T) {
	stats := new(mocks.MockStatsRepository)
	follows := new(mocks.MockFollowRepository)
	svc := NewLeaderboardService(stats, follows, mocks.NewMemoryCache(), time.Minute)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	stale := testNow.AddDate(0, 0, -10)
	fresh := testNow
	stats.On("Leaderboard", ctx, 10, []string(nil)).Return([]model.LeaderboardEntry{
		{Rank: 1, UserID: "alice", TotalPoints: 500, CurrentStreak: 7, LastSolvedOn: &stale},
		{Rank: 2, UserID: "bob", TotalPoints: 100, CurrentStreak: 2, LastSolvedOn: &fresh},
	}, nil).Once()

	got, err := svc.Users(ctx, "", model.ScopeGlobal, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].CurrentStreak)
	assert.Equal(t, 2, got[1].CurrentStreak)
}
