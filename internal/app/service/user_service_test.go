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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc     *UserService
	users   *mocks.MockUserRepository
	stats   *mocks.MockStatsRepository
	follows *mocks.MockFollowRepository
	queue   *mocks.MockJobQueue
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:   new(mocks.MockUserRepository),
		stats:   new(mocks.MockStatsRepository),
		follows: new(mocks.MockFollowRepository),
		queue:   new(mocks.MockJobQueue),
	}
	f.svc = NewUserService(f.users, f.stats, f.follows, f.queue)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestProfile_OtherUserHidesEmail(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.On("FindByID", mock.Anything, "bob").Return(&model.User{ID: "bob", Email: "bob@example.com"}, nil).Once()
	f.stats.On("Get", mock.Anything, "bob").Return(&model.UserStats{UserID: "bob", TotalPoints: 42}, nil).Once()
	f.follows.On("Counts", mock.Anything, "bob").Return(3, 1, nil).Once()
	f.follows.On("IsFollowing", mock.Anything, "alice", "bob").Return(true, nil).Once()

	p, err := f.svc.Profile(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, p.User.Email)
	assert.Equal(t, 42, p.Stats.TotalPoints)
	assert.Equal(t, 3, p.FollowerCount)
	assert.Equal(t, 1, p.FollowingCount)
	assert.True(t, p.IsFollowing)
}

func TestMe_SkipsFollowCheck(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.On("FindByID", mock.Anything, "alice").Return(&model.User{ID: "alice", Email: "a@example.com"}, nil).Once()
	f.stats.On("Get", mock.Anything, "alice").Return(&model.UserStats{UserID: "alice"}, nil).Once()
	f.follows.On("Counts", mock.Anything, "alice").Return(0, 0, nil).Once()

	p, err := f.svc.Me(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.User.Email)
	f.follows.AssertNotCalled(t, "IsFollowing", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfile_UnknownUser(t *testing.T) {
	f := newUserFixture()

	f.users.On("FindByID", mock.Anything, "ghost").Return(nil, common.E(common.ErrNotFound, "User not found")).Once()
	f.stats.On("Get", mock.Anything, "ghost").Return(nil, common.ErrNotFound).Maybe()
	f.follows.On("Counts", mock.Anything, "ghost").Return(0, 0, nil).Maybe()

	_, err := f.svc.Profile(context.Background(), "ghost", "ghost")
	assert.Equal(t, http.StatusNotFound, common.HTTPStatusFromError(err))
}

func TestSetLeetCodeUsername_Validates(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.SetLeetCodeUsername(context.Background(), "alice", "bad name!")
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
	f.users.AssertNotCalled(t, "UpdateLeetCodeUsername", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetLeetCodeUsername_EmptyUnlinks(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.On("UpdateLeetCodeUsername", ctx, "alice", (*string)(nil)).Return(nil).Once()
	f.users.On("FindByID", ctx, "alice").Return(&model.User{ID: "alice"}, nil).Once()

	u, err := f.svc.SetLeetCodeUsername(ctx, "alice", "  ")
	require.NoError(t, err)
	assert.Nil(t, u.LeetCodeUsername)
}

func TestRequestStatsSync_Enqueues(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	handle := "alice_lc"

	f.users.On("FindByID", ctx, "alice").Return(&model.User{ID: "alice", LeetCodeUsername: &handle}, nil).Once()
	f.queue.On("Push", ctx, `{"user_id":"alice"}`).Return(nil).Once()

	require.NoError(t, f.svc.RequestStatsSync(ctx, "alice"))
	f.queue.AssertExpectations(t)
}

func TestRequestStatsSync_NeedsLinkedAccount(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.On("FindByID", ctx, "alice").Return(&model.User{ID: "alice"}, nil).Once()

	err := f.svc.RequestStatsSync(ctx, "alice")
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
	f.queue.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestProfile_LapsedStreaksReadAsZero(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	lastSolved := testNow.AddDate(0, 0, -10)

	f.users.On("FindByID", mock.Anything, "alice").Return(&model.User{ID: "alice"}, nil).Once()
	f.stats.On("Get", mock.Anything, "alice").Return(&model.UserStats{
		UserID: "alice", CurrentStreak: 5, LongestStreak: 9, WeeklyStreak: 3, LastSolvedOn: &lastSolved,
	}, nil).Once()
	f.follows.On("Counts", mock.Anything, "alice").Return(0, 0, nil).Once()

	p, err := f.svc.Me(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stats.CurrentStreak)
	assert.Equal(t, 0, p.Stats.WeeklyStreak)
	assert.Equal(t, 9, p.Stats.LongestStreak)
}

func TestProfile_StreakAliveThroughYesterday(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	yesterday := testNow.AddDate(0, 0, -1)

	f.users.On("FindByID", mock.Anything, "alice").Return(&model.User{ID: "alice"}, nil).Once()
	f.stats.On("Get", mock.Anything, "alice").Return(&model.UserStats{
		UserID: "alice", CurrentStreak: 5, WeeklyStreak: 3, LastSolvedOn: &yesterday,
	}, nil).Once()
	f.follows.On("Counts", mock.Anything, "alice").Return(0, 0, nil).Once()

	p, err := f.svc.Me(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stats.CurrentStreak)
	assert.Equal(t, 3, p.Stats.WeeklyStreak)
}
