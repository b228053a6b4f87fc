package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/leetcode"
	"codequest/internal/platform/queue"
	"codequest/internal/testutil/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var syncNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type workerFixture struct {
	w      *StatsSyncWorker
	jobs   *mocks.MockJobQueue
	locker *mocks.MockLocker
	users  *mocks.MockUserRepository
	stats  *mocks.MockStatsRepository
	client *mocks.MockLeetCodeClient
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		jobs:   new(mocks.MockJobQueue),
		locker: new(mocks.MockLocker),
		users:  new(mocks.MockUserRepository),
		stats:  new(mocks.MockStatsRepository),
		client: new(mocks.MockLeetCodeClient),
	}
	f.w = NewStatsSyncWorker(f.jobs, f.locker, f.users, f.stats, f.client, Options{
		LockPrefix: "stats_sync_lock",
		LockTTL:    time.Minute,
		PopTimeout: 10 * time.Millisecond,
		RetryDelay: 10 * time.Millisecond,
	})
	f.w.now = func() time.Time { return syncNow }
	return f
}

func (f *workerFixture) assertAll(t *testing.T) {
	f.jobs.AssertExpectations(t)
	f.locker.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.stats.AssertExpectations(t)
	f.client.AssertExpectations(t)
}

func TestProcess_StoresFetchedCounts(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	handle := "alice_lc"

	f.locker.On("Acquire", ctx, "stats_sync_lock:alice", time.Minute).Return("tok", true, nil).Once()
	f.locker.On("Release", mock.Anything, "stats_sync_lock:alice", "tok").Return(true, nil).Once()
	f.users.On("FindByID", ctx, "alice").Return(&model.User{ID: "alice", LeetCodeUsername: &handle}, nil).Once()
	f.client.On("FetchSolvedStats", ctx, "alice_lc").
		Return(&leetcode.SolvedStats{TotalSolved: 60, EasySolved: 30, MediumSolved: 25, HardSolved: 5}, nil).Once()
	f.stats.On("UpdateLeetCodeStats", ctx, "alice",
		repository.LeetCodeCounts{Easy: 30, Medium: 25, Hard: 5, Total: 60}, syncNow).Return(nil).Once()

	f.w.processWithLock(ctx, `{"user_id":"alice"}`)
	f.assertAll(t)
}

func TestProcess_LockContentionRequeues(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	payload := `{"user_id":"alice"}`

	f.locker.On("Acquire", ctx, "stats_sync_lock:alice", time.Minute).Return("", false, nil).Once()
	f.jobs.On("Requeue", ctx, payload).Return(nil).Once()

	f.w.processWithLock(ctx, payload)
	f.assertAll(t)
	f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProcess_MissingUsernameFailsWithoutFetching(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()

	f.locker.On("Acquire", ctx, "stats_sync_lock:bob", time.Minute).Return("tok", true, nil).Once()
	f.locker.On("Release", mock.Anything, "stats_sync_lock:bob", "tok").Return(true, nil).Once()
	f.users.On("FindByID", ctx, "bob").Return(&model.User{ID: "bob"}, nil).Once()

	f.w.processWithLock(ctx, `{"user_id":"bob"}`)
	f.assertAll(t)
	f.client.AssertNotCalled(t, "FetchSolvedStats", mock.Anything, mock.Anything)
	f.stats.AssertNotCalled(t, "UpdateLeetCodeStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_ProfileNotFound(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	handle := "ghost"

	f.users.On("FindByID", ctx, "carol").Return(&model.User{ID: "carol", LeetCodeUsername: &handle}, nil).Once()
	f.client.On("FetchSolvedStats", ctx, "ghost").Return(nil, leetcode.ErrUserNotFound).Once()

	err := f.w.sync(ctx, "carol")
	require.ErrorIs(t, err, leetcode.ErrUserNotFound)
}

func TestProcess_MalformedPayloadDropped(t *testing.T) {
	f := newWorkerFixture()

	f.w.processWithLock(context.Background(), "not-json")
	f.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
	f.jobs.AssertNotCalled(t, "Requeue", mock.Anything, mock.Anything)
}

func TestStart_StopsOnCancel(t *testing.T) {
	f := newWorkerFixture()
	ctx, cancel := context.WithCancel(context.Background())

	f.jobs.On("Pop", mock.Anything, 10*time.Millisecond).Return("", queue.ErrEmpty).Run(func(mock.Arguments) {
		cancel()
	})

	done := make(chan struct{})
	go func() {
		f.w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestStart_BacksOffOnQueueError(t *testing.T) {
	f := newWorkerFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	f.jobs.On("Pop", mock.Anything, 10*time.Millisecond).Return("", errors.New("connection refused")).Run(func(mock.Arguments) {
		calls++
		if calls == 2 {
			cancel()
		}
	})

	f.w.Start(ctx)
	assert.Equal(t, 2, calls)
}
