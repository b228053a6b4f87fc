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

type trackFixture struct {
	svc      *TrackService
	tracks   *mocks.MockTrackRepository
	progress *mocks.MockProgressRepository
	stats    *mocks.MockStatsRepository
}

func newTrackFixture() *trackFixture {
	f := &trackFixture{
		tracks:   new(mocks.MockTrackRepository),
		progress: new(mocks.MockProgressRepository),
		stats:    new(mocks.MockStatsRepository),
	}
	f.svc = NewTrackService(f.tracks, f.progress, f.stats)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestTrackCreate_SlugAndDefaultPoints(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()

	f.tracks.On("Create", ctx, mock.MatchedBy(func(tr *model.Track) bool {
		return tr.Slug == "blind-75-arrays" &&
			len(tr.Problems) == 3 &&
			tr.Problems[0].Points == 10 &&
			tr.Problems[1].Points == 20 &&
			tr.Problems[2].Points == 45
	})).Return(nil).Once()

	track, err := f.svc.Create(ctx, "admin", CreateTrackRequest{
		Title: "Blind 75: Arrays",
		Problems: []CreateTrackProblem{
			{Title: "Two Sum", Difficulty: model.DifficultyEasy},
			{Title: "3Sum", Difficulty: model.DifficultyMedium},
			{Title: "Trapping Rain Water", Difficulty: model.DifficultyHard, Points: 45},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, track.ProblemCount)
	f.tracks.AssertExpectations(t)
}

func TestTrackCreate_RejectsUnknownDifficulty(t *testing.T) {
	f := newTrackFixture()

	_, err := f.svc.Create(context.Background(), "admin", CreateTrackRequest{
		Title:    "Graphs",
		Problems: []CreateTrackProblem{{Title: "Clone Graph", Difficulty: "Impossible"}},
	})
	assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
	f.tracks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTrackGet_ProgressForCaller(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()

	track := &model.Track{ID: "tr1", Slug: "graphs", Problems: []model.TrackProblem{
		{ID: 1, Points: 10}, {ID: 2, Points: 20}, {ID: 3, Points: 30}, {ID: 4, Points: 30},
	}}
	f.tracks.On("FindBySlug", ctx, "graphs").Return(track, nil).Once()
	f.progress.On("ListForTrack", ctx, "alice", "tr1").Return([]model.ProblemProgress{
		{ProblemID: 1, Solved: true},
		{ProblemID: 3, Solved: true, Revision: true},
		{ProblemID: 4, Revision: true},
	}, nil).Once()

	view, err := f.svc.Get(ctx, "graphs", "alice")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, view.SolvedIDs)
	assert.Equal(t, []int64{3, 4}, view.RevisionIDs)
	assert.Equal(t, 40, view.PointsEarned)
	assert.InDelta(t, 50.0, view.PercentComplete, 0.001)
}

func TestTrackGet_AnonymousSkipsProgress(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()
	f.tracks.On("FindBySlug", ctx, "graphs").Return(&model.Track{ID: "tr1"}, nil).Once()

	view, err := f.svc.Get(ctx, "graphs", "")
	require.NoError(t, err)
	assert.Empty(t, view.SolvedIDs)
	f.progress.AssertNotCalled(t, "ListForTrack", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkSolved_FirstTimeRecomputesStreaks(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()

	f.tracks.On("FindProblemByID", ctx, int64(7)).Return(&model.TrackProblem{ID: 7, Points: 20}, nil).Once()
	f.progress.On("MarkSolved", ctx, "alice", int64(7), 20, testNow).Return(true, nil).Once()
	// testNow is a Monday, so yesterday falls in the previous ISO week.
	yesterday := testNow.Add(-24 * time.Hour)
	f.progress.On("ListSolveTimes", ctx, "alice").Return([]time.Time{yesterday, testNow}, nil).Once()
	f.stats.On("UpdateStreaks", ctx, "alice", 2, 2, 2, mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(testNow.Truncate(24*time.Hour))
	})).Return(nil).Once()
	f.stats.On("Get", ctx, "alice").Return(&model.UserStats{UserID: "alice", TotalPoints: 20, CurrentStreak: 2}, nil).Once()

	change, err := f.svc.MarkSolved(ctx, "alice", 7)
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Equal(t, 20, change.Stats.TotalPoints)
	f.stats.AssertExpectations(t)
}

func TestMarkSolved_RepeatIsNoop(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()

	f.tracks.On("FindProblemByID", ctx, int64(7)).Return(&model.TrackProblem{ID: 7, Points: 20}, nil).Once()
	f.progress.On("MarkSolved", ctx, "alice", int64(7), 20, testNow).Return(false, nil).Once()
	f.stats.On("Get", ctx, "alice").Return(&model.UserStats{UserID: "alice"}, nil).Once()

	change, err := f.svc.MarkSolved(ctx, "alice", 7)
	require.NoError(t, err)
	assert.False(t, change.Changed)
	f.progress.AssertNotCalled(t, "ListSolveTimes", mock.Anything, mock.Anything)
}

func TestSetRevision_UnknownProblem(t *testing.T) {
	f := newTrackFixture()
	ctx := context.Background()
	f.tracks.On("FindProblemByID", ctx, int64(99)).Return(nil, common.E(common.ErrNotFound, "Problem not found")).Once()

	err := f.svc.SetRevision(ctx, "alice", 99, true)
	assert.Equal(t, http.StatusNotFound, common.HTTPStatusFromError(err))
}
