package mocks

import (
	"context"
	"time"

	"codequest/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

// MockTrackRepository is a mock implementation of repository.TrackRepository
type MockTrackRepository struct {
	mock.Mock
}

func (m *MockTrackRepository) Create(ctx context.Context, track *model.Track) error {
	args := m.Called(ctx, track)
	return args.Error(0)
}

func (m *MockTrackRepository) List(ctx context.Context) ([]model.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Track), args.Error(1)
}

func (m *MockTrackRepository) FindBySlug(ctx context.Context, slug string) (*model.Track, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockTrackRepository) FindProblemByID(ctx context.Context, id int64) (*model.TrackProblem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackProblem), args.Error(1)
}

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) MarkSolved(ctx context.Context, userID string, problemID int64, points int, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, problemID, points, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) UnmarkSolved(ctx context.Context, userID string, problemID int64, points int) (bool, error) {
	args := m.Called(ctx, userID, problemID, points)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) SetRevision(ctx context.Context, userID string, problemID int64, revision bool) error {
	args := m.Called(ctx, userID, problemID, revision)
	return args.Error(0)
}

func (m *MockProgressRepository) ListForTrack(ctx context.Context, userID, trackID string) ([]model.ProblemProgress, error) {
	args := m.Called(ctx, userID, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProblemProgress), args.Error(1)
}

func (m *MockProgressRepository) ListSolveTimes(ctx context.Context, userID string) ([]time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
