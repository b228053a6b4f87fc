package mocks

import (
	"context"
	"time"

	"codequest/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

// MockBattleRepository is a mock implementation of repository.BattleRepository
type MockBattleRepository struct {
	mock.Mock
}

func (m *MockBattleRepository) CreateWithCreator(ctx context.Context, battle *model.Battle, creator *model.BattleParticipant) error {
	args := m.Called(ctx, battle, creator)
	return args.Error(0)
}

func (m *MockBattleRepository) FindByID(ctx context.Context, id string) (*model.Battle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Battle), args.Error(1)
}

func (m *MockBattleRepository) List(ctx context.Context, status model.BattleStatus, limit int) ([]model.Battle, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Battle), args.Error(1)
}

func (m *MockBattleRepository) ListParticipants(ctx context.Context, battleID string) ([]model.BattleParticipant, error) {
	args := m.Called(ctx, battleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BattleParticipant), args.Error(1)
}

func (m *MockBattleRepository) FindParticipant(ctx context.Context, battleID, userID string) (*model.BattleParticipant, error) {
	args := m.Called(ctx, battleID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BattleParticipant), args.Error(1)
}

func (m *MockBattleRepository) AddParticipant(ctx context.Context, p *model.BattleParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockBattleRepository) StartIfWaiting(ctx context.Context, battleID, creatorID string, minParticipants int, at time.Time) (*model.Battle, error) {
	args := m.Called(ctx, battleID, creatorID, minParticipants, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Battle), args.Error(1)
}

func (m *MockBattleRepository) CompleteIfExpired(ctx context.Context, battleID string, now time.Time) (bool, error) {
	args := m.Called(ctx, battleID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockBattleRepository) RecordSubmission(ctx context.Context, sub *model.BattleSubmission, now time.Time) (*model.BattleParticipant, error) {
	args := m.Called(ctx, sub, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BattleParticipant), args.Error(1)
}

func (m *MockBattleRepository) ListSubmissions(ctx context.Context, battleID string) ([]model.BattleSubmission, error) {
	args := m.Called(ctx, battleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BattleSubmission), args.Error(1)
}
