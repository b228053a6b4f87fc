package mocks

import (
	"context"
	"time"

	"codequest/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

// MockTeamRepository is a mock implementation of repository.TeamRepository
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) CreateWithLeader(ctx context.Context, team *model.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) FindByInviteCode(ctx context.Context, code string) (*model.Team, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) List(ctx context.Context, limit int) ([]model.Team, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

func (m *MockTeamRepository) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *MockTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockTeamRepository) CreateInvitation(ctx context.Context, inv *model.TeamInvitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockTeamRepository) ListPendingInvitations(ctx context.Context, inviteeID string) ([]model.TeamInvitation, error) {
	args := m.Called(ctx, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamInvitation), args.Error(1)
}

func (m *MockTeamRepository) RespondInvitation(ctx context.Context, invitationID, inviteeID string, accept bool, at time.Time) (*model.TeamInvitation, error) {
	args := m.Called(ctx, invitationID, inviteeID, accept, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamInvitation), args.Error(1)
}
