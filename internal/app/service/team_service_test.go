package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/realtime"
	"codequest/internal/testutil/mocks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TeamServiceSuite struct {
	suite.Suite
	ctx    context.Context
	teams  *mocks.MockTeamRepository
	users  *mocks.MockUserRepository
	notifs *mocks.MockNotificationRepository
	svc    *TeamService
}

func (s *TeamServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.teams = new(mocks.MockTeamRepository)
	s.users = new(mocks.MockUserRepository)
	s.notifs = new(mocks.MockNotificationRepository)
	s.svc = NewTeamService(s.teams, s.users, NewNotificationService(s.notifs, realtime.NewMemoryBroker(1)))
	s.svc.now = func() time.Time { return testNow }
}

func (s *TeamServiceSuite) TearDownTest() {
	s.teams.AssertExpectations(s.T())
	s.notifs.AssertExpectations(s.T())
}

func (s *TeamServiceSuite) TestCreate_GeneratesInviteCode() {
	s.teams.On("CreateWithLeader", s.ctx, mock.MatchedBy(func(t *model.Team) bool {
		return t.Name == "Gophers" && t.CreatedBy == "alice" && len(t.InviteCode) == inviteCodeLength
	})).Return(nil).Once()

	team, err := s.svc.Create(s.ctx, "alice", CreateTeamRequest{Name: " Gophers "})
	s.Require().NoError(err)
	s.Len(team.InviteCode, 8)
}

func (s *TeamServiceSuite) TestCreate_BlankName() {
	_, err := s.svc.Create(s.ctx, "alice", CreateTeamRequest{Name: "  "})
	s.ErrorIs(err, common.ErrValidation)
}

func (s *TeamServiceSuite) TestJoinByCode_NotifiesLeader() {
	team := &model.Team{ID: "t1", Name: "Gophers", CreatedBy: "alice", MemberCount: 1}
	s.teams.On("FindByInviteCode", s.ctx, "ABCD1234").Return(team, nil).Once()
	s.teams.On("AddMember", s.ctx, "t1", "bob", model.TeamRoleMember).Return(nil).Once()
	s.notifs.On("Create", s.ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "alice" && n.Type == model.NotificationTeamJoin
	})).Return(nil).Once()

	got, err := s.svc.JoinByCode(s.ctx, "bob", " abcd1234 ")
	s.Require().NoError(err)
	s.Equal(2, got.MemberCount)
}

func (s *TeamServiceSuite) TestJoinByCode_AlreadyMember() {
	s.teams.On("FindByInviteCode", s.ctx, "ABCD1234").Return(&model.Team{ID: "t1"}, nil).Once()
	s.teams.On("AddMember", s.ctx, "t1", "bob", model.TeamRoleMember).Return(common.ErrAlreadyMember).Once()

	_, err := s.svc.JoinByCode(s.ctx, "bob", "ABCD1234")
	s.Equal(http.StatusConflict, common.HTTPStatusFromError(err))
}

func (s *TeamServiceSuite) TestJoinOpen_ClosedTeamForbidden() {
	s.teams.On("FindByID", s.ctx, "t1").Return(&model.Team{ID: "t1", IsOpen: false}, nil).Once()

	_, err := s.svc.JoinOpen(s.ctx, "bob", "t1")
	s.Equal(http.StatusForbidden, common.HTTPStatusFromError(err))
}

func (s *TeamServiceSuite) TestInvite_OnlyLeader() {
	s.teams.On("FindByID", s.ctx, "t1").Return(&model.Team{ID: "t1"}, nil).Once()
	s.teams.On("FindMember", s.ctx, "t1", "bob").Return(&model.TeamMember{Role: model.TeamRoleMember}, nil).Once()

	_, err := s.svc.Invite(s.ctx, "bob", "t1", "carol")
	s.ErrorIs(err, common.ErrNotTeamLeader)
}

func (s *TeamServiceSuite) TestInvite_NotifiesInvitee() {
	s.teams.On("FindByID", s.ctx, "t1").Return(&model.Team{ID: "t1", Name: "Gophers"}, nil).Once()
	s.teams.On("FindMember", s.ctx, "t1", "alice").Return(&model.TeamMember{Role: model.TeamRoleLeader}, nil).Once()
	s.users.On("FindByID", s.ctx, "carol").Return(&model.User{ID: "carol"}, nil).Once()
	s.teams.On("FindMember", s.ctx, "t1", "carol").Return(nil, common.ErrNotTeamMember).Once()
	s.teams.On("CreateInvitation", s.ctx, mock.AnythingOfType("*model.TeamInvitation")).Return(nil).Once()
	s.notifs.On("Create", s.ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "carol" && n.Type == model.NotificationTeamInvite
	})).Return(nil).Once()

	inv, err := s.svc.Invite(s.ctx, "alice", "t1", "carol")
	s.Require().NoError(err)
	s.Equal(model.InvitationPending, inv.Status)
}

func (s *TeamServiceSuite) TestRespondInvitation_AcceptNotifiesInviter() {
	inv := &model.TeamInvitation{ID: "i1", TeamID: "t1", InviterID: "alice", InviteeID: "carol", Status: model.InvitationAccepted}
	s.teams.On("RespondInvitation", s.ctx, "i1", "carol", true, testNow).Return(inv, nil).Once()
	s.notifs.On("Create", s.ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "alice" && n.Type == model.NotificationTeamInviteAccepted
	})).Return(nil).Once()

	got, err := s.svc.RespondInvitation(s.ctx, "carol", "i1", true)
	s.Require().NoError(err)
	s.Equal(model.InvitationAccepted, got.Status)
}

func (s *TeamServiceSuite) TestRespondInvitation_SecondAnswerNotFound() {
	s.teams.On("RespondInvitation", s.ctx, "i1", "carol", true, testNow).Return(nil, common.ErrInvitationNotFound).Once()

	_, err := s.svc.RespondInvitation(s.ctx, "carol", "i1", true)
	s.Equal(http.StatusNotFound, common.HTTPStatusFromError(err))
}

func (s *TeamServiceSuite) TestLeave_LeaderWithMembersBlocked() {
	s.teams.On("RemoveMember", s.ctx, "t1", "alice").Return(common.ErrLeaderCannotLeave).Once()

	err := s.svc.Leave(s.ctx, "alice", "t1")
	s.ErrorIs(err, common.ErrLeaderCannotLeave)
}

func (s *TeamServiceSuite) TestLeave_Member() {
	s.teams.On("RemoveMember", s.ctx, "t1", "bob").Return(nil).Once()

	s.NoError(s.svc.Leave(s.ctx, "bob", "t1"))
}

func (s *TeamServiceSuite) TestGet_HidesInviteCodeFromOutsiders() {
	s.teams.On("FindByID", s.ctx, "t1").Return(&model.Team{ID: "t1", InviteCode: "SECRET12"}, nil).Once()
	s.teams.On("ListMembers", s.ctx, "t1").Return([]model.TeamMember{{UserID: "alice"}}, nil).Once()

	team, err := s.svc.Get(s.ctx, "t1", "mallory")
	s.Require().NoError(err)
	s.Empty(team.InviteCode)
	s.Len(team.Members, 1)
}

func TestTeamServiceSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceSuite))
}

func TestNewInviteCode(t *testing.T) {
	a, b := newInviteCode(), newInviteCode()
	require.Len(t, a, inviteCodeLength)
	require.NotEqual(t, a, b)
}
