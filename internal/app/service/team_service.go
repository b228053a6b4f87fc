package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	inviteCodeLength = 8
	teamListLimit    = 100
	maxTeamName      = 64
)

type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	notifier *NotificationService
	now      func() time.Time
}

func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, notifier *NotificationService) *TeamService {
	return &TeamService{teamRepo: teamRepo, userRepo: userRepo, notifier: notifier, now: time.Now}
}

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsOpen      bool   `json:"is_open"`
}

type JoinTeamRequest struct {
	InviteCode string `json:"invite_code"`
}

type InviteRequest struct {
	UserID string `json:"user_id"`
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:inviteCodeLength])
}

func (s *TeamService) Create(ctx context.Context, userID string, req CreateTeamRequest) (*model.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxTeamName {
		return nil, common.E(common.ErrValidation, fmt.Sprintf("name must be 1 to %d characters", maxTeamName))
	}

	team := &model.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		InviteCode:  newInviteCode(),
		IsOpen:      req.IsOpen,
		CreatedBy:   userID,
	}
	if err := s.teamRepo.CreateWithLeader(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	logger.FromContext(ctx).Info().Str("team_id", team.ID).Str("user_id", userID).Msg("team created")
	return team, nil
}

func (s *TeamService) List(ctx context.Context) ([]model.Team, error) {
	teams, err := s.teamRepo.List(ctx, teamListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for i := range teams {
		teams[i].InviteCode = ""
	}
	return teams, nil
}

// Get returns the team with its members. The invite code is only shown to members.
func (s *TeamService) Get(ctx context.Context, teamID, callerID string) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	team.Members = members

	isMember := false
	for _, m := range members {
		if m.UserID == callerID {
			isMember = true
			break
		}
	}
	if !isMember {
		team.InviteCode = ""
	}
	return team, nil
}

func (s *TeamService) JoinByCode(ctx context.Context, userID, code string) (*model.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, common.E(common.ErrValidation, "invite_code is required")
	}
	team, err := s.teamRepo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, team, userID)
}

func (s *TeamService) JoinOpen(ctx context.Context, userID, teamID string) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsOpen {
		return nil, common.ErrTeamClosed
	}
	return s.join(ctx, team, userID)
}

func (s *TeamService) join(ctx context.Context, team *model.Team, userID string) (*model.Team, error) {
	if err := s.teamRepo.AddMember(ctx, team.ID, userID, model.TeamRoleMember); err != nil {
		return nil, err
	}
	team.MemberCount++

	logger.FromContext(ctx).Info().Str("team_id", team.ID).Str("user_id", userID).Msg("user joined team")
	s.notifier.Notify(ctx, team.CreatedBy, userID, model.NotificationTeamJoin, team.ID,
		fmt.Sprintf("A new member joined %s", team.Name))
	return team, nil
}

func (s *TeamService) Invite(ctx context.Context, leaderID, teamID, inviteeID string) (*model.TeamInvitation, error) {
	if inviteeID == "" {
		return nil, common.E(common.ErrValidation, "user_id is required")
	}
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLeader(ctx, teamID, leaderID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, inviteeID); err != nil {
		return nil, err
	}
	_, err = s.teamRepo.FindMember(ctx, teamID, inviteeID)
	switch {
	case err == nil:
		return nil, common.ErrAlreadyMember
	case !errors.Is(err, common.ErrNotTeamMember):
		return nil, err
	}

	inv := &model.TeamInvitation{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		TeamName:  team.Name,
		InviterID: leaderID,
		InviteeID: inviteeID,
		Status:    model.InvitationPending,
	}
	if err := s.teamRepo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, inviteeID, leaderID, model.NotificationTeamInvite, inv.ID,
		fmt.Sprintf("You were invited to join %s", team.Name))
	return inv, nil
}

func (s *TeamService) requireLeader(ctx context.Context, teamID, userID string) error {
	m, err := s.teamRepo.FindMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotTeamMember) {
			return common.ErrNotTeamLeader
		}
		return err
	}
	if m.Role != model.TeamRoleLeader {
		return common.ErrNotTeamLeader
	}
	return nil
}

func (s *TeamService) Invitations(ctx context.Context, userID string) ([]model.TeamInvitation, error) {
	return s.teamRepo.ListPendingInvitations(ctx, userID)
}

// RespondInvitation accepts or declines. Answering twice yields ErrInvitationNotFound.
func (s *TeamService) RespondInvitation(ctx context.Context, userID, invitationID string, accept bool) (*model.TeamInvitation, error) {
	inv, err := s.teamRepo.RespondInvitation(ctx, invitationID, userID, accept, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().
		Str("invitation_id", inv.ID).
		Str("status", string(inv.Status)).
		Msg("team invitation answered")

	if accept {
		s.notifier.Notify(ctx, inv.InviterID, userID, model.NotificationTeamInviteAccepted, inv.TeamID,
			"Your team invitation was accepted")
	}
	return inv, nil
}

// Leave removes the caller. A leader may only leave once they are the last member.
func (s *TeamService) Leave(ctx context.Context, userID, teamID string) error {
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Str("team_id", teamID).Msg("left team")
	return nil
}
