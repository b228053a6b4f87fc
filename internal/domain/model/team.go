package model

import "time"

type TeamRole string
type InvitationStatus string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleMember TeamRole = "member"

	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InviteCode  string       `json:"invite_code,omitempty"`
	IsOpen      bool         `json:"is_open"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	MemberCount int          `json:"member_count"`
	TotalPoints int          `json:"total_points"`
	Members     []TeamMember `json:"members,omitempty"`
}

type TeamMember struct {
	TeamID      string    `json:"team_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Role        TeamRole  `json:"role"`
	TotalPoints int       `json:"total_points"`
	JoinedAt    time.Time `json:"joined_at"`
}

type TeamInvitation struct {
	ID          string           `json:"id"`
	TeamID      string           `json:"team_id"`
	TeamName    string           `json:"team_name,omitempty"`
	InviterID   string           `json:"inviter_id"`
	InviteeID   string           `json:"invitee_id"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}
