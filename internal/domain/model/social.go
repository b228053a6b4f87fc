package model

import "time"

type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSummary is the short form of a user used in follower lists.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
}

type NotificationType string

const (
	NotificationFollow             NotificationType = "follow"
	NotificationTeamInvite         NotificationType = "team_invite"
	NotificationTeamInviteAccepted NotificationType = "team_invite_accepted"
	NotificationTeamJoin           NotificationType = "team_join"
	NotificationBattleJoined       NotificationType = "battle_joined"
	NotificationBattleStarted      NotificationType = "battle_started"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"` // Recipient
	ActorID   *string          `json:"actor_id,omitempty"`
	Type      NotificationType `json:"type"`
	EntityID  *string          `json:"entity_id,omitempty"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}
