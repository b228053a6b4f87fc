package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	HashedPassword   string    `json:"-"` // Not exposed
	Role             string    `json:"role"`
	LeetCodeUsername *string   `json:"leetcode_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserStats is the denormalized per-user scoreboard row.
type UserStats struct {
	UserID         string     `json:"user_id"`
	TotalPoints    int        `json:"total_points"`
	ProblemsSolved int        `json:"problems_solved"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	WeeklyStreak   int        `json:"weekly_streak"`
	LastSolvedOn   *time.Time `json:"last_solved_on,omitempty"`

	LeetCodeEasy     int        `json:"leetcode_easy"`
	LeetCodeMedium   int        `json:"leetcode_medium"`
	LeetCodeHard     int        `json:"leetcode_hard"`
	LeetCodeTotal    int        `json:"leetcode_total"`
	LeetCodeSyncedAt *time.Time `json:"leetcode_synced_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type UserProfile struct {
	User           *User      `json:"user"`
	Stats          *UserStats `json:"stats"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	IsFollowing    bool       `json:"is_following"`
}
