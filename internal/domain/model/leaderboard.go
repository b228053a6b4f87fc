package model

import "time"

type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	TotalPoints    int        `json:"total_points"`
	ProblemsSolved int        `json:"problems_solved"`
	CurrentStreak  int        `json:"current_streak"`
	LastSolvedOn   *time.Time `json:"last_solved_on,omitempty"`
}

type TeamLeaderboardEntry struct {
	Rank        int    `json:"rank"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	TotalPoints int    `json:"total_points"`
}

type LeaderboardScope string

const (
	ScopeGlobal    LeaderboardScope = "global"
	ScopeFollowing LeaderboardScope = "following"
)
