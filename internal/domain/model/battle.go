package model

import "time"

type BattleType string
type BattleStatus string

const (
	BattleTypeOneVsOne   BattleType = "1v1"
	BattleTypeTeam       BattleType = "team"
	BattleTypeFreeForAll BattleType = "free_for_all"

	BattleStatusWaiting    BattleStatus = "waiting"
	BattleStatusInProgress BattleStatus = "in_progress"
	BattleStatusCompleted  BattleStatus = "completed"
)

func (t BattleType) Valid() bool {
	switch t {
	case BattleTypeOneVsOne, BattleTypeTeam, BattleTypeFreeForAll:
		return true
	}
	return false
}

func (s BattleStatus) Valid() bool {
	switch s {
	case BattleStatusWaiting, BattleStatusInProgress, BattleStatusCompleted:
		return true
	}
	return false
}

type Battle struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	BattleType      BattleType   `json:"battle_type"`
	ProblemIDs      []int64      `json:"problem_ids"`
	MaxParticipants int          `json:"max_participants"`
	DurationMinutes int          `json:"duration_minutes"`
	CreatedBy       string       `json:"created_by"`
	Status          BattleStatus `json:"status"`
	StartedAt       *time.Time   `json:"started_at"`
	CreatedAt       time.Time    `json:"created_at"`
}

// EndsAt is the deadline of a started battle.
func (b *Battle) EndsAt() *time.Time {
	if b.StartedAt == nil {
		return nil
	}
	end := b.StartedAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
	return &end
}

// Expired reports whether a started battle has run past its duration at now.
func (b *Battle) Expired(now time.Time) bool {
	end := b.EndsAt()
	return end != nil && !now.Before(*end)
}

func (b *Battle) HasProblem(problemID int64) bool {
	for _, id := range b.ProblemIDs {
		if id == problemID {
			return true
		}
	}
	return false
}

type BattleParticipant struct {
	ID             string    `json:"id"`
	BattleID       string    `json:"battle_id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	Score          int       `json:"score"`
	ProblemsSolved []int64   `json:"problems_solved"`
	JoinedAt       time.Time `json:"joined_at"`
}

type BattleSubmission struct {
	ID               string    `json:"id"`
	BattleID         string    `json:"battle_id"`
	UserID           string    `json:"user_id"`
	ProblemID        int64     `json:"problem_id"`
	Solved           bool      `json:"solved"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	ScoreGained      int       `json:"score_gained"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// BattleDetail is the room/lobby view: the battle, its standings and countdown.
type BattleDetail struct {
	Battle              *Battle             `json:"battle"`
	Participants        []BattleParticipant `json:"participants"`
	EndsAt              *time.Time          `json:"ends_at,omitempty"`
	SecondsRemaining    *int                `json:"seconds_remaining,omitempty"`
	CanStart            bool                `json:"can_start"`
	PollIntervalSeconds int                 `json:"poll_interval_seconds"`
}
