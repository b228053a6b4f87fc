package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

func (d ProblemDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Track is a curated problem set.
type Track struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description"`
	CreatedBy    *string        `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ProblemCount int            `json:"problem_count"`
	Problems     []TrackProblem `json:"problems,omitempty"`
}

type TrackProblem struct {
	ID         int64             `json:"id"`
	TrackID    string            `json:"track_id"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	Points     int               `json:"points"`
	Position   int               `json:"position"`
}

type ProblemProgress struct {
	UserID    string     `json:"user_id"`
	ProblemID int64      `json:"problem_id"`
	Solved    bool       `json:"solved"`
	Revision  bool       `json:"revision"`
	SolvedAt  *time.Time `json:"solved_at,omitempty"`
}

// TrackProgress is the caller's view of one track.
type TrackProgress struct {
	Track           *Track  `json:"track"`
	SolvedIDs       []int64 `json:"solved_problem_ids"`
	RevisionIDs     []int64 `json:"revision_problem_ids"`
	PointsEarned    int     `json:"points_earned"`
	PercentComplete float64 `json:"percent_complete"`
}
