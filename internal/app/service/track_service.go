package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/domain/scoring"
	"codequest/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxTrackProblems = 500

type TrackService struct {
	trackRepo    repository.TrackRepository
	progressRepo repository.ProgressRepository
	statsRepo    repository.StatsRepository
	now          func() time.Time
}

func NewTrackService(trackRepo repository.TrackRepository, progressRepo repository.ProgressRepository, statsRepo repository.StatsRepository) *TrackService {
	return &TrackService{trackRepo: trackRepo, progressRepo: progressRepo, statsRepo: statsRepo, now: time.Now}
}

type CreateTrackProblem struct {
	Title      string                  `json:"title"`
	URL        string                  `json:"url"`
	Difficulty model.ProblemDifficulty `json:"difficulty"`
	Points     int                     `json:"points"`
}

type CreateTrackRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Problems    []CreateTrackProblem `json:"problems"`
}

// ProgressChange is returned by the solved toggles.
type ProgressChange struct {
	ProblemID int64            `json:"problem_id"`
	Solved    bool             `json:"solved"`
	Changed   bool             `json:"changed"`
	Stats     *model.UserStats `json:"stats,omitempty"`
}

func (s *TrackService) Create(ctx context.Context, adminID string, req CreateTrackRequest) (*model.Track, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.E(common.ErrValidation, "title is required")
	}
	if len(req.Problems) > maxTrackProblems {
		return nil, common.E(common.ErrValidation, fmt.Sprintf("a track holds at most %d problems", maxTrackProblems))
	}
	trackSlug := slug.Make(title)
	if trackSlug == "" {
		return nil, common.E(common.ErrValidation, "title must contain letters or digits")
	}

	track := &model.Track{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        trackSlug,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   &adminID,
		Problems:    make([]model.TrackProblem, 0, len(req.Problems)),
	}
	for i, p := range req.Problems {
		if strings.TrimSpace(p.Title) == "" {
			return nil, common.E(common.ErrValidation, fmt.Sprintf("problems[%d].title is required", i))
		}
		if !p.Difficulty.Valid() {
			return nil, common.E(common.ErrValidation, fmt.Sprintf("problems[%d].difficulty must be Easy, Medium or Hard", i))
		}
		if p.Points < 0 {
			return nil, common.E(common.ErrValidation, fmt.Sprintf("problems[%d].points cannot be negative", i))
		}
		track.Problems = append(track.Problems, model.TrackProblem{
			Title:      strings.TrimSpace(p.Title),
			URL:        strings.TrimSpace(p.URL),
			Difficulty: p.Difficulty,
			Points:     scoring.ProblemPoints(p.Difficulty, p.Points),
		})
	}

	if err := s.trackRepo.Create(ctx, track); err != nil {
		return nil, err
	}
	track.ProblemCount = len(track.Problems)

	logger.FromContext(ctx).Info().Str("slug", track.Slug).Int("problems", track.ProblemCount).Msg("track created")
	return track, nil
}

func (s *TrackService) List(ctx context.Context) ([]model.Track, error) {
	return s.trackRepo.List(ctx)
}

// Get loads a track by slug. Progress is only filled in when userID is set.
func (s *TrackService) Get(ctx context.Context, trackSlug, userID string) (*model.TrackProgress, error) {
	track, err := s.trackRepo.FindBySlug(ctx, trackSlug)
	if err != nil {
		return nil, err
	}
	view := &model.TrackProgress{Track: track, SolvedIDs: []int64{}, RevisionIDs: []int64{}}
	if userID == "" {
		return view, nil
	}

	progress, err := s.progressRepo.ListForTrack(ctx, userID, track.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	points := make(map[int64]int, len(track.Problems))
	for _, p := range track.Problems {
		points[p.ID] = p.Points
	}
	for _, pp := range progress {
		if pp.Solved {
			view.SolvedIDs = append(view.SolvedIDs, pp.ProblemID)
			view.PointsEarned += points[pp.ProblemID]
		}
		if pp.Revision {
			view.RevisionIDs = append(view.RevisionIDs, pp.ProblemID)
		}
	}
	if n := len(track.Problems); n > 0 {
		view.PercentComplete = float64(len(view.SolvedIDs)) * 100 / float64(n)
	}
	return view, nil
}

func (s *TrackService) MarkSolved(ctx context.Context, userID string, problemID int64) (*ProgressChange, error) {
	problem, err := s.trackRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	changed, err := s.progressRepo.MarkSolved(ctx, userID, problemID, problem.Points, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.afterToggle(ctx, userID, problemID, true, changed)
}

func (s *TrackService) UnmarkSolved(ctx context.Context, userID string, problemID int64) (*ProgressChange, error) {
	problem, err := s.trackRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	changed, err := s.progressRepo.UnmarkSolved(ctx, userID, problemID, problem.Points)
	if err != nil {
		return nil, err
	}
	return s.afterToggle(ctx, userID, problemID, false, changed)
}

func (s *TrackService) afterToggle(ctx context.Context, userID string, problemID int64, solved, changed bool) (*ProgressChange, error) {
	if changed {
		if err := s.RecomputeStreaks(ctx, userID); err != nil {
			return nil, err
		}
	}
	stats, err := s.statsRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressChange{ProblemID: problemID, Solved: solved, Changed: changed, Stats: liveStats(stats, s.now())}, nil
}

func (s *TrackService) SetRevision(ctx context.Context, userID string, problemID int64, revision bool) error {
	if _, err := s.trackRepo.FindProblemByID(ctx, problemID); err != nil {
		return err
	}
	return s.progressRepo.SetRevision(ctx, userID, problemID, revision)
}

// RecomputeStreaks rebuilds the streak counters from every solve time the user has.
func (s *TrackService) RecomputeStreaks(ctx context.Context, userID string) error {
	times, err := s.progressRepo.ListSolveTimes(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load solve times: %w", err)
	}
	streaks := scoring.ComputeStreaks(times, s.now().UTC())

	var last *time.Time
	if n := len(times); n > 0 {
		day := times[n-1].UTC().Truncate(24 * time.Hour)
		last = &day
	}
	if err := s.statsRepo.UpdateStreaks(ctx, userID, streaks.Current, streaks.Longest, streaks.Weekly, last); err != nil {
		return fmt.Errorf("failed to store streaks: %w", err)
	}
	return nil
}
