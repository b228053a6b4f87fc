package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/domain/scoring"
	"codequest/internal/platform/logger"
	"codequest/internal/platform/queue"

	"golang.org/x/sync/errgroup"
)

var leetCodeUsernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,40}$`)

// StatsSyncJob is the queue payload consumed by the stats sync worker.
type StatsSyncJob struct {
	UserID string `json:"user_id"`
}

type UserService struct {
	userRepo   repository.UserRepository
	statsRepo  repository.StatsRepository
	followRepo repository.FollowRepository
	syncQueue  queue.JobQueue
	now        func() time.Time
}

func NewUserService(userRepo repository.UserRepository, statsRepo repository.StatsRepository, followRepo repository.FollowRepository, syncQueue queue.JobQueue) *UserService {
	return &UserService{userRepo: userRepo, statsRepo: statsRepo, followRepo: followRepo, syncQueue: syncQueue, now: time.Now}
}

type LeetCodeUsernameRequest struct {
	Username string `json:"username"`
}

func (s *UserService) Me(ctx context.Context, userID string) (*model.UserProfile, error) {
	return s.Profile(ctx, userID, userID)
}

// Profile gathers the user, their stats and follow counts concurrently.
func (s *UserService) Profile(ctx context.Context, viewerID, userID string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := s.userRepo.FindByID(gctx, userID)
		if err != nil {
			return err
		}
		if viewerID != userID {
			u.Email = ""
		}
		profile.User = u
		return nil
	})
	g.Go(func() error {
		st, err := s.statsRepo.Get(gctx, userID)
		if err != nil {
			return err
		}
		profile.Stats = liveStats(st, s.now())
		return nil
	})
	g.Go(func() error {
		followers, following, err := s.followRepo.Counts(gctx, userID)
		if err != nil {
			return err
		}
		profile.FollowerCount, profile.FollowingCount = followers, following
		return nil
	})
	if viewerID != "" && viewerID != userID {
		g.Go(func() error {
			ok, err := s.followRepo.IsFollowing(gctx, viewerID, userID)
			if err != nil {
				return err
			}
			profile.IsFollowing = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

// liveStats zeroes streaks that lapsed after the stored counters were last written.
func liveStats(st *model.UserStats, now time.Time) *model.UserStats {
	st.CurrentStreak, st.WeeklyStreak = scoring.ActiveStreaks(st.CurrentStreak, st.WeeklyStreak, st.LastSolvedOn, now.UTC())
	return st
}

// SetLeetCodeUsername links the external account. An empty username unlinks it.
func (s *UserService) SetLeetCodeUsername(ctx context.Context, userID, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	var value *string
	if username != "" {
		if !leetCodeUsernamePattern.MatchString(username) {
			return nil, common.E(common.ErrValidation, "username may only contain letters, digits, '_' and '-'")
		}
		value = &username
	}
	if err := s.userRepo.UpdateLeetCodeUsername(ctx, userID, value); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, userID)
}

func (s *UserService) RequestStatsSync(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.LeetCodeUsername == nil || *user.LeetCodeUsername == "" {
		return common.E(common.ErrBadRequest, "Link a LeetCode username first")
	}

	payload, err := json.Marshal(StatsSyncJob{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to encode sync job: %w", err)
	}
	if err := s.syncQueue.Push(ctx, string(payload)); err != nil {
		return fmt.Errorf("failed to enqueue sync job: %w", err)
	}

	logger.FromContext(ctx).Info().Str("user_id", userID).Msg("stats sync enqueued")
	return nil
}
