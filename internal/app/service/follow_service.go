package service

import (
	"context"
	"fmt"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/platform/logger"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *NotificationService
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, notifier *NotificationService) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, notifier: notifier}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return common.ErrSelfFollow
	}
	follower, err := s.userRepo.FindByID(ctx, followerID)
	if err != nil {
		return fmt.Errorf("failed to load follower: %w", err)
	}
	if _, err := s.userRepo.FindByID(ctx, followeeID); err != nil {
		return err
	}

	if err := s.followRepo.Follow(ctx, followerID, followeeID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("follower", followerID).Str("followee", followeeID).Msg("user followed")
	s.notifier.Notify(ctx, followeeID, followerID, model.NotificationFollow, followerID,
		fmt.Sprintf("%s started following you", follower.Username))
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return common.ErrSelfFollow
	}
	return s.followRepo.Unfollow(ctx, followerID, followeeID)
}

func (s *FollowService) Followers(ctx context.Context, userID string) ([]model.UserSummary, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID string) ([]model.UserSummary, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID)
}
