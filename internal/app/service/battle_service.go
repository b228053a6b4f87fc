package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/domain/scoring"
	"codequest/internal/platform/logger"
	"codequest/internal/realtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	minBattleParticipants     = 2
	defaultBattleParticipants = 10
	maxBattleParticipants     = 100
	maxBattleDurationMinutes  = 24 * 60
	maxBattleProblems         = 20
	battleListLimit           = 100
)

type BattleService struct {
	battleRepo   repository.BattleRepository
	notifier     *NotificationService
	broker       realtime.Broker
	pollInterval int
	now          func() time.Time
}

func NewBattleService(battleRepo repository.BattleRepository, notifier *NotificationService, broker realtime.Broker, pollIntervalSeconds int) *BattleService {
	return &BattleService{
		battleRepo:   battleRepo,
		notifier:     notifier,
		broker:       broker,
		pollInterval: pollIntervalSeconds,
		now:          time.Now,
	}
}

type CreateBattleRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	BattleType      model.BattleType `json:"battle_type"`
	ProblemIDs      []int64          `json:"problem_ids"`
	MaxParticipants int              `json:"max_participants"`
	DurationMinutes int              `json:"duration_minutes"`
}

type SubmitBattleRequest struct {
	ProblemID int64 `json:"problem_id"`
	Solved    bool  `json:"solved"`
	// TimeTakenSeconds is accepted for compatibility but the server measures elapsed time itself.
	TimeTakenSeconds int `json:"time_taken_seconds"`
}

type SubmitBattleResponse struct {
	Submission  *model.BattleSubmission  `json:"submission"`
	Participant *model.BattleParticipant `json:"participant"`
}

func (req *CreateBattleRequest) normalize() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return common.E(common.ErrValidation, "Title is required")
	}
	if !req.BattleType.Valid() {
		return common.E(common.ErrValidation, "battle_type must be one of 1v1, team, free_for_all")
	}
	if len(req.ProblemIDs) == 0 || len(req.ProblemIDs) > maxBattleProblems {
		return common.E(common.ErrValidation, fmt.Sprintf("Battle needs between 1 and %d problems", maxBattleProblems))
	}
	seen := make(map[int64]struct{}, len(req.ProblemIDs))
	for _, id := range req.ProblemIDs {
		if id <= 0 {
			return common.E(common.ErrValidation, "Problem ids must be positive")
		}
		if _, dup := seen[id]; dup {
			return common.E(common.ErrValidation, "Problem ids must be unique")
		}
		seen[id] = struct{}{}
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > maxBattleDurationMinutes {
		return common.E(common.ErrValidation, fmt.Sprintf("duration_minutes must be between 1 and %d", maxBattleDurationMinutes))
	}

	switch {
	case req.BattleType == model.BattleTypeOneVsOne:
		req.MaxParticipants = minBattleParticipants
	case req.MaxParticipants == 0:
		req.MaxParticipants = defaultBattleParticipants
	}
	if req.MaxParticipants < minBattleParticipants || req.MaxParticipants > maxBattleParticipants {
		return common.E(common.ErrValidation, fmt.Sprintf("max_participants must be between %d and %d", minBattleParticipants, maxBattleParticipants))
	}
	return nil
}

func (s *BattleService) Create(ctx context.Context, userID string, req CreateBattleRequest) (*model.Battle, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	battle := &model.Battle{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		BattleType:      req.BattleType,
		ProblemIDs:      req.ProblemIDs,
		MaxParticipants: req.MaxParticipants,
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       userID,
		Status:          model.BattleStatusWaiting,
	}
	creator := &model.BattleParticipant{
		ID:             uuid.NewString(),
		BattleID:       battle.ID,
		UserID:         userID,
		Score:          0,
		ProblemsSolved: []int64{},
	}

	if err := s.battleRepo.CreateWithCreator(ctx, battle, creator); err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	logger.FromContext(ctx).Info().Str("battle_id", battle.ID).Str("user_id", userID).Msg("battle created")
	return battle, nil
}

// ParseBattleStatus validates an optional status filter.
func ParseBattleStatus(raw string) (model.BattleStatus, error) {
	if raw == "" {
		return "", nil
	}
	status := model.BattleStatus(raw)
	if !status.Valid() {
		return "", common.E(common.ErrValidation, "status must be one of waiting, in_progress, completed")
	}
	return status, nil
}

func (s *BattleService) List(ctx context.Context, status model.BattleStatus) ([]model.Battle, error) {
	battles, err := s.battleRepo.List(ctx, status, battleListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}

	out := battles[:0]
	for i := range battles {
		if err := s.completeIfExpired(ctx, &battles[i]); err != nil {
			return nil, err
		}
		// A battle that just completed no longer matches an in_progress filter.
		if status != "" && battles[i].Status != status {
			continue
		}
		out = append(out, battles[i])
	}
	return out, nil
}

// Get returns the battle with its standings and, while running, the countdown.
func (s *BattleService) Get(ctx context.Context, battleID, callerID string) (*model.BattleDetail, error) {
	var (
		battle       *model.Battle
		participants []model.BattleParticipant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		battle, err = s.battleRepo.FindByID(gctx, battleID)
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = s.battleRepo.ListParticipants(gctx, battleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.completeIfExpired(ctx, battle); err != nil {
		return nil, err
	}

	detail := &model.BattleDetail{
		Battle:              battle,
		Participants:        participants,
		PollIntervalSeconds: s.pollInterval,
		CanStart: callerID == battle.CreatedBy &&
			battle.Status == model.BattleStatusWaiting &&
			len(participants) >= minBattleParticipants &&
			len(participants) <= battle.MaxParticipants,
	}
	if battle.Status != model.BattleStatusWaiting {
		detail.EndsAt = battle.EndsAt()
	}
	if battle.Status == model.BattleStatusInProgress && detail.EndsAt != nil {
		remaining := int(math.Ceil(detail.EndsAt.Sub(s.now()).Seconds()))
		remaining = max(remaining, 0)
		detail.SecondsRemaining = &remaining
	}
	return detail, nil
}

func (s *BattleService) Join(ctx context.Context, battleID, userID string) (*model.BattleParticipant, error) {
	battle, err := s.battleRepo.FindByID(ctx, battleID)
	if err != nil {
		return nil, err
	}

	p := &model.BattleParticipant{
		ID:             uuid.NewString(),
		BattleID:       battleID,
		UserID:         userID,
		ProblemsSolved: []int64{},
	}
	if err := s.battleRepo.AddParticipant(ctx, p); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("battle_id", battleID).Str("user_id", userID).Msg("participant joined battle")
	s.publish(ctx, battleID, realtime.EventBattleJoined, p)
	s.notifier.Notify(ctx, battle.CreatedBy, userID, model.NotificationBattleJoined, battleID,
		fmt.Sprintf("A new challenger joined %q", battle.Title))
	return p, nil
}

// Start moves a waiting battle to in_progress. The guard and the write are one statement;
// when it matches nothing the battle is re-read only to pick the right error.
func (s *BattleService) Start(ctx context.Context, battleID, userID string) (*model.Battle, error) {
	battle, err := s.battleRepo.StartIfWaiting(ctx, battleID, userID, minBattleParticipants, s.now().UTC())
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to start battle: %w", err)
		}
		return nil, s.classifyStartFailure(ctx, battleID, userID)
	}

	logger.FromContext(ctx).Info().Str("battle_id", battleID).Time("started_at", *battle.StartedAt).Msg("battle started")
	s.publish(ctx, battleID, realtime.EventBattleStarted, battle)

	participants, err := s.battleRepo.ListParticipants(ctx, battleID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("battle_id", battleID).Msg("could not load participants to notify")
		return battle, nil
	}
	for _, p := range participants {
		s.notifier.Notify(ctx, p.UserID, userID, model.NotificationBattleStarted, battleID,
			fmt.Sprintf("Battle %q has started", battle.Title))
	}
	return battle, nil
}

func (s *BattleService) classifyStartFailure(ctx context.Context, battleID, userID string) error {
	battle, err := s.battleRepo.FindByID(ctx, battleID)
	if err != nil {
		return err
	}
	if battle.CreatedBy != userID {
		return common.ErrNotCreator
	}
	if battle.Status != model.BattleStatusWaiting {
		return common.ErrAlreadyStarted
	}
	return common.ErrNotEnoughPlayers
}

// Submit records one attempt. Elapsed time is measured from started_at on the server.
func (s *BattleService) Submit(ctx context.Context, battleID, userID string, req SubmitBattleRequest) (*SubmitBattleResponse, error) {
	if req.ProblemID <= 0 {
		return nil, common.E(common.ErrValidation, "problem_id is required")
	}

	battle, err := s.battleRepo.FindByID(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if err := s.completeIfExpired(ctx, battle); err != nil {
		return nil, err
	}
	if battle.Status != model.BattleStatusInProgress || battle.StartedAt == nil {
		return nil, common.ErrBattleNotInProgress
	}
	if _, err := s.battleRepo.FindParticipant(ctx, battleID, userID); err != nil {
		return nil, err
	}
	if !battle.HasProblem(req.ProblemID) {
		return nil, common.E(common.ErrValidation, "Problem is not part of this battle")
	}

	now := s.now().UTC()
	elapsed := max(int(now.Sub(*battle.StartedAt).Seconds()), 0)

	sub := &model.BattleSubmission{
		ID:               uuid.NewString(),
		BattleID:         battleID,
		UserID:           userID,
		ProblemID:        req.ProblemID,
		Solved:           req.Solved,
		TimeTakenSeconds: elapsed,
	}
	if req.Solved {
		sub.ScoreGained = scoring.ScoreGained(elapsed)
	}

	participant, err := s.battleRepo.RecordSubmission(ctx, sub, now)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("battle_id", battleID).
		Str("user_id", userID).
		Int64("problem_id", req.ProblemID).
		Bool("solved", req.Solved).
		Int("score_gained", sub.ScoreGained).
		Int("score", participant.Score).
		Msg("battle submission scored")
	s.publish(ctx, battleID, realtime.EventBattleSubmission, participant)

	return &SubmitBattleResponse{Submission: sub, Participant: participant}, nil
}

func (s *BattleService) Submissions(ctx context.Context, battleID string) ([]model.BattleSubmission, error) {
	if _, err := s.battleRepo.FindByID(ctx, battleID); err != nil {
		return nil, err
	}
	return s.battleRepo.ListSubmissions(ctx, battleID)
}

// CanWatch reports whether userID may subscribe to the battle's live events.
func (s *BattleService) CanWatch(ctx context.Context, battleID, userID string) error {
	_, err := s.battleRepo.FindParticipant(ctx, battleID, userID)
	return err
}

// completeIfExpired applies the lazy in_progress -> completed transition on read.
func (s *BattleService) completeIfExpired(ctx context.Context, battle *model.Battle) error {
	if battle.Status != model.BattleStatusInProgress || !battle.Expired(s.now()) {
		return nil
	}
	changed, err := s.battleRepo.CompleteIfExpired(ctx, battle.ID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to complete battle: %w", err)
	}
	battle.Status = model.BattleStatusCompleted
	if changed {
		logger.FromContext(ctx).Info().Str("battle_id", battle.ID).Msg("battle completed")
		s.publish(ctx, battle.ID, realtime.EventBattleCompleted, battle)
	}
	return nil
}

func (s *BattleService) publish(ctx context.Context, battleID, eventType string, data any) {
	if err := s.broker.Publish(ctx, realtime.BattleTopic(battleID), eventType, data); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("battle_id", battleID).Str("event", eventType).Msg("failed to publish battle event")
	}
}
