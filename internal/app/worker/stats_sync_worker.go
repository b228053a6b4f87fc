package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codequest/internal/app/service"
	"codequest/internal/domain/repository"
	"codequest/internal/leetcode"
	"codequest/internal/platform/logger"
	"codequest/internal/platform/queue"

	"github.com/rs/zerolog"
)

// ErrNoLeetCodeUsername fails a job whose user has no linked account.
var ErrNoLeetCodeUsername = errors.New("user has no leetcode username")

type Options struct {
	LockPrefix string
	LockTTL    time.Duration
	PopTimeout time.Duration
	RetryDelay time.Duration
}

type StatsSyncWorker struct {
	jobs      queue.JobQueue
	locker    queue.Locker
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	client    leetcode.ClientInterface
	opts      Options
	log       zerolog.Logger
	now       func() time.Time
}

func NewStatsSyncWorker(jobs queue.JobQueue, locker queue.Locker, userRepo repository.UserRepository, statsRepo repository.StatsRepository, client leetcode.ClientInterface, opts Options) *StatsSyncWorker {
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 5 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	return &StatsSyncWorker{
		jobs:      jobs,
		locker:    locker,
		userRepo:  userRepo,
		statsRepo: statsRepo,
		client:    client,
		opts:      opts,
		log:       logger.WithComponent("stats_sync_worker"),
		now:       time.Now,
	}
}

// Start processes jobs one at a time until ctx is cancelled.
func (w *StatsSyncWorker) Start(ctx context.Context) {
	w.log.Info().Msg("stats sync worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("stats sync worker stopping")
			return
		}

		payload, err := w.jobs.Pop(ctx, w.opts.PopTimeout)
		switch {
		case err == nil:
			w.processWithLock(ctx, payload)
		case errors.Is(err, queue.ErrEmpty):
		case ctx.Err() != nil:
		default:
			w.log.Error().Err(err).Msg("failed to pop sync job")
			select {
			case <-ctx.Done():
			case <-time.After(w.opts.RetryDelay):
			}
		}
	}
}

func (w *StatsSyncWorker) lockKey(userID string) string {
	return w.opts.LockPrefix + ":" + userID
}

func (w *StatsSyncWorker) processWithLock(ctx context.Context, payload string) {
	var job service.StatsSyncJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil || job.UserID == "" {
		w.log.Error().Err(err).Str("payload", payload).Msg("dropping malformed sync job")
		return
	}
	log := w.log.With().Str("user_id", job.UserID).Logger()

	key := w.lockKey(job.UserID)
	token, ok, err := w.locker.Acquire(ctx, key, w.opts.LockTTL)
	if err != nil || !ok {
		if err != nil {
			log.Error().Err(err).Msg("failed to attempt sync lock")
		} else {
			log.Info().Msg("sync already running for user, re-queueing")
		}
		w.requeue(ctx, payload)
		return
	}
	defer func() {
		released, err := w.locker.Release(context.WithoutCancel(ctx), key, token)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("failed to release sync lock")
		case !released:
			log.Warn().Msg("sync lock expired before release")
		}
	}()

	if err := w.sync(ctx, job.UserID); err != nil {
		log.Error().Err(err).Msg("stats sync failed")
		return
	}
	log.Info().Msg("stats sync completed")
}

func (w *StatsSyncWorker) requeue(ctx context.Context, payload string) {
	if err := w.jobs.Requeue(ctx, payload); err != nil {
		w.log.Error().Err(err).Str("payload", payload).Msg("failed to re-queue sync job")
	}
}

func (w *StatsSyncWorker) sync(ctx context.Context, userID string) error {
	user, err := w.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.LeetCodeUsername == nil || *user.LeetCodeUsername == "" {
		return ErrNoLeetCodeUsername
	}

	solved, err := w.client.FetchSolvedStats(ctx, *user.LeetCodeUsername)
	if err != nil {
		return fmt.Errorf("fetch stats for %q: %w", *user.LeetCodeUsername, err)
	}

	counts := repository.LeetCodeCounts{
		Easy:   solved.EasySolved,
		Medium: solved.MediumSolved,
		Hard:   solved.HardSolved,
		Total:  solved.TotalSolved,
	}
	if err := w.statsRepo.UpdateLeetCodeStats(ctx, userID, counts, w.now().UTC()); err != nil {
		return fmt.Errorf("store stats: %w", err)
	}
	return nil
}
