package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codequest/internal/api"
	"codequest/internal/app/service"
	"codequest/internal/app/worker"
	"codequest/internal/common/security"
	"codequest/internal/domain/repository"
	"codequest/internal/leetcode"
	"codequest/internal/platform/cache"
	"codequest/internal/platform/config"
	"codequest/internal/platform/database"
	"codequest/internal/platform/logger"
	"codequest/internal/platform/queue"
	"codequest/internal/realtime"

	"github.com/google/uuid"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// 2. Initialize JWT
	security.InitJWT()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Database
	if err := database.Connect(ctx); err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}
	defer database.Close()
	if err := database.Migrate(ctx, database.DB); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	// 4. Initialize Redis
	if err := queue.ConnectRedis(ctx); err != nil {
		logger.Fatal().Err(err).Msg("redis unavailable")
	}
	defer queue.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	battleRepo := repository.NewPgBattleRepository(database.DB)
	trackRepo := repository.NewPgTrackRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)
	statsRepo := repository.NewPgStatsRepository(database.DB)
	teamRepo := repository.NewPgTeamRepository(database.DB)
	followRepo := repository.NewPgFollowRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)

	broker := realtime.NewRedisBroker(queue.RDB, "codequest:events")
	syncQueue := queue.NewRedisJobQueue(queue.RDB, cfg.StatsSyncQueueName)
	leaderboardCache := cache.NewRedisCache(queue.RDB, "codequest:cache")

	// 6. Initialize Services
	notificationService := service.NewNotificationService(notificationRepo, broker)
	services := api.Services{
		Auth:         service.NewAuthService(userRepo),
		Battle:       service.NewBattleService(battleRepo, notificationService, broker, cfg.BattlePollIntervalSeconds),
		Track:        service.NewTrackService(trackRepo, progressRepo, statsRepo),
		Team:         service.NewTeamService(teamRepo, userRepo, notificationService),
		User:         service.NewUserService(userRepo, statsRepo, followRepo, syncQueue),
		Follow:       service.NewFollowService(followRepo, userRepo, notificationService),
		Notification: notificationService,
		Leaderboard: service.NewLeaderboardService(statsRepo, followRepo, leaderboardCache,
			time.Duration(cfg.LeaderboardCacheTTLSeconds)*time.Second),
		Broker: broker,
	}

	// 7. Stats sync worker (as a goroutine)
	syncWorker := worker.NewStatsSyncWorker(
		syncQueue,
		queue.NewRedisLocker(queue.RDB, uuid.NewString),
		userRepo,
		statsRepo,
		leetcode.New(cfg.LeetCodeAPIBaseURL),
		worker.Options{
			LockPrefix: cfg.StatsSyncLockPrefix,
			LockTTL:    time.Duration(cfg.StatsSyncLockTTLSeconds) * time.Second,
		},
	)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		syncWorker.Start(ctx)
	}()

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(services, api.RateLimits{
		AuthPerMinute:   cfg.RateLimitAuthPerMinute,
		SubmitPerMinute: cfg.RateLimitSubmitPerMinute,
	})

	// No WriteTimeout: it would cut websocket streams. REST routes carry their own timeout.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("could not listen")
		}
	}()

	// 9. Graceful Shutdown
	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	<-workerDone

	logger.Info().Msg("server and worker stopped")
}
