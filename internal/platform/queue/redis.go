package queue

import (
	"context"
	"fmt"

	"codequest/internal/platform/config"
	"codequest/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis(ctx context.Context) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	logger.Info().Str("addr", config.AppConfig.RedisAddr).Msg("connected to Redis")
	return nil
}

func CloseRedis() {
	if RDB != nil {
		if err := RDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing Redis")
			return
		}
		logger.Info().Msg("Redis connection closed")
	}
}
