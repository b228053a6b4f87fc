package config_test

import (
	"testing"
	"time"

	"codequest/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config.Config {
	return config.Config{
		APIPort:                    "8080",
		LogLevel:                   "info",
		JWTKey:                     []byte("secret"),
		JWTExp:                     time.Hour,
		DBConnStr:                  "postgres://localhost/codequest",
		StatsSyncQueueName:         "stats_sync_jobs",
		StatsSyncLockTTLSeconds:    60,
		LeaderboardCacheTTLSeconds: 30,
		BattlePollIntervalSeconds:  3,
		RateLimitSubmitPerMinute:   30,
		RateLimitAuthPerMinute:     20,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantMsg string
	}{
		{"empty port", func(c *config.Config) { c.APIPort = "" }, "API_PORT cannot be empty"},
		{"empty jwt key", func(c *config.Config) { c.JWTKey = nil }, "JWT_SECRET"},
		{"zero jwt expiry", func(c *config.Config) { c.JWTExp = 0 }, "JWT_EXPIRATION_HOURS"},
		{"empty db", func(c *config.Config) { c.DBConnStr = "" }, "database connection string"},
		{"zero lock ttl", func(c *config.Config) { c.StatsSyncLockTTLSeconds = 0 }, "STATS_SYNC_LOCK_TTL_SECONDS"},
		{"negative cache ttl", func(c *config.Config) { c.LeaderboardCacheTTLSeconds = -1 }, "LEADERBOARD_CACHE_TTL_SECONDS"},
		{"zero poll interval", func(c *config.Config) { c.BattlePollIntervalSeconds = 0 }, "BATTLE_POLL_INTERVAL_SECONDS"},
		{"zero rate limit", func(c *config.Config) { c.RateLimitAuthPerMinute = 0 }, "rate limits"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")

	cfg := config.FromEnv()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 72*time.Hour, cfg.JWTExp)
	assert.Contains(t, cfg.DBConnStr, "dbname=")
	assert.Equal(t, 3, cfg.BattlePollIntervalSeconds)
}

func TestFromEnv_DatabaseURLOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/cq")

	cfg := config.FromEnv()

	assert.Equal(t, "postgres://u:p@db:5432/cq", cfg.DBConnStr)
}
