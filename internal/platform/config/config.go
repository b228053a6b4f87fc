package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	AppEnv   string
	LogLevel string

	JWTKey []byte
	JWTExp time.Duration

	AuthCallbackBaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StatsSyncQueueName      string
	StatsSyncLockPrefix     string
	StatsSyncLockTTLSeconds int
	LeetCodeAPIBaseURL      string

	LeaderboardCacheTTLSeconds int
	BattlePollIntervalSeconds  int

	RateLimitSubmitPerMinute int
	RateLimitAuthPerMinute   int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = FromEnv()
}

// FromEnv builds a Config from the process environment without touching .env files.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:             getEnv("API_PORT", "8080"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		JWTKey:              []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:              time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		AuthCallbackBaseURL: getEnv("AUTH_CALLBACK_BASE_URL", "http://localhost:3000"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "user"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "codequest"),
		DBSslMode:           getEnv("DB_SSLMODE", "disable"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),

		StatsSyncQueueName:      getEnv("STATS_SYNC_QUEUE_NAME", "stats_sync_jobs"),
		StatsSyncLockPrefix:     getEnv("STATS_SYNC_LOCK_PREFIX", "stats_sync_lock"),
		StatsSyncLockTTLSeconds: getEnvAsInt("STATS_SYNC_LOCK_TTL_SECONDS", 120),
		LeetCodeAPIBaseURL:      getEnv("LEETCODE_API_BASE_URL", "https://leetcode-stats-api.herokuapp.com"),

		LeaderboardCacheTTLSeconds: getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30),
		BattlePollIntervalSeconds:  getEnvAsInt("BATTLE_POLL_INTERVAL_SECONDS", 3),

		RateLimitSubmitPerMinute: getEnvAsInt("RATE_LIMIT_SUBMIT_PER_MINUTE", 30),
		RateLimitAuthPerMinute:   getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 20),
	}

	if url := getEnv("DATABASE_URL", ""); url != "" {
		cfg.DBConnStr = url
	} else {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}
	return cfg
}

// Validate reports the first setting that would keep the server from running correctly.
func (c *Config) Validate() error {
	if c.APIPort == "" {
		return fmt.Errorf("API_PORT cannot be empty")
	}
	if len(c.JWTKey) == 0 {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.JWTExp <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %v", c.JWTExp)
	}
	if c.DBConnStr == "" {
		return fmt.Errorf("database connection string cannot be empty")
	}
	if c.StatsSyncQueueName == "" {
		return fmt.Errorf("STATS_SYNC_QUEUE_NAME cannot be empty")
	}
	if c.StatsSyncLockTTLSeconds <= 0 {
		return fmt.Errorf("STATS_SYNC_LOCK_TTL_SECONDS must be positive, got %d", c.StatsSyncLockTTLSeconds)
	}
	if c.LeaderboardCacheTTLSeconds <= 0 {
		return fmt.Errorf("LEADERBOARD_CACHE_TTL_SECONDS must be positive, got %d", c.LeaderboardCacheTTLSeconds)
	}
	if c.BattlePollIntervalSeconds <= 0 {
		return fmt.Errorf("BATTLE_POLL_INTERVAL_SECONDS must be positive, got %d", c.BattlePollIntervalSeconds)
	}
	if c.RateLimitSubmitPerMinute <= 0 || c.RateLimitAuthPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
