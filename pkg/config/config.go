package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the scorer
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
//
// 전략 파라미터(지표 임계값, 티어 테이블 등)는 여기 두지 않는다.
// 그것들은 internal/strategyconfig 의 YAML 파일에서 온다.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Engine (batch scoring)
	Engine EngineConfig

	// Store (price data access resilience)
	Store StoreConfig

	// Model (optional probability overlay)
	Model ModelConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Connect retry
	ConnectRetries int
	ConnectBackoff time.Duration
}

// EngineConfig holds batch execution settings
type EngineConfig struct {
	StrategyPath string // strategy YAML file
	Workers      int    // 0 = use strategy file value
	DryRun       bool   // score without persisting
}

// StoreConfig controls how price reads are retried and throttled
type StoreConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	RateLimit      float64 // reads per second, 0 = unlimited
	RateBurst      int
	BreakerTimeout time.Duration
	BreakerTrips   uint32 // consecutive failures before the breaker opens
}

// ModelConfig configures the external probability model
// URL 이 비어있으면 오버레이 미사용 (확률 0.0)
type ModelConfig struct {
	URL     string
	Timeout time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			ConnectRetries:  getEnvAsInt("DB_CONNECT_RETRIES", 3),
			ConnectBackoff:  getEnvAsDuration("DB_CONNECT_BACKOFF", "1s"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Engine: EngineConfig{
			StrategyPath: getEnv("STRATEGY_CONFIG", "config/strategy.yaml"),
			Workers:      getEnvAsInt("ENGINE_WORKERS", 0),
			DryRun:       getEnvAsBool("ENGINE_DRY_RUN", false),
		},

		Store: StoreConfig{
			MaxRetries:     getEnvAsInt("STORE_MAX_RETRIES", 3),
			RetryDelay:     getEnvAsDuration("STORE_RETRY_DELAY", "500ms"),
			MaxRetryDelay:  getEnvAsDuration("STORE_MAX_RETRY_DELAY", "5s"),
			RateLimit:      getEnvAsFloat("STORE_RATE_LIMIT", 0),
			RateBurst:      getEnvAsInt("STORE_RATE_BURST", 10),
			BreakerTimeout: getEnvAsDuration("STORE_BREAKER_TIMEOUT", "30s"),
			BreakerTrips:   uint32(getEnvAsInt("STORE_BREAKER_TRIPS", 5)),
		},

		Model: ModelConfig{
			URL:     getEnv("MODEL_URL", ""),
			Timeout: getEnvAsDuration("MODEL_TIMEOUT", "5s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.Workers < 0 {
		return fmt.Errorf("ENGINE_WORKERS must be >= 0")
	}

	if c.Store.MaxRetries < 0 {
		return fmt.Errorf("STORE_MAX_RETRIES must be >= 0")
	}

	if c.Store.RateLimit < 0 {
		return fmt.Errorf("STORE_RATE_LIMIT must be >= 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
