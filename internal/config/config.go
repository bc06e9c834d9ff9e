package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SeedDevData bool

	RateLimit RateLimitConfig
	Engine    EngineConfig

	IntentClassifierURL     string
	IntentClassifierTimeout time.Duration
}

// RateLimitConfig holds per-user action ceilings. Windows are fixed:
// direct messages count against a daily window, public replies against
// an hourly one.
type RateLimitConfig struct {
	DMDailyMax     int
	ReplyHourlyMax int
}

// EngineConfig holds tunables for the automation pipeline.
type EngineConfig struct {
	IntentConfidenceFloor float64
	DispatchInterval      time.Duration
	DispatchBatchSize     int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "commentloop"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
		RedisDB:       getenvInt("REDIS_DB", 0),

		SeedDevData: getenvBool("SEED_DEV_DATA", false),

		RateLimit: RateLimitConfig{
			DMDailyMax:     getenvInt("RATE_LIMIT_DM_DAILY_MAX", 50),
			ReplyHourlyMax: getenvInt("RATE_LIMIT_REPLY_HOURLY_MAX", 30),
		},
		Engine: EngineConfig{
			IntentConfidenceFloor: getenvFloat("INTENT_CONFIDENCE_FLOOR", 0.8),
			DispatchInterval:      time.Duration(getenvInt("DISPATCH_INTERVAL_SECONDS", 5)) * time.Second,
			DispatchBatchSize:     getenvInt("DISPATCH_BATCH_SIZE", 25),
		},

		IntentClassifierURL:     strings.TrimSpace(getenv("INTENT_CLASSIFIER_URL", "")),
		IntentClassifierTimeout: time.Duration(getenvInt("INTENT_CLASSIFIER_TIMEOUT_SECONDS", 5)) * time.Second,
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
