package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers   []string
	KafkaGroupID   string
	LeadEventTopic string

	// Scoring
	ScoringRulesPath   string
	DefaultMinScore    int
	DefaultPhoneRegion string

	// Webhook delivery
	WebhookMaxAttempts int
	WebhookBackoffBase time.Duration
	WebhookTimeout     time.Duration

	// Projects
	ProjectCacheTTL time.Duration

	// Leads
	LeadRetention time.Duration

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "leadvalidator"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "leadvalidator123"),
		PostgresDB:       getEnv("POSTGRES_DB", "leadvalidator"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:   getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "leadvalidator-platform"),
		LeadEventTopic: getEnv("LEAD_EVENT_TOPIC", "lead-events"),

		ScoringRulesPath:   getEnv("SCORING_RULES_PATH", ""),
		DefaultMinScore:    getIntEnv("DEFAULT_MIN_SCORE", 70),
		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "US"),

		WebhookMaxAttempts: getIntEnv("WEBHOOK_MAX_ATTEMPTS", 3),
		WebhookBackoffBase: getDuration("WEBHOOK_BACKOFF_BASE", time.Second),
		WebhookTimeout:     getDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		ProjectCacheTTL: getDuration("PROJECT_CACHE_TTL", 5*time.Minute),

		LeadRetention: getDuration("LEAD_RETENTION", 0),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
