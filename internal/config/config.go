package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	EnableDatabase bool
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DatabaseURL    string

	// Redis
	EnableRedis bool
	RedisURL    string
	BackupTTL   time.Duration

	// NATS
	EnableNATS  bool
	NATSURL     string
	NATSSubject string
	NATSStream  string

	// Server
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	// CORS
	CORSOrigins []string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int

	// Background jobs
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
	JobRetries  int

	// Builder
	ExportLang  string
	MaxSessions int

	// Features
	EnableMetrics bool
}

func New() *Config {
	c := &Config{
		// Database
		EnableDatabase: getEnvAsBool("ENABLE_DATABASE", false),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "builder"),
		DBPassword:     getEnv("DB_PASSWORD", "builderpassword"),
		DBName:         getEnv("DB_NAME", "sitebuilder"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),

		// Redis
		EnableRedis: getEnvAsBool("ENABLE_REDIS", false),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		BackupTTL:   getEnvAsDuration("BACKUP_TTL", 7*24*time.Hour),

		// NATS
		EnableNATS:  getEnvAsBool("ENABLE_NATS", false),
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("NATS_SUBJECT", "site_builder.pages"),
		NATSStream:  getEnv("NATS_STREAM", "SITE_BUILDER_PAGES"),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		// CORS
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		// Background jobs
		WorkerCount: getEnvAsInt("WORKER_COUNT", 2),
		QueueSize:   getEnvAsInt("QUEUE_SIZE", 32),
		JobTimeout:  getEnvAsDuration("JOB_TIMEOUT", 30*time.Second),
		JobRetries:  getEnvAsInt("JOB_RETRIES", 2),

		// Builder
		ExportLang:  getEnv("EXPORT_LANG", "es"),
		MaxSessions: getEnvAsInt("MAX_SESSIONS", 1000),

		// Features
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	// Build DSN
	c.DatabaseURL = getEnv("DATABASE_URL", fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	))

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

// getEnvAsDuration accepts Go duration strings ("90s", "24h") or a bare
// number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	var seconds int
	if _, err := fmt.Sscanf(valueStr, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
