package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	PublicBaseURL  string
	DatabaseURL    string
	UseMemoryStore bool
	StoreTimeout   time.Duration

	RedisAddr        string
	RedisPassword    string
	ImportSessionTTL time.Duration
	ImportMaxBytes   int64
	BulkChunkSize    int

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	JWTSecret                string
	ProjectionRepairInterval time.Duration
	CORSAllowedOrigins       []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		StoreTimeout:   getEnvAsDuration("STORE_TIMEOUT", 15*time.Second),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		ImportSessionTTL: getEnvAsDuration("IMPORT_SESSION_TTL", 30*time.Minute),
		ImportMaxBytes:   int64(getEnvAsInt("IMPORT_MAX_BYTES", 10<<20)),
		BulkChunkSize:    getEnvAsInt("BULK_CHUNK_SIZE", 450),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		MailHost: getEnv("MAIL_HOST", ""),
		MailPort: getEnvAsInt("MAIL_PORT", 587),
		MailUser: getEnv("MAIL_USER", ""),
		MailPass: getEnv("MAIL_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@wrc-leads.local"),

		JWTSecret:                getEnv("JWT_SECRET", ""),
		ProjectionRepairInterval: getEnvAsDuration("PROJECTION_REPAIR_INTERVAL", 0),
		CORSAllowedOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if !c.UseMemoryStore && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required unless USE_MEMORY_STORE=true"))
	}
	if c.BulkChunkSize <= 0 || c.BulkChunkSize > 500 {
		errs = append(errs, errors.New("BULK_CHUNK_SIZE must be between 1 and 500"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
