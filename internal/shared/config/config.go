package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"jobportal-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DatabaseURL     string
	CORSAllowOrigin []string
	AppBaseURL      string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	UploadsBucket   string
	UploadsPrefix   string

	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	AdminEmails        []string

	NotifySender      string
	NotifyFrom        string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	NotifyQueueURL    string

	RedisURL          string
	JobExpirySchedule string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	logLevel := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	telemetry.SetLevel(logLevel)

	if env == "production" {
		for _, key := range []string{"DATABASE_URL", "JWT_SECRET"} {
			if os.Getenv(key) == "" {
				telemetry.Warn("config.missing", map[string]any{"key": key, "env": env})
			}
		}
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		LogLevel:           logLevel,
		DatabaseURL:        dbURL,
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		AppBaseURL:         strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		UploadsBucket:      getEnv("UPLOADS_S3_BUCKET", ""),
		UploadsPrefix:      getEnv("UPLOADS_S3_PREFIX", "uploads/"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvDuration("JWT_TTL", 24*time.Hour),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		AdminEmails:        lowerAll(splitAndTrim(getEnv("ADMIN_EMAILS", ""))),
		NotifySender:       normalizeSender(getEnv("NOTIFY_SENDER", "log")),
		NotifyFrom:         getEnv("NOTIFY_FROM", "no-reply@jobportal.local"),
		NotificationEmail:  getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		NotifyQueueURL:     getEnv("NOTIFY_SQS_QUEUE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		JobExpirySchedule:  getEnv("JOB_EXPIRY_SCHEDULE", "@every 1h"),
	}
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "error": err})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "error": err})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i := range values {
		values[i] = strings.ToLower(values[i])
	}
	return values
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "smtp":
		return "smtp"
	case "queue", "sqs":
		return "queue"
	default:
		return "log"
	}
}
