package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvOrDefault returns fallback when key is unset or blank.
func GetEnvOrDefault(key, fallback string) string {
	if value := GetEnv(key); value != "" {
		return value
	}
	return fallback
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := GetEnv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		Logger.Warn("Invalid duration in environment, using default",
			zap.String("key", key), zap.String("value", raw), zap.Duration("default", fallback))
		return fallback
	}
	return d
}

func GetEnvInt(key string, fallback int) int {
	raw := GetEnv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		Logger.Warn("Invalid integer in environment, using default",
			zap.String("key", key), zap.String("value", raw), zap.Int("default", fallback))
		return fallback
	}
	return n
}

func GetEnvBool(key string, fallback bool) bool {
	raw := GetEnv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// Settings is the resolved runtime configuration shared by the server,
// the worker and the admin CLI.
type Settings struct {
	Port            string
	BaseURL         string
	BaseFrontendURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBTimezone string

	RedisAddress  string
	RedisPassword string

	TokenSymmetricKey    string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	CookieDomain         string
	CookieSecure         bool

	UploadDir      string
	StagingDir     string
	ExportDir      string
	BleveIndexPath string

	RemoteCallTimeout time.Duration
	SessionTTL        time.Duration
	ContactRateLimit  int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

func LoadSettings() Settings {
	s := Settings{
		Port:            GetEnvOrDefault("PORT", "8080"),
		BaseURL:         GetEnvOrDefault("BASE_URL", "http://localhost:8080"),
		BaseFrontendURL: GetEnvOrDefault("BASE_FRONTEND_URL", "http://localhost:5173"),

		DBHost:     GetEnvOrDefault("DB_HOST", "localhost"),
		DBPort:     GetEnvOrDefault("DB_PORT", "5432"),
		DBUser:     GetEnv("POSTGRES_USER"),
		DBPassword: GetEnv("POSTGRES_PASSWORD"),
		DBName:     GetEnv("POSTGRES_DB"),
		DBTimezone: GetEnvOrDefault("DB_TIMEZONE", "Africa/Nairobi"),

		RedisAddress:  GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD"),

		TokenSymmetricKey:    GetEnv("TOKEN_SYMMETRIC_KEY"),
		AccessTokenDuration:  GetEnvDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
		RefreshTokenDuration: GetEnvDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
		CookieDomain:         GetEnv("COOKIE_DOMAIN"),
		CookieSecure:         GetEnvBool("COOKIE_SECURE", false),

		UploadDir:      GetEnvOrDefault("UPLOAD_DIR", "./uploads"),
		StagingDir:     GetEnvOrDefault("STAGING_DIR", "./staging"),
		ExportDir:      GetEnvOrDefault("EXPORT_DIR", "./public/files"),
		BleveIndexPath: GetEnvOrDefault("BLEVE_INDEX_PATH", "./bleve_data"),

		RemoteCallTimeout: GetEnvDuration("REMOTE_CALL_TIMEOUT", 15*time.Second),
		SessionTTL:        GetEnvDuration("SESSION_TTL", 24*time.Hour),
		ContactRateLimit:  GetEnvInt("CONTACT_RATE_LIMIT", 5),

		SMTPHost:     GetEnv("SMTP_HOST"),
		SMTPPort:     GetEnvInt("SMTP_PORT", 587),
		SMTPUser:     GetEnv("SMTP_USER"),
		SMTPPassword: GetEnv("SMTP_PASSWORD"),
		SMTPFrom:     GetEnv("SMTP_FROM"),
	}
	if s.SMTPFrom == "" {
		s.SMTPFrom = s.SMTPUser
	}
	return s
}
