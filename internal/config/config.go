package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-driven setting. Sensitive values carry no
// in-code defaults; boot code decides what to do when they are missing.
type Config struct {
	Port      string
	DBPath    string
	SecretKey string
	TimeZone  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DispatchInterval       time.Duration
	CleanupTime            string
	ReminderTime           string
	NotificationExpiryDays int

	NoteMaxLength int
	TagMaxCount   int

	LogPath  string
	LogLevel string
}

// Load reads the configuration from environment variables. Callers load an
// optional .env file first.
func Load() Config {
	return Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "data/sileme.db"),
		SecretKey: os.Getenv("SECRET_KEY"),
		TimeZone:  getEnv("TZ", "UTC"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DispatchInterval:       getEnvDuration("DISPATCH_INTERVAL", time.Minute),
		CleanupTime:            getEnv("CLEANUP_TIME", "02:00"),
		ReminderTime:           getEnv("REMINDER_TIME", "09:00"),
		NotificationExpiryDays: getEnvInt("NOTIFICATION_EXPIRY_DAYS", 30),

		NoteMaxLength: getEnvInt("NOTE_MAX_LENGTH", 200),
		TagMaxCount:   getEnvInt("TAG_MAX_COUNT", 10),

		LogPath:  os.Getenv("LOG_PATH"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
