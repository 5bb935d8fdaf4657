package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the hosted StudyBuddy user API.
const DefaultAPIURL = "https://teste-render-api-studybuddy.onrender.com/api/users"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port               string
	APIURL             string
	APITimeout         time.Duration
	LogLevel           slog.Level
	SessionBackend     string // memory | redis
	SessionTTL         time.Duration
	RedisAddr          string
	RedisPassword      string
	DiagnosticsBackend string // log | postgres | mongo
	PostgresDSN        string
	MongoURI           string
	MongoDB            string
	AllowedOrigins     []string
}

// Load reads the first .env file found, then the environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	for _, file := range []string{".env", "../.env"} {
		if err := godotenv.Load(file); err == nil {
			break
		}
	}

	return &Config{
		Port:               getenv("PORT", "8080"),
		APIURL:             getenv("API_URL", DefaultAPIURL),
		APITimeout:         getduration("API_TIMEOUT", 30*time.Second),
		LogLevel:           getlevel("LOG_LEVEL", slog.LevelInfo),
		SessionBackend:     getenv("SESSION_BACKEND", "memory"),
		SessionTTL:         getduration("SESSION_TTL", 30*time.Minute),
		RedisAddr:          getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		DiagnosticsBackend: getenv("DIAGNOSTICS_BACKEND", "log"),
		PostgresDSN:        getenv("POSTGRES_DSN", ""),
		MongoURI:           getenv("MONGO_URI", ""),
		MongoDB:            getenv("MONGO_DB", "studybuddy"),
		AllowedOrigins:     splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getlevel(key string, fallback slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return fallback
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
