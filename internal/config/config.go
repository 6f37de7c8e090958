// Package config reads process configuration from the environment, with
// an optional .env file loaded first.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from the given files (default ".env").
// Existing process variables are never overridden; missing files are ignored.
func LoadEnvFile(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// Config holds all runtime settings.
type Config struct {
	HTTPAddr string

	PostgresDSN   string
	ClickHouseDSN string
	RedisAddr     string
	UseMemory     bool

	YouTubeAPIKey      string
	YouTubeRegion      string
	TwitchClientID     string
	TwitchClientSecret string
	ContinuousMode     bool
	IngestInterval     time.Duration
	IngestLimit        int

	GeminiAPIKey string
	GeminiModel  string

	ThumbnailBucket        string
	ThumbnailEndpoint      string
	ThumbnailRegion        string
	ThumbnailAccessKey     string
	ThumbnailSecretKey     string
	ThumbnailPublicBaseURL string

	AuthJWTSecret string

	FXQuoteURL string
	FXCacheTTL time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr: String("HTTP_ADDR", ":8080"),

		PostgresDSN:   String("POSTGRES_DSN", ""),
		ClickHouseDSN: String("CLICKHOUSE_DSN", ""),
		RedisAddr:     String("REDIS_ADDR", ""),
		UseMemory:     Bool("USE_MEMORY", false),

		YouTubeAPIKey:      String("YOUTUBE_API_KEY", ""),
		YouTubeRegion:      strings.ToUpper(String("YOUTUBE_REGION", "US")),
		TwitchClientID:     String("TWITCH_CLIENT_ID", ""),
		TwitchClientSecret: String("TWITCH_CLIENT_SECRET", ""),
		ContinuousMode:     Bool("CONTINUOUS_MODE", false),
		IngestInterval:     Duration("INGEST_INTERVAL", time.Hour),
		IngestLimit:        Int("INGEST_LIMIT", 50),

		GeminiAPIKey: firstNonEmpty(String("GEMINI_API_KEY", ""), String("API_KEY", "")),
		GeminiModel:  String("GEMINI_MODEL", "gemini-2.0-flash-exp"),

		ThumbnailBucket:        String("THUMBNAIL_BUCKET", ""),
		ThumbnailEndpoint:      String("THUMBNAIL_ENDPOINT", ""),
		ThumbnailRegion:        String("THUMBNAIL_REGION", "auto"),
		ThumbnailAccessKey:     String("THUMBNAIL_ACCESS_KEY", ""),
		ThumbnailSecretKey:     String("THUMBNAIL_SECRET_KEY", ""),
		ThumbnailPublicBaseURL: String("THUMBNAIL_PUBLIC_BASE_URL", ""),

		AuthJWTSecret: String("AUTH_JWT_SECRET", ""),

		FXQuoteURL: String("FX_QUOTE_URL", ""),
		FXCacheTTL: Duration("FX_CACHE_TTL", 15*time.Minute),
	}
}

// Validate checks that storage settings are coherent.
func (c Config) Validate() error {
	if !c.UseMemory && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required (set USE_MEMORY=true for in-memory storage)")
	}
	if c.IngestInterval <= 0 {
		return errors.New("INGEST_INTERVAL must be positive")
	}
	return nil
}

// ThumbnailStorageEnabled reports whether edited thumbnails are uploaded.
func (c Config) ThumbnailStorageEnabled() bool {
	return c.ThumbnailBucket != "" && c.ThumbnailAccessKey != "" && c.ThumbnailSecretKey != ""
}

// String returns the variable or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Bool parses the variable with strconv.ParseBool, returning def on failure.
func Bool(key string, def bool) bool {
	v, err := strconv.ParseBool(String(key, ""))
	if err != nil {
		return def
	}
	return v
}

// Int parses the variable as an integer, returning def on failure.
func Int(key string, def int) int {
	v, err := strconv.Atoi(String(key, ""))
	if err != nil {
		return def
	}
	return v
}

// Duration parses the variable with time.ParseDuration. A bare integer is
// read as seconds.
func Duration(key string, def time.Duration) time.Duration {
	raw := String(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
