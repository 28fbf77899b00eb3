package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/AnshRaj112/company-messenger/internal/database"
	"github.com/AnshRaj112/company-messenger/pkg/utils"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	Host           string   // Raw HOST env (e.g. https://chat.example.com)
	AllowedHost    string   // Hostname only for strict host check (production only)
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)

	StorageDriver  string // memory, file, redis, mongo, postgres, sqlite
	StoragePath    string
	RedisURI       string
	RedisKeyPrefix string
	MongoURI       string
	PostgresURI    string
	SQLitePath     string

	SessionDriver  string // memory or redis
	PasswordScheme string // plain or argon2id

	AutoSaveInterval time.Duration
	PresenceInterval time.Duration
	DeliveredDelay   time.Duration
	ReadDelay        time.Duration

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		Host:           host,
		AllowedHost:    allowedHost,
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", database.DriverFile)),
		StoragePath:    getEnv("STORAGE_PATH", "data"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "messenger:"),
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/messenger")),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/messenger?sslmode=disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "messenger.db"),

		SessionDriver:  strings.ToLower(getEnv("SESSION_DRIVER", "memory")),
		PasswordScheme: strings.ToLower(getEnv("PASSWORD_SCHEME", utils.SchemePlain)),

		AutoSaveInterval: getDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		PresenceInterval: getDuration("PRESENCE_INTERVAL", 30*time.Second),
		DeliveredDelay:   getDuration("DELIVERED_DELAY", 1*time.Second),
		ReadDelay:        getDuration("READ_DELAY", 3*time.Second),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// StorageOptions selects the durable key-value backend.
func (c *Config) StorageOptions() database.Options {
	return database.Options{
		Driver:      c.StorageDriver,
		FilePath:    c.StoragePath,
		RedisURI:    c.RedisURI,
		RedisPrefix: c.RedisKeyPrefix,
		MongoURI:    c.MongoURI,
		PostgresURI: c.PostgresURI,
		SQLitePath:  c.SQLitePath,
	}
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.StorageDriver == database.DriverRedis || c.SessionDriver == "redis"
}

// CloudinaryConfigured reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// bareHost strips scheme, path and port from a HOST value.
func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️  WARNING: invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
