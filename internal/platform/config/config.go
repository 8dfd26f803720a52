// Package config builds runtime configuration from environment variables so
// main stays lean. Every variable carries an ANCHORAGE_ prefix and a
// development default.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "anchorage/pkg/platform/strings"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Audit    AuditConfig
	Admin    AdminConfig
}

// LogConfig selects the process logger output.
type LogConfig struct {
	// Format is "text" or "json".
	Format string
	// Level is one of debug, info, warn, error.
	Level string
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the trust-settings backend.
type StoreConfig struct {
	// Backend is one of memory, file, postgres, redis.
	Backend string
	// FilePath locates the settings snapshot for the file backend.
	FilePath string
}

// PostgresConfig captures the settings and audit database connection.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig captures the Redis connection and pool tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit stream settings. An empty broker list
// disables Kafka forwarding.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	ClientID   string
}

// AuditConfig tunes the audit pipeline.
type AuditConfig struct {
	// BufferSize bounds the channel between the publisher and the worker.
	BufferSize int
}

// AdminConfig selects how the admin API authenticates operators.
type AdminConfig struct {
	// AuthMode is "jwt" for bearer tokens or "token" for the static
	// X-Admin-Token header.
	AuthMode      string
	Token         string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("ANCHORAGE_ADDR", ":8080"),
			ShutdownTimeout: envDuration("ANCHORAGE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Format: envString("ANCHORAGE_LOG_FORMAT", "text"),
			Level:  envString("ANCHORAGE_LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:  envString("ANCHORAGE_STORE_BACKEND", "memory"),
			FilePath: envString("ANCHORAGE_SETTINGS_FILE", ""),
		},
		Postgres: PostgresConfig{
			DSN:             envString("ANCHORAGE_POSTGRES_DSN", ""),
			MaxOpenConns:    envInt("ANCHORAGE_POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("ANCHORAGE_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("ANCHORAGE_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          envString("ANCHORAGE_REDIS_URL", ""),
			PoolSize:     envInt("ANCHORAGE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ANCHORAGE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("ANCHORAGE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ANCHORAGE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ANCHORAGE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("ANCHORAGE_KAFKA_BROKERS"),
			AuditTopic: envString("ANCHORAGE_KAFKA_AUDIT_TOPIC", "anchorage.audit"),
			ClientID:   envString("ANCHORAGE_KAFKA_CLIENT_ID", "anchorage"),
		},
		Audit: AuditConfig{
			BufferSize: envInt("ANCHORAGE_AUDIT_BUFFER", 256),
		},
		Admin: AdminConfig{
			AuthMode: envString("ANCHORAGE_ADMIN_AUTH", "token"),
			// Use a default for development - should be overridden in production
			Token:         envString("ANCHORAGE_ADMIN_TOKEN", "dev-admin-token-change-in-production"),
			JWTSigningKey: envString("ANCHORAGE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envString("ANCHORAGE_JWT_ISSUER", "anchorage"),
			JWTAudience:   envString("ANCHORAGE_JWT_AUDIENCE", "anchorage-admin"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// envList splits a comma separated variable, dropping empty elements and
// duplicates.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	out := platformstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
