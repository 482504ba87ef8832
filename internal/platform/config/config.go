package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full process configuration, built from the environment so
// main stays lean.
type Config struct {
	Server    Server
	Redis     RedisConfig
	Postgres  PostgresConfig
	Screening Screening
	RateLimit RateLimit
	Log       Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	AdminToken      string
	ShutdownTimeout time.Duration
}

// RedisConfig configures the optional Redis answer accumulator. An empty URL
// keeps sessions in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional PostgreSQL rule catalog and
// diagnosis store. An empty DSN uses the YAML catalog and in-memory store.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Screening holds questionnaire engine settings.
type Screening struct {
	CatalogPath        string
	CatalogTTL         time.Duration
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration
	SelectionStrategy  string
}

// RateLimit bounds authenticated requests per user. Zero requests disables
// limiting.
type RateLimit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// Log selects the slog handler.
type Log struct {
	Format string
	Level  string
}

// SessionIdleTimeout is the default idle lifetime of a screening session.
const SessionIdleTimeout = 30 * time.Minute

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            envString("NEUROEASE_ADDR", ":8080"),
			JWTSigningKey:   jwtSigningKey,
			JWTIssuer:       os.Getenv("JWT_ISSUER"),
			JWTAudience:     os.Getenv("JWT_AUDIENCE"),
			AdminToken:      os.Getenv("ADMIN_API_TOKEN"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Screening: Screening{
			CatalogPath:        envString("SCREENING_CATALOG_PATH", "configs/rules.yaml"),
			CatalogTTL:         envDuration("SCREENING_CATALOG_TTL", 5*time.Minute),
			SessionIdleTimeout: envDuration("SCREENING_SESSION_IDLE_TIMEOUT", SessionIdleTimeout),
			SweepInterval:      envDuration("SCREENING_SWEEP_INTERVAL", time.Minute),
			SelectionStrategy:  envString("SCREENING_SELECTION_STRATEGY", "breadth"),
		},
		RateLimit: RateLimit{
			RequestsPerWindow: envInt("RATE_LIMIT_REQUESTS", 120),
			Window:            envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Log: Log{
			Format: envString("LOG_FORMAT", "json"),
			Level:  envString("LOG_LEVEL", "info"),
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
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("90s", "30m").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
