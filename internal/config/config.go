package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Adboard API server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Stats      StatsConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Upload     UploadConfig
	OAuth      OAuthConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the optional analytics backend for
// statistics aggregation.
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

// StatsConfig selects the statistics backend and cache behavior.
type StatsConfig struct {
	// Backend is "postgres" or "clickhouse".
	Backend  string
	CacheTTL time.Duration
}

type AuthConfig struct {
	// Secret signs HS256 bearer tokens.
	Secret string
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
	// BcryptCost is the password hashing cost factor.
	BcryptCost int
	// SkipPaths bypass token validation (register, login, health).
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled     bool
	RPS         float64
	Burst       int
	PublicRPS   float64
	PublicBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// UploadConfig configures creative asset uploads.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// OAuthConfig configures platform authorization URL generation.
type OAuthConfig struct {
	// BaseURL is this server's externally visible base URL, used to
	// build the OAuth redirect URI.
	BaseURL string
	// AppID identifies this application to the ad platforms.
	AppID string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADBOARD_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADBOARD_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADBOARD_DB_HOST", "localhost"),
			Port:     getIntEnv("ADBOARD_DB_PORT", 5432),
			User:     getEnv("ADBOARD_DB_USER", "adboard"),
			Password: getEnv("ADBOARD_DB_PASSWORD", "adboard_secret"),
			DBName:   getEnv("ADBOARD_DB_NAME", "adboard"),
			SSLMode:  getEnv("ADBOARD_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADBOARD_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADBOARD_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("ADBOARD_REDIS_ENABLED", true),
			Addr:     getEnv("ADBOARD_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADBOARD_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADBOARD_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("ADBOARD_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("ADBOARD_CLICKHOUSE_DB", "adboard"),
			User:     getEnv("ADBOARD_CLICKHOUSE_USER", "default"),
			Password: getEnv("ADBOARD_CLICKHOUSE_PASSWORD", ""),
		},
		Stats: StatsConfig{
			Backend:  getEnv("ADBOARD_STATS_BACKEND", "postgres"),
			CacheTTL: getDurationEnv("ADBOARD_STATS_CACHE_TTL", 60*time.Second),
		},
		Auth: AuthConfig{
			Secret:     getEnv("ADBOARD_JWT_SECRET", ""),
			TokenTTL:   getDurationEnv("ADBOARD_JWT_TTL", 7*24*time.Hour),
			BcryptCost: getIntEnv("ADBOARD_BCRYPT_COST", 10),
			SkipPaths: getSliceEnv("ADBOARD_AUTH_SKIP_PATHS", []string{
				"/api/user/register",
				"/api/user/login",
				"/api/user/check-email",
				"/health",
				"/metrics",
				"/uploads/",
			}),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("ADBOARD_RATE_LIMIT_ENABLED", true),
			RPS:         getFloatEnv("ADBOARD_RATE_LIMIT_RPS", 200),
			Burst:       getIntEnv("ADBOARD_RATE_LIMIT_BURST", 50),
			PublicRPS:   getFloatEnv("ADBOARD_RATE_LIMIT_PUBLIC_RPS", 20),
			PublicBurst: getIntEnv("ADBOARD_RATE_LIMIT_PUBLIC_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("ADBOARD_LOG_LEVEL", "info"),
			Format: getEnv("ADBOARD_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADBOARD_METRICS_ENABLED", true),
			Path:    getEnv("ADBOARD_METRICS_PATH", "/metrics"),
		},
		Upload: UploadConfig{
			Dir:      getEnv("ADBOARD_UPLOAD_DIR", "static/uploads"),
			MaxBytes: getInt64Env("ADBOARD_UPLOAD_MAX_BYTES", 50<<20),
		},
		OAuth: OAuthConfig{
			BaseURL: getEnv("ADBOARD_BASE_URL", "http://localhost:8080"),
			AppID:   getEnv("ADBOARD_OAUTH_APP_ID", "adboard"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("ADBOARD_JWT_SECRET is required")
	}
	switch c.Stats.Backend {
	case "postgres", "clickhouse":
	default:
		return fmt.Errorf("ADBOARD_STATS_BACKEND must be postgres or clickhouse, got %q", c.Stats.Backend)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getInt64Env(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
