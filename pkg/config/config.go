package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Sync policies for the local user record
const (
	SyncLazy   = "lazy"
	SyncAlways = "always"
)

// Config is the full process configuration
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Auth     AuthConfig
	Notifx   NotifxConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port            string
	CORSOrigins     string
	BodyLimit       int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the postgres:// form golang-migrate expects
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Address returns host:port
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IdentityConfig points at the identity provider's backend API
type IdentityConfig struct {
	BaseURL        string
	SecretKey      string
	PublishableKey string
	Timeout        time.Duration
	CacheTTL       time.Duration
}

// AuthConfig drives token verification and the guards
type AuthConfig struct {
	JWTPublicKeyPEM   string
	JWTSecret         string
	Issuer            string
	AuthorizedParties []string
	SyncPolicy        string
	ReauthMaxAge      time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// IsDevelopment reports whether the process runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := EnvProduction
	if strings.EqualFold(getEnv("APP_ENV", ""), EnvDevelopment) {
		env = EnvDevelopment
	}

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1024*1024),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("STORE_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "gatekeeper"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Identity: IdentityConfig{
			BaseURL:        getEnv("IDENTITY_API_URL", "https://api.clerk.com/v1"),
			SecretKey:      getEnv("IDENTITY_SECRET_KEY", ""),
			PublishableKey: getEnv("IDENTITY_PUBLISHABLE_KEY", ""),
			Timeout:        getEnvDuration("IDENTITY_TIMEOUT", 5*time.Second),
			CacheTTL:       getEnvDuration("IDENTITY_CACHE_TTL", 0),
		},
		Auth: AuthConfig{
			JWTPublicKeyPEM:   getEnv("AUTH_JWT_PUBLIC_KEY", ""),
			JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
			Issuer:            getEnv("AUTH_ISSUER", ""),
			AuthorizedParties: getEnvStringSlice("AUTH_AUTHORIZED_PARTIES", nil),
			SyncPolicy:        strings.ToLower(getEnv("AUTH_SYNC_POLICY", SyncLazy)),
			ReauthMaxAge:      getEnvDuration("AUTH_REAUTH_MAX_AGE", 10*time.Minute),
		},
		Notifx: loadNotifxConfig(env),
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// Validate checks settings that would make the service unusable.
// It returns warnings for settings that are suspicious but workable.
func (c *Config) Validate() (warnings []string, err error) {
	var problems []string

	switch {
	case c.Identity.SecretKey == "":
		problems = append(problems, "IDENTITY_SECRET_KEY is required")
	case strings.HasPrefix(c.Identity.SecretKey, "pk_"):
		problems = append(problems, "IDENTITY_SECRET_KEY looks like a publishable key (pk_)")
	}

	if strings.HasPrefix(c.Identity.PublishableKey, "sk_") {
		warnings = append(warnings, "IDENTITY_PUBLISHABLE_KEY looks like a secret key (sk_)")
	}

	if c.Auth.JWTPublicKeyPEM == "" && c.Auth.JWTSecret == "" {
		problems = append(problems, "one of AUTH_JWT_PUBLIC_KEY or AUTH_JWT_SECRET is required")
	}

	if c.Auth.SyncPolicy != SyncLazy && c.Auth.SyncPolicy != SyncAlways {
		problems = append(problems, fmt.Sprintf("AUTH_SYNC_POLICY must be %q or %q, got %q", SyncLazy, SyncAlways, c.Auth.SyncPolicy))
	}

	if c.Auth.ReauthMaxAge <= 0 {
		problems = append(problems, "AUTH_REAUTH_MAX_AGE must be positive")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		problems = append(problems, fmt.Sprintf("STORE_DRIVER must be postgres or memory, got %q", c.Database.Driver))
	}

	if len(problems) > 0 {
		return warnings, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return warnings, nil
}

// ---------------------------------------------------------------------------
// env helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
