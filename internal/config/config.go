package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Database driver constants
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

// DefaultConfigPath is read when --config is not given; a missing file is not an error.
const DefaultConfigPath = "realmgate.toml"

type Config struct {
	// Server settings
	BindAddress   string
	IssuerBaseURL string // tokens are issued by {IssuerBaseURL}/realms/{realm}

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Token and session lifetimes
	AccessTokenLifetime  time.Duration
	IDTokenLifetime      time.Duration
	RefreshTokenLifetime time.Duration
	AuthCodeLifetime     time.Duration
	SessionLifetime      time.Duration

	// Logging
	LogLevel string // zap level: debug, info, warn, error

	// Prometheus metrics
	MetricsEnabled bool
	MetricsToken   string // optional Bearer token guarding /metrics

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	LoginRateLimit           int    // requests per minute per IP for POST authorize
	TokenRateLimit           int    // requests per minute per IP for POST token
	RateLimitCleanupInterval time.Duration

	// Redis (rate limit store)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration

	// Timeouts
	DBInitTimeout         time.Duration
	ServerShutdownTimeout time.Duration
}

// fileConfig mirrors the TOML file. Lifetimes are expressed in seconds.
type fileConfig struct {
	BindAddress              *string `toml:"bind_address"`
	IssuerBaseURL            *string `toml:"issuer_base_url"`
	DatabaseDriver           *string `toml:"database_driver"`
	DatabasePath             *string `toml:"database_path"`
	AccessTokenLifetimeSecs  *int64  `toml:"access_token_lifetime_secs"`
	IDTokenLifetimeSecs      *int64  `toml:"id_token_lifetime_secs"`
	RefreshTokenLifetimeSecs *int64  `toml:"refresh_token_lifetime_secs"`
	AuthCodeLifetimeSecs     *int64  `toml:"auth_code_lifetime_secs"`
	SessionLifetimeSecs      *int64  `toml:"session_lifetime_secs"`
	LogLevel                 *string `toml:"log_level"`
	MetricsEnabled           *bool   `toml:"metrics_enabled"`
	MetricsToken             *string `toml:"metrics_token"`
	RateLimitEnabled         *bool   `toml:"rate_limit_enabled"`
	RateLimitStore           *string `toml:"rate_limit_store"`
	LoginRateLimit           *int    `toml:"login_rate_limit"`
	TokenRateLimit           *int    `toml:"token_rate_limit"`
	RedisAddr                *string `toml:"redis_addr"`
	RedisPassword            *string `toml:"redis_password"`
	RedisDB                  *int    `toml:"redis_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BindAddress:   "127.0.0.1:8080",
		IssuerBaseURL: "http://localhost:8080",

		DatabaseDriver: DatabaseDriverSQLite,
		DatabaseDSN:    "realmgate.db",

		AccessTokenLifetime:  time.Hour,
		IDTokenLifetime:      time.Hour,
		RefreshTokenLifetime: 30 * 24 * time.Hour,
		AuthCodeLifetime:     5 * time.Minute,
		SessionLifetime:      24 * time.Hour,

		LogLevel: "info",

		MetricsEnabled: false,

		EnableRateLimit:          true,
		RateLimitStore:           RateLimitStoreMemory,
		LoginRateLimit:           10,
		TokenRateLimit:           30,
		RateLimitCleanupInterval: 5 * time.Minute,

		RedisAddr:        "localhost:6379",
		RedisConnTimeout: 5 * time.Second,

		DBInitTimeout:         30 * time.Second,
		ServerShutdownTimeout: 5 * time.Second,
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file and environment variables, in that order of precedence
// (later wins), then validates it.
func Load(path string) (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()
	cfg.IssuerBaseURL = strings.TrimRight(cfg.IssuerBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.BindAddress, fc.BindAddress)
	setString(&c.IssuerBaseURL, fc.IssuerBaseURL)
	setString(&c.DatabaseDriver, fc.DatabaseDriver)
	setString(&c.DatabaseDSN, fc.DatabasePath)
	setSeconds(&c.AccessTokenLifetime, fc.AccessTokenLifetimeSecs)
	setSeconds(&c.IDTokenLifetime, fc.IDTokenLifetimeSecs)
	setSeconds(&c.RefreshTokenLifetime, fc.RefreshTokenLifetimeSecs)
	setSeconds(&c.AuthCodeLifetime, fc.AuthCodeLifetimeSecs)
	setSeconds(&c.SessionLifetime, fc.SessionLifetimeSecs)
	setString(&c.LogLevel, fc.LogLevel)
	setValue(&c.MetricsEnabled, fc.MetricsEnabled)
	setString(&c.MetricsToken, fc.MetricsToken)
	setValue(&c.EnableRateLimit, fc.RateLimitEnabled)
	setString(&c.RateLimitStore, fc.RateLimitStore)
	setValue(&c.LoginRateLimit, fc.LoginRateLimit)
	setValue(&c.TokenRateLimit, fc.TokenRateLimit)
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.RedisPassword, fc.RedisPassword)
	setValue(&c.RedisDB, fc.RedisDB)
	return nil
}

func (c *Config) loadEnv() {
	c.BindAddress = getEnv("BIND_ADDRESS", c.BindAddress)
	c.IssuerBaseURL = getEnv("ISSUER_BASE_URL", c.IssuerBaseURL)

	c.DatabaseDriver = getEnv("DATABASE_DRIVER", c.DatabaseDriver)
	c.DatabaseDSN = getEnv("DATABASE_DSN", c.DatabaseDSN)

	c.AccessTokenLifetime = getEnvSeconds("ACCESS_TOKEN_LIFETIME_SECS", c.AccessTokenLifetime)
	c.IDTokenLifetime = getEnvSeconds("ID_TOKEN_LIFETIME_SECS", c.IDTokenLifetime)
	c.RefreshTokenLifetime = getEnvSeconds("REFRESH_TOKEN_LIFETIME_SECS", c.RefreshTokenLifetime)
	c.AuthCodeLifetime = getEnvSeconds("AUTH_CODE_LIFETIME_SECS", c.AuthCodeLifetime)
	c.SessionLifetime = getEnvSeconds("SESSION_LIFETIME_SECS", c.SessionLifetime)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.MetricsToken = getEnv("METRICS_TOKEN", c.MetricsToken)

	c.EnableRateLimit = getEnvBool("ENABLE_RATE_LIMIT", c.EnableRateLimit)
	c.RateLimitStore = getEnv("RATE_LIMIT_STORE", c.RateLimitStore)
	c.LoginRateLimit = getEnvInt("LOGIN_RATE_LIMIT", c.LoginRateLimit)
	c.TokenRateLimit = getEnvInt("TOKEN_RATE_LIMIT", c.TokenRateLimit)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.IssuerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid ISSUER_BASE_URL value: %q (must be an absolute http or https URL)", c.IssuerBaseURL)
	}

	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER value: %q (must be %q or %q)",
			c.DatabaseDriver, DatabaseDriverSQLite, DatabaseDriverPostgres)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}

	lifetimes := []struct {
		name  string
		value time.Duration
	}{
		{"access_token_lifetime_secs", c.AccessTokenLifetime},
		{"id_token_lifetime_secs", c.IDTokenLifetime},
		{"refresh_token_lifetime_secs", c.RefreshTokenLifetime},
		{"auth_code_lifetime_secs", c.AuthCodeLifetime},
		{"session_lifetime_secs", c.SessionLifetime},
	}
	for _, l := range lifetimes {
		if l.value < time.Second {
			return fmt.Errorf("%s must be at least 1 second", l.name)
		}
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf("invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis)
	}
	if c.EnableRateLimit && (c.LoginRateLimit <= 0 || c.TokenRateLimit <= 0) {
		return errors.New("rate limits must be positive when rate limiting is enabled")
	}

	return nil
}

// Issuer returns the issuer identifier of a realm.
func (c *Config) Issuer(realm string) string {
	return c.IssuerBaseURL + "/realms/" + realm
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.IssuerBaseURL, "https://")
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setSeconds(dst *time.Duration, src *int64) {
	if src != nil {
		*dst = time.Duration(*src) * time.Second
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
