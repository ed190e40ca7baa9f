package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// RateLimitConfig holds the sliding-window limits applied per client IP.
type RateLimitConfig struct {
	Enabled        bool          `json:"enabled"`
	GlobalMax      int           `json:"global_max"`
	GlobalWindow   time.Duration `json:"global_window"`
	LoginMax       int           `json:"login_max"`
	LoginWindow    time.Duration `json:"login_window"`
	RegisterMax    int           `json:"register_max"`
	RegisterWindow time.Duration `json:"register_window"`
}

// DefaultRateLimit returns the per-IP limits: 200 requests per 15 minutes
// overall, 5 logins per 15 minutes and 3 registrations per hour.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		GlobalMax:      200,
		GlobalWindow:   15 * time.Minute,
		LoginMax:       5,
		LoginWindow:    15 * time.Minute,
		RegisterMax:    3,
		RegisterWindow: time.Hour,
	}
}

type Config struct {
	Environment    string          `json:"environment"`
	ServerPort     string          `json:"server_port"`
	JWTSecret      string          `json:"-"`
	JWTExpiresIn   time.Duration   `json:"jwt_expires_in"`
	BcryptCost     int             `json:"bcrypt_cost"`
	EnforceRoles   bool            `json:"enforce_roles"`
	CORSOrigins    []string        `json:"cors_origins"`
	DBDriver       string          `json:"db_driver"`
	DBHost         string          `json:"db_host"`
	DBPort         string          `json:"db_port"`
	DBUser         string          `json:"db_user"`
	DBPassword     string          `json:"-"`
	DBName         string          `json:"db_name"`
	DBSSLMode      string          `json:"db_ssl_mode"`
	DBMaxIdleConns int             `json:"db_max_idle_conns"`
	DBMaxOpenConns int             `json:"db_max_open_conns"`
	SentryDSN      string          `json:"-"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
	Redis          RedisConfig     `json:"redis"`
}

// IsProduction reports whether error details and debug logging must be suppressed.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "3000"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiresIn:   getEnvAsDuration("JWT_EXPIRES_IN", 12*time.Hour),
		BcryptCost:     getEnvAsInt("BCRYPT_COST", 10),
		EnforceRoles:   getEnvAsBool("ENFORCE_ROLES", true),
		CORSOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "projecthub"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		RateLimit:      DefaultRateLimit(),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", true)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logConfig(cfg)
	return cfg, nil
}

// Validate checks the settings that make start-up impossible. A missing JWT
// secret is tolerated: protected routes answer 500 until it is configured.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func logConfig(cfg *Config) {
	log := logrus.WithField("component", "config")
	log.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"server_port":   cfg.ServerPort,
		"db_driver":     cfg.DBDriver,
		"database":      fmt.Sprintf("%s@%s:%s/%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName),
		"enforce_roles": cfg.EnforceRoles,
		"rate_limit":    cfg.RateLimit.Enabled,
		"redis":         cfg.Redis.Enabled,
	}).Info("Loaded configuration")

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; authenticated routes will fail with 500")
	}
}
