// Package config loads the server configuration from environment variables.
//
// A .env file in the working directory is read first (see cmd/server), so
// local development can keep secrets out of the shell profile. Real
// environment variables always win over .env entries.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP       HTTP
	Database   Database
	Session    Session
	Generation Generation
	Redis      Redis
	Admin      Admin
	RateLimit  RateLimit
	Log        Log

	// PublicBaseURL prefixes reset links handed back to the caller.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	BcryptCost    int    `env:"BCRYPT_COST" env-default:"12"`
}

type HTTP struct {
	Port            int           `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type Database struct {
	Path string `env:"DB_PATH" env-default:"data/creatorverse.db"`
}

type Session struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"false"`
}

// Generation configures the external idea generator. An empty APIKey puts
// the gateway in demo mode.
type Generation struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string        `env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo"`
	Timeout time.Duration `env:"GENERATION_TIMEOUT" env-default:"5s"`
}

// Redis is optional. With Addr empty, sessions are kept in process memory.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Admin is the account seeded when the admins table is empty.
type Admin struct {
	Username string `env:"ADMIN_USERNAME" env-default:"admin"`
	Password string `env:"ADMIN_PASSWORD" env-default:"admin123"`
}

// RateLimit applies per client IP to the unauthenticated auth endpoints.
type RateLimit struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"5"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"debug"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Session.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set and at least 16 characters"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.HTTP.Port))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Usage returns the environment variable help text generated from the tags.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return desc
}
