// Package config loads server settings from an optional YAML file and VC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full server configuration.
type Config struct {
	Env            string        `yaml:"env" env:"VC_ENV" env-default:"development"`
	Addr           string        `yaml:"addr" env:"VC_ADDR" env-default:":8080"`
	DBPath         string        `yaml:"db_path" env:"VC_DB_PATH" env-default:"volunteerconnect.db"`
	AssetRoot      string        `yaml:"asset_root" env:"VC_ASSET_ROOT" env-description:"base URL for page fragments; empty serves the embedded site"`
	SessionTimeout time.Duration `yaml:"session_timeout" env:"VC_SESSION_TIMEOUT" env-default:"15m"`
	TabTTL         time.Duration `yaml:"tab_ttl" env:"VC_TAB_TTL" env-default:"2h"`

	Redis Redis `yaml:"redis"`
	HTTP  HTTP  `yaml:"http"`
	Email Email `yaml:"email"`
	Log   Log   `yaml:"log"`
}

// Redis configures the shared session store. An empty Addr keeps sessions in memory.
type Redis struct {
	Addr     string        `yaml:"addr" env:"VC_REDIS_ADDR"`
	Password string        `yaml:"password" env:"VC_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"VC_REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"VC_REDIS_TTL" env-default:"24h"`
}

// HTTP holds request-handling settings.
type HTTP struct {
	CSRFKey        string        `yaml:"csrf_key" env:"VC_CSRF_KEY" env-description:"64 hex characters; random when empty"`
	SecureCookies  bool          `yaml:"secure_cookies" env:"VC_SECURE_COOKIES"`
	TrustedOrigins []string      `yaml:"trusted_origins" env:"VC_TRUSTED_ORIGINS" env-separator:","`
	RateLimit      int           `yaml:"rate_limit" env:"VC_RATE_LIMIT" env-default:"0"`
	SlowRequest    time.Duration `yaml:"slow_request" env:"VC_SLOW_REQUEST" env-default:"200ms"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"VC_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"VC_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"VC_IDLE_TIMEOUT" env-default:"60s"`
}

// Email configures outbound notifications. An empty ResendKey logs mail instead of sending it.
type Email struct {
	ResendKey string `yaml:"resend_key" env:"VC_RESEND_KEY"`
	From      string `yaml:"from" env:"VC_EMAIL_FROM" env-default:"Volunteer Connect <noreply@volunteerconnect.org>"`
	Inbox     string `yaml:"inbox" env:"VC_EMAIL_INBOX" env-default:"hello@volunteerconnect.org"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level" env:"VC_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"VC_LOG_FORMAT" env-default:"text"`
}

// Load reads path when it is non-empty, then applies environment overrides and defaults.
// POST: returned config has passed Validate
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.SessionTimeout < 0 {
		errs = append(errs, errors.New("session_timeout must not be negative"))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q: want text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel parses Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Handler builds the slog handler described by l.
func (l Log) Handler(w io.Writer) slog.Handler {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Usage describes every environment variable the config reads.
func Usage() string {
	var cfg Config
	header := "Environment variables:"
	text, err := cleanenv.GetDescription(&cfg, &header)
	if err != nil {
		return header
	}
	return text
}
