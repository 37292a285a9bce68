// Package config loads service configuration from the environment, with an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// DefaultMaxUploadBytes is the logo and background upload limit.
const DefaultMaxUploadBytes = 5 << 20

// Config holds qrstudio configuration.
type Config struct {
	Port     string
	LogLevel string

	Backend      string
	Fallback     bool
	PollInterval time.Duration
	PollAttempts int
	Debounce     time.Duration

	MaxUploadBytes int64

	PrefsBackend string
	PrefsPath    string
	RedisURL     string

	SessionIdleTimeout time.Duration
}

// Load reads .env (if present) and the environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Backend:            getEnv("QR_BACKEND", render.BackendYeqown),
		Fallback:           getEnvAsBool("QR_FALLBACK", true),
		PollInterval:       getEnvAsDuration("QR_POLL_INTERVAL", render.DefaultPoll.Interval),
		PollAttempts:       getEnvAsInt("QR_POLL_ATTEMPTS", render.DefaultPoll.Attempts),
		Debounce:           getEnvAsDuration("QR_DEBOUNCE", 300*time.Millisecond),
		MaxUploadBytes:     int64(getEnvAsInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		PrefsBackend:       getEnv("PREFS_BACKEND", "file"),
		PrefsPath:          getEnv("PREFS_PATH", "qrstudio-prefs.json"),
		RedisURL:           getEnv("REDIS_URL", ""),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case render.BackendYeqown, render.BackendSkip2:
	default:
		errs = append(errs, fmt.Errorf("QR_BACKEND must be %s or %s, got %q", render.BackendYeqown, render.BackendSkip2, c.Backend))
	}
	if c.PollInterval <= 0 || c.PollAttempts <= 0 {
		errs = append(errs, errors.New("QR_POLL_INTERVAL and QR_POLL_ATTEMPTS must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	switch c.PrefsBackend {
	case "file":
		if c.PrefsPath == "" {
			errs = append(errs, errors.New("PREFS_PATH is required for the file preference store"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis preference store"))
		}
	default:
		errs = append(errs, fmt.Errorf("PREFS_BACKEND must be file or redis, got %q", c.PrefsBackend))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Poll returns the artifact polling budget.
func (c *Config) Poll() render.PollConfig {
	return render.PollConfig{Interval: c.PollInterval, Attempts: c.PollAttempts}
}

// Addr returns the listen address derived from Port.
func (c *Config) Addr() string {
	if c.Port == "" {
		return ":8080"
	}
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Warn("invalid int, using default", "key", key, "default", def, "err", err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			log.Warn("invalid bool, using default", "key", key, "default", def, "err", err)
			return def
		}
		return b
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Warn("invalid duration, using default", "key", key, "default", def, "err", err)
			return def
		}
		return d
	}
	return def
}
