// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the airforms service settings.
type Config struct {
	Port          string
	Env           string
	DatabaseURL   string
	ClientURL     string
	JWTSecret     string
	FormCacheSize int
	Airtable      AirtableConfig
	Log           LogConfig
}

// AirtableConfig holds the OAuth client registration.
type AirtableConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	APIBaseURL   string
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string
	Level  slog.Level
}

// Lookup reads one environment variable.
type Lookup func(key string) string

// Load reads .env files (when present) and then the process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else {
		for _, file := range files {
			if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: load %s: %w", file, err)
			}
		}
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(get Lookup) (*Config, error) {
	env := func(key string) string { return strings.TrimSpace(get(key)) }

	port := firstNonEmpty(env("PORT"), "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	appEnv := firstNonEmpty(env("APP_ENV"), "local")

	cacheSize := 1024
	if raw := env("FORM_CACHE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("config: FORM_CACHE_SIZE: %w", err)
		}
		cacheSize = n
	}

	level, err := parseLevel(env("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          port,
		Env:           appEnv,
		DatabaseURL:   env("DATABASE_URL"),
		ClientURL:     firstNonEmpty(env("CLIENT_URL"), "http://localhost:5173"),
		JWTSecret:     env("JWT_SECRET"),
		FormCacheSize: cacheSize,
		Airtable: AirtableConfig{
			ClientID:     env("AIRTABLE_CLIENT_ID"),
			ClientSecret: env("AIRTABLE_CLIENT_SECRET"),
			RedirectURL:  firstNonEmpty(env("AIRTABLE_OAUTH_REDIRECT_URI"), "http://localhost"+port+"/auth/airtable/callback"),
			APIBaseURL:   env("AIRTABLE_API_URL"),
		},
		Log: LogConfig{
			Format: strings.ToLower(firstNonEmpty(env("LOG_FORMAT"), defaultLogFormat(appEnv))),
			Level:  level,
		},
	}

	if cfg.JWTSecret == "" && !cfg.IsLocal() {
		return nil, errors.New("config: JWT_SECRET is required outside local")
	}
	return cfg, nil
}

// IsLocal reports whether the service runs in a developer environment.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Env, "local") || strings.EqualFold(c.Env, "test")
}

// Logger builds the process logger.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Log.Level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultLogFormat(env string) string {
	if strings.EqualFold(env, "production") {
		return "json"
	}
	return "text"
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown LOG_LEVEL %q", raw)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
