package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	UserAPIBaseURL        string        `env:"USER_API_BASE_URL"`
	UserAPIToken          string        `env:"USER_API_TOKEN"`
	UserAPITimeout        time.Duration `env:"USER_API_TIMEOUT" envDefault:"10s"`
	UserAPIRetries        uint          `env:"USER_API_RETRIES" envDefault:"3"`
	HTTPAddr              string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr           string        `env:"METRICS_ADDR" envDefault:"off"`
	AuthCookieSecure      bool          `env:"AUTH_COOKIE_SECURE" envDefault:"false"`
	SessionLifetime       time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
	PageSize              int           `env:"PAGE_SIZE" envDefault:"5"`
	FetchLimit            int           `env:"FETCH_LIMIT" envDefault:"1000"`
	SignupDefaultPassword string        `env:"SIGNUP_DEFAULT_PASSWORD" envDefault:"123456"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.UserAPIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.UserAPIBaseURL), "/")
	cfg.UserAPIToken = strings.TrimSpace(cfg.UserAPIToken)
	cfg.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)
	cfg.MetricsAddr = strings.TrimSpace(cfg.MetricsAddr)

	if cfg.UserAPIBaseURL == "" {
		return cfg, errors.New("USER_API_BASE_URL is required")
	}
	if u, err := url.Parse(cfg.UserAPIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, errors.New("USER_API_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.UserAPITimeout <= 0 {
		return cfg, errors.New("USER_API_TIMEOUT must be positive")
	}
	if cfg.UserAPIRetries < 1 {
		return cfg, errors.New("USER_API_RETRIES must be at least 1")
	}
	if cfg.SessionLifetime <= 0 {
		return cfg, errors.New("SESSION_LIFETIME must be positive")
	}
	if cfg.PageSize < 1 {
		return cfg, errors.New("PAGE_SIZE must be at least 1")
	}
	if cfg.FetchLimit < 1 {
		return cfg, errors.New("FETCH_LIMIT must be at least 1")
	}
	if cfg.HTTPAddr == "" {
		return cfg, errors.New("HTTP_ADDR must not be empty")
	}
	return cfg, nil
}
