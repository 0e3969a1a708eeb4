// Package logging builds the structured slog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvFormat selects the handler: json or text.
	EnvFormat = "LOG_FORMAT"
	// EnvLevel sets the minimum level: debug, info, warn or error.
	EnvLevel = "LOG_LEVEL"

	// AppName is attached to every record.
	AppName = "user-admin"

	defaultFormat = "json"
)

type Config struct {
	Format string
	Level  slog.Level
}

func DefaultConfig() Config {
	return Config{Format: defaultFormat, Level: slog.LevelInfo}
}

// LoadConfigFromEnv parses LOG_FORMAT and LOG_LEVEL. Empty values fall back to defaults.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	format := strings.ToLower(strings.TrimSpace(os.Getenv(EnvFormat)))
	switch format {
	case "":
	case "json", "text":
		cfg.Format = format
	default:
		return Config{}, fmt.Errorf("%s must be one of: json, text", EnvFormat)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLevel)); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err != nil || !knownLevel(level) {
			return Config{}, fmt.Errorf("%s must be one of: debug, info, warn, error", EnvLevel)
		}
		cfg.Level = level
	}
	return cfg, nil
}

// NewLogger creates a logger writing to w (stdout when nil) tagged with the command path.
func NewLogger(cfg Config, w io.Writer, command string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	command = strings.TrimSpace(command)
	if command == "" {
		command = AppName
	}
	return slog.New(handler).With("app", AppName, "command", command)
}

// Bootstrap loads the env config, installs the logger as the slog default and returns it.
func Bootstrap(w io.Writer, command string) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, w, command)
	slog.SetDefault(logger)
	return logger, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func knownLevel(level slog.Level) bool {
	switch level {
	case slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError:
		return true
	default:
		return false
	}
}
