package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
)

// Config holds the logger configuration
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	AddSource bool
	Writer    io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "json",
		AddSource: false,
		Writer:    os.Stdout,
	}
}

// LoadConfig loads the logger configuration from environment variables
func LoadConfig() Config {
	config := DefaultConfig()

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		switch levelStr {
		case "DEBUG":
			config.Level = slog.LevelDebug
		case "INFO":
			config.Level = slog.LevelInfo
		case "WARN":
			config.Level = slog.LevelWarn
		case "ERROR":
			config.Level = slog.LevelError
		default:
			if levelInt, err := strconv.Atoi(levelStr); err == nil {
				config.Level = slog.Level(levelInt)
			}
		}
	}

	if format := os.Getenv("LOG_FORMAT"); format == "text" || format == "json" {
		config.Format = format
	}

	if addSourceStr := os.Getenv("LOG_ADD_SOURCE"); addSourceStr != "" {
		if addSource, err := strconv.ParseBool(addSourceStr); err == nil {
			config.AddSource = addSource
		}
	}

	return config
}

// New creates a new logger with the given configuration
func New(config Config) *slog.Logger {
	writer := config.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler

	switch config.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default: // json
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler)
}
