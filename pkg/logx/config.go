package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human-readable, optionally coloured lines
	FormatConsole Format = "console"
	// FormatJSON outputs one JSON object per line
	FormatJSON Format = "json"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format
	Format Format

	// EnableColors enables colored output (console format only)
	EnableColors bool

	// EnableCaller adds file and line number to logs
	EnableCaller bool

	// EnableTimestamp adds timestamp to logs
	EnableTimestamp bool

	// TimeFormat is the time format to use (defaults to RFC3339)
	TimeFormat string

	// Output is where to write logs (defaults to os.Stdout)
	Output io.Writer

	// DefaultFields are attached to every entry, e.g. service=gatekeeper
	DefaultFields Fields
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableColors:    true,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		Output:          os.Stdout,
	}
}

// ConfigForEnv returns the preset for an application environment.
// "development" logs everything to a coloured console; anything else is
// treated as production and logs JSON from info upwards.
func ConfigForEnv(env string) *Config {
	config := DefaultConfig()

	if strings.EqualFold(env, "development") {
		config.Level = LevelDebug
		config.Format = FormatConsole
		config.EnableCaller = true
		return config
	}

	config.Level = LevelInfo
	config.Format = FormatJSON
	config.EnableColors = false
	config.TimeFormat = time.RFC3339Nano
	return config
}

// LoadFromEnv applies LOG_* overrides on top of base.
// A nil base starts from DefaultConfig.
func LoadFromEnv(base *Config) *Config {
	config := base
	if config == nil {
		config = DefaultConfig()
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		switch strings.ToLower(format) {
		case "json":
			config.Format = FormatJSON
		case "console":
			config.Format = FormatConsole
		}
	}

	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = strings.ToLower(color) == "true" || color == "1"
	}

	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.EnableCaller = strings.ToLower(caller) == "true" || caller == "1"
	}

	if timeFormat := os.Getenv("LOG_TIME_FORMAT"); timeFormat != "" {
		switch strings.ToUpper(timeFormat) {
		case "RFC3339":
			config.TimeFormat = time.RFC3339
		case "RFC3339NANO":
			config.TimeFormat = time.RFC3339Nano
		case "UNIX":
			config.TimeFormat = "unix"
		case "UNIXMILLI":
			config.TimeFormat = "unixmilli"
		default:
			config.TimeFormat = timeFormat
		}
	}

	return config
}
