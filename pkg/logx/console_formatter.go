package logx

import (
	"fmt"
	"strings"
)

const (
	colorReset      = "\033[0m"
	colorRed        = "\033[31m"
	colorCyan       = "\033[36m"
	colorGray       = "\033[90m"
	colorBoldRed    = "\033[1;31m"
	colorBoldYellow = "\033[1;33m"
	colorBoldCyan   = "\033[1;36m"
	colorBoldGreen  = "\033[1;32m"
)

// ConsoleFormatter renders one readable line per entry, fields sorted by key
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format formats a log entry for console output
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		b.WriteString(f.paint(colorGray, formatTimestamp(entry.Timestamp, f.config.TimeFormat)))
		b.WriteByte(' ')
	}

	b.WriteString(f.formatLevel(entry.Level))
	b.WriteByte(' ')

	if f.config.EnableCaller && entry.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+entry.Caller+"]"))
		b.WriteByte(' ')
	}

	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		pairs := make([]string, 0, len(entry.Fields))
		for _, k := range entry.Fields.sortedKeys() {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		b.WriteByte(' ')
		b.WriteString(f.paint(colorCyan, strings.Join(pairs, " ")))
	}

	if entry.Error != nil {
		b.WriteString("\n")
		b.WriteString(f.paint(colorRed, "  error: "+entry.Error.Error()))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) paint(color, s string) string {
	if !f.config.EnableColors {
		return s
	}
	return color + s + colorReset
}

func (f *ConsoleFormatter) formatLevel(level Level) string {
	label := fmt.Sprintf("[%-5s]", level.String())
	switch level {
	case LevelDebug, LevelTrace:
		return f.paint(colorBoldCyan, label)
	case LevelInfo:
		return f.paint(colorBoldGreen, label)
	case LevelWarn:
		return f.paint(colorBoldYellow, label)
	case LevelError, LevelFatal:
		return f.paint(colorBoldRed, label)
	default:
		return label
	}
}
