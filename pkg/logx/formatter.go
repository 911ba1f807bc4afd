package logx

import (
	"fmt"
	"sort"
	"time"
)

// Formatter turns an entry into bytes ready to be written
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Fields is a map of structured data
type Fields map[string]interface{}

// sortedKeys returns field names in a stable order
func (f Fields) sortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTimestamp(t time.Time, format string) string {
	switch format {
	case "unix":
		return fmt.Sprintf("%d", t.Unix())
	case "unixmilli":
		return fmt.Sprintf("%d", t.UnixMilli())
	case "":
		return t.Format(time.RFC3339)
	default:
		return t.Format(format)
	}
}
