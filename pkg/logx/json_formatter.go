package logx

import "encoding/json"

// JSONFormatter formats logs as one JSON object per line
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format formats a log entry as JSON.
// Reserved keys (level, message, timestamp) win over fields of the same name.
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+5)

	for k, v := range entry.Fields {
		data[k] = jsonSafe(v)
	}

	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	if f.config.EnableTimestamp {
		switch f.config.TimeFormat {
		case "unix":
			data["timestamp"] = entry.Timestamp.Unix()
		case "unixmilli":
			data["timestamp"] = entry.Timestamp.UnixMilli()
		default:
			data["timestamp"] = formatTimestamp(entry.Timestamp, f.config.TimeFormat)
		}
	}

	if f.config.EnableCaller && entry.Caller != "" {
		data["caller"] = entry.Caller
	}

	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(bytes, '\n'), nil
}

// jsonSafe stringifies errors, which otherwise marshal as {}
func jsonSafe(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
