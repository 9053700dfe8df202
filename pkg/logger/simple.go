// Package logger provides a basic structured logger implementing the
// core.Logger interface, with text output for terminals and JSON output
// for log aggregation.
package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// LogLevel controls which messages are emitted
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// SimpleLogger provides a basic structured logger implementation
type SimpleLogger struct {
	level  LogLevel
	json   bool
	fields map[string]interface{}
}

// NewSimpleLogger creates a new simple logger at info level, text format
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		level:  InfoLevel,
		fields: make(map[string]interface{}),
	}
}

// FromConfig builds a logger from the logging configuration section
func FromConfig(level, format string) *SimpleLogger {
	l := NewSimpleLogger()
	l.SetLevel(level)
	l.json = strings.EqualFold(format, "json")
	return l
}

// SetLevel sets the logging level
func (l *SimpleLogger) SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		l.level = DebugLevel
	case "INFO":
		l.level = InfoLevel
	case "WARN", "WARNING":
		l.level = WarnLevel
	case "ERROR":
		l.level = ErrorLevel
	}
}

// WithFields returns a logger that adds the given fields to every entry
func (l *SimpleLogger) WithFields(fields map[string]interface{}) *SimpleLogger {
	newFields := make(map[string]interface{})
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &SimpleLogger{
		level:  l.level,
		json:   l.json,
		fields: newFields,
	}
}

// Debug logs a debug message
func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	if l.level <= DebugLevel {
		l.log("DEBUG", msg, fields)
	}
}

// Info logs an info message
func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	if l.level <= InfoLevel {
		l.log("INFO", msg, fields)
	}
}

// Warn logs a warning message
func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	if l.level <= WarnLevel {
		l.log("WARN", msg, fields)
	}
}

// Error logs an error message
func (l *SimpleLogger) Error(msg string, fields map[string]interface{}) {
	if l.level <= ErrorLevel {
		l.log("ERROR", msg, fields)
	}
}

// log performs the actual logging
func (l *SimpleLogger) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	if l.json {
		entry := map[string]interface{}{
			"time":  time.Now().Format(time.RFC3339Nano),
			"level": level,
			"msg":   msg,
		}
		for k, v := range merged {
			entry[k] = v
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[%s] %s (unloggable fields: %v)", level, msg, err)
			return
		}
		fmt.Fprintln(os.Stderr, string(raw))
		return
	}

	parts := []string{fmt.Sprintf("[%s]", level), msg}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
	}

	log.Println(strings.Join(parts, " "))
}

// GetLogLevel gets the current log level from environment
func GetLogLevel() string {
	level := os.Getenv("STOREFRONT_LOG_LEVEL")
	if level == "" {
		return "INFO"
	}
	return level
}
