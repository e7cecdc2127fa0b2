// Package logger provides structured JSON logging with optional redaction of
// recipient email addresses. Log entries are written to stderr, one JSON
// object per line.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel converts a config string ("debug", "info", ...) into a Level.
// Unknown values default to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger emits structured JSON log entries. The zero value is not usable;
// use the package-level functions or With.
type Logger struct {
	component string
	level     *Level
	redact    *bool
	mu        *sync.Mutex
	out       io.Writer
}

var (
	defaultLevel  = INFO
	defaultRedact = true
	defaultMu     sync.Mutex
	defaultOut    io.Writer = os.Stderr
)

var root = &Logger{level: &defaultLevel, redact: &defaultRedact, mu: &defaultMu, out: defaultOut}

// SetLevel sets the minimum log level for all loggers.
func SetLevel(l Level) { defaultLevel = l }

// SetRedact enables or disables email redaction for all loggers.
func SetRedact(r bool) { defaultRedact = r }

// With returns a logger that tags every entry with the given component name.
func With(component string) *Logger {
	return &Logger{component: component, level: root.level, redact: root.redact, mu: root.mu, out: root.out}
}

// Debug emits a DEBUG-level entry on the root logger.
func Debug(msg string, fields ...any) { root.emit(DEBUG, msg, fields) }

// Info emits an INFO-level entry on the root logger.
func Info(msg string, fields ...any) { root.emit(INFO, msg, fields) }

// Warn emits a WARN-level entry on the root logger.
func Warn(msg string, fields ...any) { root.emit(WARN, msg, fields) }

// Error emits an ERROR-level entry on the root logger.
func Error(msg string, fields ...any) { root.emit(ERROR, msg, fields) }

// Debug emits a DEBUG-level entry.
func (l *Logger) Debug(msg string, fields ...any) { l.emit(DEBUG, msg, fields) }

// Info emits an INFO-level entry.
func (l *Logger) Info(msg string, fields ...any) { l.emit(INFO, msg, fields) }

// Warn emits a WARN-level entry.
func (l *Logger) Warn(msg string, fields ...any) { l.emit(WARN, msg, fields) }

// Error emits an ERROR-level entry.
func (l *Logger) Error(msg string, fields ...any) { l.emit(ERROR, msg, fields) }

// emit serializes the entry. Fields are alternating key/value pairs; a
// trailing key without a value is dropped.
func (l *Logger) emit(level Level, msg string, fields []any) {
	if level < *l.level {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": level.String(),
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}

	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if *l.redact {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}
