// Package log provides structured logging for deskctl.
// Entries are written as single key=value lines tagged with a level and a
// category, and are also published on a broker so in-process listeners can
// follow the log.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/deskctl/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config value ("debug", "info", "warn", "error") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatCoord     Category = "coord"     // Session command coordinator
	CatTransport Category = "transport" // Retrying transport and agent HTTP client
	CatAgent     Category = "agent"     // PC-side command endpoint
	CatBot       Category = "bot"       // Chat handlers and notifier
	CatDB        Category = "db"        // History database
	CatConfig    Category = "config"    // Configuration loading/saving
	CatWatcher   Category = "watcher"   // Config file watcher
	CatCache     Category = "cache"     // Cache operations
	CatTrace     Category = "trace"     // Tracing provider
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens (or creates) path for appending and makes it the log destination.
// Returns a cleanup function that closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // G304: operator-chosen log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(&Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: LevelInfo,
		broker:   pubsub.NewBroker[string](),
	})
	return func() { _ = f.Close() }, nil
}

// InitWriter logs to w (typically os.Stdout for the daemons).
func InitWriter(w io.Writer) {
	install(&Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelInfo,
		broker:   pubsub.NewBroker[string](),
	})
}

func install(l *Logger) {
	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()
	if old != nil && old.broker != nil {
		old.broker.Close()
	}
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2026-10-19T10:45:00 [WARN] [coord] message key=value key2=value2
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, entry)
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// Subscribe returns a channel of log entries that closes when ctx is done.
// Returns nil when logging has not been initialized.
func Subscribe(ctx context.Context) <-chan LogEvent {
	l := current()
	if l == nil || l.broker == nil {
		return nil
	}
	return l.broker.Subscribe(ctx)
}
