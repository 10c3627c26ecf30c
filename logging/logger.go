// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer HoneymeshLogger with contextual
// helpers (session, turn, component) and domain specific logging helpers for
// model calls, strategy runs, dispatch rounds and report deliveries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents different logging levels.
// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a configuration string to a LogLevel. Unknown values
// fall back to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface for Honeymesh. Arguments
// follow slog's alternating key/value convention.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// HoneymeshLogger decorates a minimal Logger with contextual cloning helpers
// and domain convenience methods. Every entry carries the component, session
// and turn attributes attached via With* calls. It is cheap to copy: With*
// methods return clones sharing the underlying sink.
type HoneymeshLogger struct {
	base      Logger
	level     LogLevel
	context   []any // alternating key/value pairs
	component string
	sessionID string
	turn      int
}

// LoggerConfig configures construction of a HoneymeshLogger.
type LoggerConfig struct {
	Level       LogLevel
	Format      string // json or text
	Output      io.Writer
	AddSource   bool
	Component   string
	SessionID   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, AddSource: true, CustomAttrs: map[string]any{}}
}

// NewLogger builds a HoneymeshLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *HoneymeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	l := &HoneymeshLogger{
		base:      NewSlogAdapter(slog.New(handler)),
		level:     cfg.Level,
		component: cfg.Component,
		sessionID: cfg.SessionID,
	}
	for k, v := range cfg.CustomAttrs {
		l.context = append(l.context, k, v)
	}
	return l
}

// Wrap lifts a minimal Logger into a HoneymeshLogger so callers get the
// contextual and domain helpers regardless of what was plugged in. Wrapping
// a HoneymeshLogger returns it unchanged; wrapping nil yields a silent one.
func Wrap(l Logger) *HoneymeshLogger {
	if hl, ok := l.(*HoneymeshLogger); ok {
		return hl
	}
	if l == nil {
		l = NoOpLogger{}
	}
	return &HoneymeshLogger{base: l, level: LogLevelDebug}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *HoneymeshLogger) clone() *HoneymeshLogger {
	nl := *l
	nl.context = append([]any(nil), l.context...)
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *HoneymeshLogger) WithContext(key string, value any) *HoneymeshLogger {
	nl := l.clone()
	nl.context = append(nl.context, key, value)
	return nl
}

// WithComponent sets the logical component (engine, dispatcher, server, etc.).
func (l *HoneymeshLogger) WithComponent(c string) *HoneymeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithSession attaches the session identifier and turn number.
func (l *HoneymeshLogger) WithSession(sid string, turn int) *HoneymeshLogger {
	nl := l.clone()
	nl.sessionID = sid
	nl.turn = turn
	return nl
}

// attrs renders the attached context as alternating key/value pairs, ready to
// prepend to a log call's arguments.
func (l *HoneymeshLogger) attrs() []any {
	out := make([]any, 0, len(l.context)+6)
	if l.component != "" {
		out = append(out, "component", l.component)
	}
	if l.sessionID != "" {
		out = append(out, "session_id", l.sessionID)
	}
	if l.turn > 0 {
		out = append(out, "turn", l.turn)
	}
	return append(out, l.context...)
}

// Debug logs at debug level.
func (l *HoneymeshLogger) Debug(msg string, args ...any) {
	if l.level > LogLevelDebug {
		return
	}
	l.base.Debug(msg, append(l.attrs(), args...)...)
}

// Info logs at info level.
func (l *HoneymeshLogger) Info(msg string, args ...any) {
	if l.level > LogLevelInfo {
		return
	}
	l.base.Info(msg, append(l.attrs(), args...)...)
}

// Warn logs at warn level.
func (l *HoneymeshLogger) Warn(msg string, args ...any) {
	if l.level > LogLevelWarn {
		return
	}
	l.base.Warn(msg, append(l.attrs(), args...)...)
}

// Error logs at error level.
func (l *HoneymeshLogger) Error(msg string, args ...any) {
	l.base.Error(msg, append(l.attrs(), args...)...)
}

// ErrorWithStack logs an error plus a runtime stack snapshot.
func (l *HoneymeshLogger) ErrorWithStack(err error, msg string, args ...any) {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	args = append(args,
		"error", err.Error(),
		"error_type", fmt.Sprintf("%T", err),
		"stack_trace", string(stack[:n]),
	)
	l.Error(msg, args...)
}

// LogModelCall records model call latency and success.
func (l *HoneymeshLogger) LogModelCall(model string, dur time.Duration, err error) {
	args := []any{"model", model, "duration", dur, "success", err == nil}
	if err != nil {
		args = append(args, "error", err.Error())
		l.Error("model call failed", args...)
		return
	}
	l.Debug("model call completed", args...)
}

// LogStrategyRun records which ladder tier produced a strategy's candidate and
// how long the run took.
func (l *HoneymeshLogger) LogStrategyRun(strategy, tier string, dur time.Duration) {
	l.Info("strategy run completed", "strategy", strategy, "tier", tier, "duration", dur)
}

// LogDispatch records aggregate dispatch metrics for one turn. A round that
// produced no candidates at all is warned about: the turn fell through to a
// forced offline reply.
func (l *HoneymeshLogger) LogDispatch(launched, completed int, dur time.Duration) {
	args := []any{"launched", launched, "completed", completed, "duration", dur}
	if completed == 0 {
		l.Warn("dispatch produced no candidates", args...)
		return
	}
	l.Info("dispatch completed", args...)
}

// LogReportDelivery records the outcome of an asynchronous report delivery.
func (l *HoneymeshLogger) LogReportDelivery(sessionID string, dur time.Duration, err error) {
	args := []any{"report_session_id", sessionID, "duration", dur}
	if err != nil {
		args = append(args, "error", err.Error())
		l.Error("report delivery failed", args...)
		return
	}
	l.Info("report delivered", args...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *HoneymeshLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Info("operation completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new HoneymeshLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *HoneymeshLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}
