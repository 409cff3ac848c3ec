// Package log provides the leveled logger shared by the CLI, cache,
// watcher, and query server. Adapted from pkg/lsp's Logger, but extended
// with WithField: the teacher's logger served one long-lived LSP session
// with nothing to disambiguate log lines by, whereas this tool's cache,
// watcher, and server all juggle many map paths concurrently, so callers
// tag a derived logger once (e.g. WithField("map", path)) instead of
// repeating the path in every format string.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level is the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String renders the level the way a --log-level flag or config file
// value would name it.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger is the interface every component that logs depends on, so tests
// can substitute a recording fake.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	// WithField returns a derived Logger whose lines are all tagged
	// "key=value", e.g. for scoping every cache/watcher log line to the
	// map path it concerns without threading that path through every
	// call site.
	WithField(key, value string) Logger
}

// StandardLogger implements Logger over the standard library's *log.Logger.
type StandardLogger struct {
	level  Level
	logger *log.Logger
	fields string
}

// New creates a Logger at the given level ("debug", "info", "warn",
// "error"; unrecognized strings default to "info"). output defaults to
// os.Stderr when nil.
func New(levelStr string, output io.Writer) Logger {
	if output == nil {
		output = os.Stderr
	}
	return &StandardLogger{
		level:  parseLevel(levelStr),
		logger: log.New(output, "[sourcemap-tool] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// ParseLevel exposes the level grammar ("debug"/"info"/"warn"/"warning"/
// "error") to callers outside this package — internal/config validates a
// configured log_level against it before New ever sees the string.
func ParseLevel(levelStr string) Level {
	return parseLevel(levelStr)
}

func parseLevel(levelStr string) Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// WithField returns a derived logger that prefixes every message with
// "key=value", in addition to any fields already attached by an earlier
// WithField call.
func (l *StandardLogger) WithField(key, value string) Logger {
	field := fmt.Sprintf("%s=%s ", key, value)
	return &StandardLogger{
		level:  l.level,
		logger: l.logger,
		fields: l.fields + field,
	}
}

func (l *StandardLogger) Debugf(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.logger.Output(2, fmt.Sprintf("[DEBUG] "+l.fields+format, args...))
	}
}

func (l *StandardLogger) Infof(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.logger.Output(2, fmt.Sprintf("[INFO] "+l.fields+format, args...))
	}
}

func (l *StandardLogger) Warnf(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.logger.Output(2, fmt.Sprintf("[WARN] "+l.fields+format, args...))
	}
}

func (l *StandardLogger) Errorf(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.logger.Output(2, fmt.Sprintf("[ERROR] "+l.fields+format, args...))
	}
}

func (l *StandardLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Output(2, fmt.Sprintf("[FATAL] "+l.fields+format, args...))
	os.Exit(1)
}
