package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/expml/internal/errors"
)

// Level is a syslog-style severity. Lower values are more severe.
type Level int

const (
	LevelEmerg Level = iota + 1
	LevelAlert
	LevelCrit
	LevelError
	LevelWarn
	LevelNotice
	LevelInfo
	LevelDebug
)

var levelNames = map[Level]string{
	LevelEmerg:  "EMERG",
	LevelAlert:  "ALERT",
	LevelCrit:   "CRIT",
	LevelError:  "ERROR",
	LevelWarn:   "WARN",
	LevelNotice: "NOTICE",
	LevelInfo:   "INFO",
	LevelDebug:  "DEBUG",
}

// String returns the upper-case level name used in log lines.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel accepts a level name (any case, "warning" and "err" allowed)
// or its numeric value.
func ParseLevel(s string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "WARNING":
		name = "WARN"
	case "ERR":
		name = "ERROR"
	case "CRITICAL":
		name = "CRIT"
	}
	for lvl, n := range levelNames {
		if n == name {
			return lvl, true
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "%d", &n); err == nil && n >= int(LevelEmerg) && n <= int(LevelDebug) {
		return Level(n), true
	}
	return 0, false
}

// TimestampLayout is the timestamp prefix of every log line, millisecond precision.
const TimestampLayout = "2006-01-02 15:04:05.000"

// FileLogger appends leveled lines to a writer, usually the run's debug.log.
// Safe for concurrent use.
type FileLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	min    Level
	now    func() time.Time
}

// OpenFile opens path in append mode (creating it) and writes an init line.
func OpenFile(path string, min Level) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLog,
			"Can't open log file "+path,
			"Check that the run directory exists and is writable")
	}
	l := NewFileLogger(f, min)
	l.closer = f
	l.Log(LevelInfo, "logger initialized (level=%s)", min)
	return l, nil
}

// NewFileLogger wraps an arbitrary writer. Messages above min are dropped.
func NewFileLogger(w io.Writer, min Level) *FileLogger {
	if min < LevelEmerg || min > LevelDebug {
		min = LevelInfo
	}
	return &FileLogger{w: w, min: min, now: time.Now}
}

// Log writes one line at the given level.
func (l *FileLogger) Log(level Level, format string, args ...interface{}) {
	if l == nil || level > l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s [%s] %s\n", l.now().Format(TimestampLayout), level, msg)
}

func (l *FileLogger) Debug(format string, args ...interface{}) { l.Log(LevelDebug, format, args...) }
func (l *FileLogger) Info(format string, args ...interface{})  { l.Log(LevelInfo, format, args...) }
func (l *FileLogger) Warn(format string, args ...interface{})  { l.Log(LevelWarn, format, args...) }
func (l *FileLogger) Error(format string, args ...interface{}) { l.Log(LevelError, format, args...) }

// Close closes the underlying file when the logger owns one.
func (l *FileLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.closer.Close()
	l.closer = nil
	return err
}
