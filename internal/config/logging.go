package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents logging verbosity levels.
type LogLevel int32

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel parses a log level string. Unknown values mean error.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// Logger writes leveled log lines to a file through zap. The printf-style
// methods serve the CLI; Zap exposes the structured logger to packages that
// log with fields.
type Logger struct {
	level atomic.Int32
	zl    *zap.Logger
	sugar *zap.SugaredLogger

	closeOnce sync.Once
	file      *os.File
}

// NewLogger creates a logger appending to filePath. With level off or an
// empty path it discards everything.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	l := &Logger{}
	l.level.Store(int32(level))

	if level == LogLevelOff || filePath == "" {
		l.setCore(zapcore.NewNopCore())
		return l, nil
	}

	filePath = ExpandHome(filePath)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	l.file = f

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = " "

	l.setCore(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(f),
		zap.LevelEnablerFunc(l.enabled),
	))
	return l, nil
}

func (l *Logger) setCore(core zapcore.Core) {
	l.zl = zap.New(core)
	l.sugar = l.zl.Sugar()
}

func (l *Logger) enabled(lvl zapcore.Level) bool {
	switch LogLevel(l.level.Load()) {
	case LogLevelOff:
		return false
	case LogLevelError:
		return lvl >= zapcore.ErrorLevel
	case LogLevelInfo:
		return lvl >= zapcore.InfoLevel
	default:
		return true
	}
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.zl.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

// Zap returns the structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	l, _ := NewLogger(LogLevelOff, "")
	return l
}
