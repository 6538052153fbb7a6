package output

import (
	"fmt"
	"io"
	"os"
)

// Severity is the urgency of a toast notification.
type Severity string

// Toast severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Toast is a transient user notification.
type Toast struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// IsZero reports whether no toast is set.
func (t Toast) IsZero() bool {
	return t.Message == ""
}

func (s Severity) prefix() string {
	switch s {
	case SeverityWarning:
		return "⚠️  "
	case SeverityError:
		return "❌ "
	case SeveritySuccess:
		return "✅ "
	default:
		return "ℹ️  "
	}
}

// WriteToast prints a toast with its severity prefix.
func WriteToast(w io.Writer, t Toast) {
	if t.IsZero() {
		return
	}
	_, _ = fmt.Fprintln(w, t.Severity.prefix()+t.Message)
}

// Info prints an informational message to stdout.
func Info(msg string) {
	WriteToast(os.Stdout, Toast{Message: msg, Severity: SeverityInfo})
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message to stderr.
func Warn(msg string) {
	WriteToast(os.Stderr, Toast{Message: msg, Severity: SeverityWarning})
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Success prints a success message to stdout.
func Success(msg string) {
	WriteToast(os.Stdout, Toast{Message: msg, Severity: SeveritySuccess})
}
