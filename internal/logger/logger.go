package logger

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2/data/binding"
)

// maxLines caps the UI log history.
const maxLines = 100

// AppLogger formats log lines into a fyne string list rendered by the log
// view. Data bindings are safe to update from the worker goroutine.
type AppLogger struct {
	dataBinding binding.StringList
}

// NewAppLogger creates a logger writing into the given binding.
func NewAppLogger(data binding.StringList) *AppLogger {
	return &AppLogger{dataBinding: data}
}

// Info logs an informational message.
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.log("INFO", format, args...)
}

// Warn logs a recoverable problem.
func (l *AppLogger) Warn(format string, args ...interface{}) {
	l.log("WARNING", format, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

// Debug logs to stdout only, keeping the UI history clean.
func (l *AppLogger) Debug(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[DEBUG] [%s] %s\n", time.Now().Format("15:04:05"), msg)
}

func (l *AppLogger) log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")
	l.dataBinding.Append(fmt.Sprintf("[%s] %s: %s", timestamp, level, msg))

	list, _ := l.dataBinding.Get()
	if len(list) > maxLines {
		l.dataBinding.Set(list[len(list)-maxLines:])
	}
}
