package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

type logger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	level  slog.Level
}

type logMessage struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"additional_info,omitempty"`
}

var logInstance *logger

func init() {
	logInstance = &logger{level: slog.LevelInfo, out: os.Stderr}

	if logsDir := os.Getenv("FIXTURE_LOGS_DIR"); logsDir != "" {
		if err := Configure(logsDir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize log files: %v\n", err)
		}
	}
}

func (l *logger) log(level slog.Level, msg string, data map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.out == nil {
		return
	}

	logData, err := json.Marshal(logMessage{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Data:      data,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error marshaling log message:", err)
		return
	}

	l.out.Write(append(logData, '\n'))
}

func (l *logger) setOutput(w io.Writer, c io.Closer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		if err := l.closer.Close(); err != nil {
			return err
		}
	}

	l.out = w
	l.closer = c
	return nil
}

// Configure writes logs to daily rotated files app.YYYY-MM-DD.log in logsDir,
// with app.log linking to the current one.
func Configure(logsDir string) error {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	rl, err := rotatelogs.New(
		filepath.Join(logsDir, "app.%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(logsDir, "app.log")),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize rotatelogs: %w", err)
	}

	return logInstance.setOutput(rl, rl)
}

// SetOutput sends log lines to w. A nil writer discards them.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	logInstance.setOutput(w, nil)
}

func SetLevel(level slog.Level) {
	logInstance.mu.Lock()
	defer logInstance.mu.Unlock()

	logInstance.level = level
}

func Level() slog.Level {
	logInstance.mu.Lock()
	defer logInstance.mu.Unlock()

	return logInstance.level
}

func Debug(msg string, data ...map[string]any) {
	logInstance.log(slog.LevelDebug, msg, first(data))
}

func Info(msg string, data ...map[string]any) {
	logInstance.log(slog.LevelInfo, msg, first(data))
}

func Warn(msg string, data ...map[string]any) {
	logInstance.log(slog.LevelWarn, msg, first(data))
}

func Error(msg string, data ...map[string]any) {
	logInstance.log(slog.LevelError, msg, first(data))
}

func Fatal(msg string, data ...map[string]any) {
	logData := first(data)
	logInstance.log(slog.LevelError, msg, logData)

	fmt.Fprintf(os.Stderr, "FATAL ERROR: %s\n", msg)
	if len(logData) > 0 {
		fmt.Fprintf(os.Stderr, "📋 Details:\n")
		for key, value := range logData {
			fmt.Fprintf(os.Stderr, "   %s: %v\n", key, value)
		}
	}

	os.Exit(1)
}

func first(data []map[string]any) map[string]any {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
