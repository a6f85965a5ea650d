// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RunIDKey is the context key for batch run IDs.
	RunIDKey ContextKey = "run_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Reports and converted output may go to stdout, so logs default to stderr.
	InitLogger(LevelInfo, FormatText, os.Stderr)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel converts a level name ("debug", "info", "warn", "error").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat converts a format name ("json", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// InitLogger initializes the global logger with the specified level and
// format, writing to w.
func InitLogger(level Level, format Format, w io.Writer) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// WithRunID adds a batch run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

// FileConverted logs a successfully converted file.
func FileConverted(ctx context.Context, input, output string, transformed, splits int, duration time.Duration, args ...any) {
	allArgs := []any{
		"input", input,
		"output", output,
		"containers_transformed", transformed,
		"splits", splits,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("file_converted", allArgs...)
}

// FileFailed logs a file that could not be converted.
func FileFailed(ctx context.Context, input, kind string, err error, args ...any) {
	allArgs := []any{
		"input", input,
		"kind", kind,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Error("file_failed", allArgs...)
}

// BatchSummary logs the totals of a batch run.
func BatchSummary(ctx context.Context, total, succeeded, failed int, duration time.Duration, args ...any) {
	allArgs := []any{
		"total", total,
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("batch_summary", allArgs...)
}

// VerifyFallback logs that structural extraction was abandoned for the
// line-based reading.
func VerifyFallback(ctx context.Context, file1, file2 string, reason error, args ...any) {
	allArgs := []any{
		"file1", file1,
		"file2", file2,
	}
	if reason != nil {
		allArgs = append(allArgs, "reason", reason.Error())
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Warn("verify_fallback", allArgs...)
}

// VerifyResult logs the verdict of a comparison.
func VerifyResult(ctx context.Context, file1, file2 string, identical bool, differences int, args ...any) {
	allArgs := []any{
		"file1", file1,
		"file2", file2,
		"identical", identical,
		"differences", differences,
	}
	allArgs = append(allArgs, args...)
	logger := LoggerFromContext(ctx)
	if identical {
		logger.Info("verify_result", allArgs...)
		return
	}
	logger.Warn("verify_result", allArgs...)
}
