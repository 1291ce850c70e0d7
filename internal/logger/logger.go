// Package logger provides the process-wide structured logger.
//
// Logs are JSON lines from zap exposed as a logr.Logger. The TUI owns the
// terminal, so it logs to a file; the HTTP service logs to stderr.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

var (
	mu sync.Mutex

	globalZapLogger  *zap.Logger
	globalLogrLogger *logr.Logger
	closer           io.Closer

	defaultNoopLogger = logr.Discard()
)

// Options selects where logs go and how verbose they are.
type Options struct {
	// Level is a zap level: -1 debug, 0 info, 1 warn, 2 error.
	Level int8
	// File, when set, receives the logs (created with its parent directory).
	// Otherwise Writer is used, and if that is nil too logging is disabled.
	File   string
	Writer io.Writer
}

// Setup installs the global logger. Calling it again replaces the previous one.
func Setup(opts Options) (*logr.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	var (
		sink io.Writer
		c    io.Closer
	)
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		sink, c = f, f
	case opts.Writer != nil:
		sink = opts.Writer
	default:
		resetLocked()
		return &defaultNoopLogger, nil
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(sink)),
		zap.NewAtomicLevelAt(zapcore.Level(opts.Level)),
	)

	resetLocked()
	globalZapLogger = zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	gl := zapr.NewLogger(globalZapLogger)
	globalLogrLogger = &gl
	closer = c

	return globalLogrLogger, nil
}

func resetLocked() {
	if globalZapLogger != nil {
		_ = globalZapLogger.Sync()
	}
	if closer != nil {
		_ = closer.Close()
	}
	globalZapLogger = nil
	globalLogrLogger = nil
	closer = nil
}

// WithLogger returns a context carrying log.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger in ctx, then the global one, then a no-op.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	return Global()
}

// Global returns the installed logger, or a no-op logger before Setup.
func Global() *logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries and closes the log file, if any.
func Sync() {
	mu.Lock()
	defer mu.Unlock()

	if globalZapLogger != nil {
		if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
			fmt.Fprintf(os.Stderr, "WARNING: failed to sync logger: %v\n", err)
		}
	}
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
}

// isIgnorableSyncError returns true for the errors Sync reports on pipes and TTYs.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
