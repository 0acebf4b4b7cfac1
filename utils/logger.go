package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/opsdeck/cheatsheets/constants"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	userLogger     = log.New(os.Stdout, "", 0)
	internalLogger *zap.SugaredLogger
	atomicLevel    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerMode     = constants.LoggerModeProduction
	loggerMu       sync.RWMutex
)

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

func init() {
	if os.Getenv(constants.EnvDebug) != "" {
		atomicLevel.SetLevel(zapcore.DebugLevel)
	}
	buildInternalLogger(zapcore.Lock(os.Stderr))
}

func buildInternalLogger(w zapcore.WriteSyncer) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, atomicLevel)
	loggerMu.Lock()
	internalLogger = zap.New(core).Sugar().Named("cheats")
	loggerMu.Unlock()
}

func sugar() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return internalLogger
}

// User prints a message meant for the person running the CLI (stdout, no decoration).
func User(format string, v ...any) {
	loggerMu.RLock()
	l := userLogger
	loggerMu.RUnlock()
	l.Printf(format, v...)
}

func Info(format string, v ...any) {
	sugar().Infof(format, v...)
}

func Warn(format string, v ...any) {
	sugar().Warnf(format, v...)
}

func Error(format string, v ...any) {
	sugar().Errorf(format, v...)
}

func Debug(format string, v ...any) {
	sugar().Debugf(format, v...)
}

func SetUserOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	loggerMu.Lock()
	userLogger = log.New(w, "", 0)
	loggerMu.Unlock()
}

// SetInternalOutput redirects structured logs, typically to a test buffer.
func SetInternalOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	buildInternalLogger(zapcore.AddSync(w))
}

// SetMode switches between "production" and "debug".
func SetMode(mode string) {
	loggerMu.Lock()
	loggerMode = mode
	loggerMu.Unlock()
	if mode == constants.LoggerModeDebug {
		atomicLevel.SetLevel(zapcore.DebugLevel)
	} else {
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// SetLevel sets the level from a config string (debug, info, warn, error).
func SetLevel(level string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	atomicLevel.SetLevel(l)
	return nil
}

func getMode() string {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return loggerMode
}

// Errorf logs the error message and returns it as an error value.
func Errorf(format string, v ...any) error {
	err := fmt.Errorf(format, v...)
	sugar().Errorf("%s", err)
	return err
}

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestIDFromContext extracts the request ID from context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return ContextValue[string](ctx, requestIDKey)
}

func withRequestID(ctx context.Context, fields []any) []any {
	if reqID, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", reqID)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, "trace_id", sc.TraceID().String())
	}
	return fields
}

func InfoCtx(ctx context.Context, msg string, fields ...any) {
	sugar().Infow(msg, withRequestID(ctx, fields)...)
}

func WarnCtx(ctx context.Context, msg string, fields ...any) {
	sugar().Warnw(msg, withRequestID(ctx, fields)...)
}

func ErrorCtx(ctx context.Context, msg string, fields ...any) {
	sugar().Errorw(msg, withRequestID(ctx, fields)...)
}

func DebugCtx(ctx context.Context, msg string, fields ...any) {
	sugar().Debugw(msg, withRequestID(ctx, fields)...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar().Sync()
}
