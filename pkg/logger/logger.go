package logger

import (
	"context"
	"errors"
	"log"
	"os"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	userIDKey    contextKey = "userID"
)

var (
	sugaredLogger *zap.SugaredLogger
	local         bool
)

func init() {
	New(getEnv(), "")
}

// New replaces the process logger. env "local" switches to a colored console
// encoder; level defaults to debug outside prod and info in prod.
func New(env, level string) {
	local = env == "local"

	atomicLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if env != "prod" {
		atomicLevel.SetLevel(zap.DebugLevel)
	}
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			atomicLevel.SetLevel(parsed)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"
	encoderConfig.TimeKey = "time"
	encoderConfig.CallerKey = "file"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	zapCfg := zap.Config{
		Level:            atomicLevel,
		Development:      env != "prod",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if local {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}
	sugaredLogger = l.Sugar()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// Context returns a logger tagged with the request id and signed-in user id
// found in ctx.
func Context(ctx context.Context) *zap.SugaredLogger {
	l := sugaredLogger.WithOptions(zap.AddCallerSkip(-1))
	if ctx == nil {
		return l
	}
	if requestID := RequestID(ctx); requestID != "" {
		l = l.With(zap.String(string(requestIDKey), requestID))
	}
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		l = l.With(zap.String(string(userIDKey), userID))
	}
	return l
}

func Info(args ...any) {
	plain().Info(args...)
}

func Infof(template string, args ...any) {
	plain().Infof(template, args...)
}

func Warn(args ...any) {
	sugaredLogger.Warn(args...)
}

func Warnf(template string, args ...any) {
	sugaredLogger.Warnf(template, args...)
}

func Error(args ...any) {
	sugaredLogger.Error(args...)
}

func Errorf(template string, args ...any) {
	sugaredLogger.Errorf(template, args...)
}

func Fatal(args ...any) {
	sugaredLogger.Fatal(args...)
}

func Fatalf(template string, args ...any) {
	sugaredLogger.Fatalf(template, args...)
}

// plain drops the caller for info lines on a developer console.
func plain() *zap.SugaredLogger {
	if local {
		return sugaredLogger.WithOptions(zap.WithCaller(false))
	}
	return sugaredLogger
}

func getEnv() string {
	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		return env
	}
	if env := viper.GetString("env"); env != "" {
		return env
	}
	return "prod"
}

func Sync() {
	if err := sugaredLogger.Sync(); err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
		Error(err)
	}
}
