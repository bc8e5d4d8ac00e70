package logger

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const loggerKey ctxKey = "sugaredLogger"

var defaultLogger = zap.NewNop().Sugar()

// Run builds the process-wide logger at the given level. Client logs go to
// stderr so they never mix with command output on stdout.
func Run(level string) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		log.Printf("logger: can't build zap logger, falling back to nop: %v", err)
		return defaultLogger
	}
	defaultLogger = zl.Sugar()
	return defaultLogger
}

// WithTrace derives a context whose logger carries a fresh trace id. Outgoing
// requests reuse the id so client and server logs can be correlated.
func WithTrace(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey,
		Log(ctx).With(zap.String("trace_id", uuid.NewString())))
}

// Log returns the logger stored in ctx, or the process-wide one.
func Log(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return defaultLogger
}
