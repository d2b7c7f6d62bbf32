package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New() *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
	}

	if strings.ToLower(os.Getenv("MOOD_ENV")) == "dev" {
		logger, err = zap.NewDevelopment(opts...)
	} else {
		opts = append(opts, zap.Fields(zap.Field{
			Key:    "MOOD_ENV",
			Type:   zapcore.StringType,
			String: os.Getenv("MOOD_ENV"),
		}))
		logger, err = zap.NewProduction(opts...)
	}

	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	return logger.Sugar()
}

type contextKey string

const ContextKey contextKey = "LOGGER"

// NewContext returns a copy of ctx carrying log
func NewContext(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ContextKey, log)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if log, ok := ctx.Value(ContextKey).(*zap.SugaredLogger); ok && log != nil {
			return log
		}
	}
	return zap.S()
}

func init() {
	logger := New()
	zap.ReplaceGlobals(logger.Desugar())
}
