// Package monitoring wires the observability stack: the zap-backed logger,
// Prometheus metrics and OpenTelemetry tracing.
package monitoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// zapLogger adapts zap to the platform logger interface, enriching entries
// with request and tenant ids from the context.
type zapLogger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds the production logger from the log configuration.
func NewZapLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	atomicLevel := zap.NewAtomicLevelAt(level)
	zapCfg.Level = atomicLevel
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
	}

	zl, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &zapLogger{zl: zl, level: atomicLevel}, nil
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl.With(zap.String("component", component)), level: l.level}
}

// SetLevel adjusts the minimum level at runtime. The level is shared with
// every child created through WithComponent.
func (l *zapLogger) SetLevel(levelName string) error {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", levelName, err)
	}
	l.level.SetLevel(level)
	return nil
}

func (l *zapLogger) fields(ctx context.Context, fields []logger.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	if ctx != nil {
		if rid, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && rid != "" {
			out = append(out, zap.String("request_id", rid))
		}
		if tid, ok := ctx.Value(constants.ContextKeyTenantID).(string); ok && tid != "" {
			out = append(out, zap.String("tenant_id", tid))
		}
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, logger.Sanitize(f.Key, f.Value)))
	}
	return out
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Debug(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Info(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Warn(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Field) {
	l.zl.Error(msg, append(l.fields(ctx, fields), zap.Error(err))...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Field) {
	l.zl.Fatal(msg, append(l.fields(ctx, fields), zap.Error(err))...)
}
