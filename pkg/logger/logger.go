// Package logger defines the structured logging interface used across the
// Elevate platform. All methods take a context so implementations can enrich
// entries with request-scoped metadata such as request id and tenant id.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elevate-edu/elevate/pkg/constants"
)

// Field represents a structured log field.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// ErrorField creates an error field
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with an arbitrary value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// sensitiveKeys lists field keys whose values are masked before output.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"password_hash": true,
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"secret":        true,
	"authorization": true,
}

// Sanitize masks values of sensitive keys. Implementations outside this
// package use it to apply the same masking policy.
func Sanitize(key string, value interface{}) interface{} {
	if sensitiveKeys[strings.ToLower(key)] {
		return "***"
	}
	return value
}

// Logger is the platform logging interface.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	Fatal(ctx context.Context, msg string, err error, fields ...Field)

	// WithComponent returns a child logger tagged with a component name.
	WithComponent(component string) Logger
}

// defaultLogger writes JSON lines to stdout. It is used at startup before the
// zap-backed logger is configured, and as a fallback in tests.
type defaultLogger struct {
	level     constants.LogLevel
	component string
	mu        *sync.Mutex
}

// NewDefaultLogger creates a JSON stdout logger at the given level.
func NewDefaultLogger(level constants.LogLevel) Logger {
	return &defaultLogger{level: level, mu: &sync.Mutex{}}
}

func (l *defaultLogger) WithComponent(component string) Logger {
	return &defaultLogger{level: l.level, component: component, mu: l.mu}
}

func (l *defaultLogger) log(ctx context.Context, level constants.LogLevel, levelName, msg string, fields []Field) {
	if level < l.level {
		return
	}
	entry := map[string]interface{}{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": levelName,
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	if ctx != nil {
		if rid, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && rid != "" {
			entry["request_id"] = rid
		}
		if tid, ok := ctx.Value(constants.ContextKeyTenantID).(string); ok && tid != "" {
			entry["tenant_id"] = tid
		}
	}
	for _, f := range fields {
		entry[f.Key] = Sanitize(f.Key, f.Value)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":%q,"msg":%q}`, levelName, msg))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(os.Stdout, string(line))
}

func (l *defaultLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, constants.LogLevelDebug, "debug", msg, fields)
}

func (l *defaultLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, constants.LogLevelInfo, "info", msg, fields)
}

func (l *defaultLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, constants.LogLevelWarn, "warn", msg, fields)
}

func (l *defaultLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {
	l.log(ctx, constants.LogLevelError, "error", msg, append(fields, ErrorField(err)))
}

func (l *defaultLogger) Fatal(ctx context.Context, msg string, err error, fields ...Field) {
	l.log(ctx, constants.LogLevelFatal, "fatal", msg, append(fields, ErrorField(err)))
	os.Exit(1)
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...Field)        {}
func (nopLogger) Info(context.Context, string, ...Field)         {}
func (nopLogger) Warn(context.Context, string, ...Field)         {}
func (nopLogger) Error(context.Context, string, error, ...Field) {}
func (nopLogger) Fatal(context.Context, string, error, ...Field) {}
func (nopLogger) WithComponent(string) Logger                    { return nopLogger{} }
