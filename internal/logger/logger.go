package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Logger writes one JSON object per event with the service, hostname, action
// and request_id fields every entry carries.
type Logger struct {
	service  string
	hostname string
	zl       zerolog.Logger
}

// New creates a logger that writes to stdout at debug level
func New(service string) *Logger {
	return NewWithWriter(service, os.Stdout, "debug")
}

// NewWithWriter creates a logger writing to w; unknown levels fall back to info
func NewWithWriter(service string, w io.Writer, level string) *Logger {
	hostname, _ := os.Hostname()

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(w).
		Level(lvl).
		With().
		Str("service", service).
		Str("hostname", hostname).
		Logger()

	return &Logger{
		service:  service,
		hostname: hostname,
		zl:       zl,
	}
}

// Service returns the service name the logger was created with
func (l *Logger) Service() string {
	return l.service
}

func (l *Logger) event(e *zerolog.Event, action, message, requestID string, fields map[string]interface{}) {
	e.Str("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Str("action", action).
		Str("request_id", requestID)
	if len(fields) > 0 {
		e.Fields(fields)
	}
	e.Msg(message)
}

// Info logs at info level
func (l *Logger) Info(action, message, requestID string, fields map[string]interface{}) {
	l.event(l.zl.Info(), action, message, requestID, fields)
}

// Debug logs at debug level
func (l *Logger) Debug(action, message, requestID string, fields map[string]interface{}) {
	l.event(l.zl.Debug(), action, message, requestID, fields)
}

// Warn logs at warn level
func (l *Logger) Warn(action, message, requestID string, fields map[string]interface{}) {
	l.event(l.zl.Warn(), action, message, requestID, fields)
}

// Error logs at error level; err may be nil
func (l *Logger) Error(action, message, requestID string, err error, fields map[string]interface{}) {
	e := l.zl.Error()
	if err != nil {
		e = e.Dict("error", zerolog.Dict().Str("msg", err.Error()))
	}
	l.event(e, action, message, requestID, fields)
}

// GenerateRequestID returns a new random request id
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored in ctx, or "" when there is none
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
