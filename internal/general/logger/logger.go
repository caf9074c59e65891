package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes one JSON line per event with the fields every service emits:
// timestamp, level, service, action, message, hostname, request_id, vehicle_id,
// details and, for errors, error{msg,stack}.
type Logger struct {
	service  string
	hostname string
	zl       zerolog.Logger
}

// New creates a structured logger for the given service writing to stdout at debug level.
func New(service string) *Logger {
	return NewWithWriter(service, os.Stdout, "debug")
}

// NewWithWriter creates a logger writing to w. An unknown level falls back to info.
func NewWithWriter(service string, w io.Writer, level string) *Logger {
	hn, err := os.Hostname()
	if err != nil || strings.TrimSpace(hn) == "" {
		hn = "unknown-hostname"
	}

	if strings.TrimSpace(service) == "" {
		service = "unknown-service"
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(w).Level(lvl).With().
		Str("service", service).
		Str("hostname", hn).
		Logger()

	return &Logger{service: service, hostname: hn, zl: zl}
}

// SetLevel returns a copy of the logger with a different minimum level.
func (l *Logger) SetLevel(level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return l
	}
	cp := *l
	cp.zl = l.zl.Level(lvl)
	return &cp
}

// Debug writes a DEBUG line with optional details.
func (l *Logger) Debug(ctx context.Context, action, msg string, details any) {
	l.write(ctx, l.zl.Debug(), action, msg, details)
}

// Info writes an INFO line with optional details.
func (l *Logger) Info(ctx context.Context, action, msg string, details any) {
	l.write(ctx, l.zl.Info(), action, msg, details)
}

// Warn writes a WARN line with optional details.
func (l *Logger) Warn(ctx context.Context, action, msg string, details any) {
	l.write(ctx, l.zl.Warn(), action, msg, details)
}

// Error writes an ERROR line and attaches an error stack trace.
func (l *Logger) Error(ctx context.Context, action, msg string, err error, details any) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}

	ev := l.zl.Error().Dict("error", zerolog.Dict().
		Str("msg", strings.TrimSpace(err.Error())).
		Str("stack", string(debug.Stack())),
	)
	l.write(ctx, ev, action, msg, details)
}

// write fills the common fields and sends the event. ev is nil when the level is disabled.
func (l *Logger) write(ctx context.Context, ev *zerolog.Event, action, msg string, details any) {
	if ev == nil {
		return
	}

	ev = ev.Str("timestamp", nowISO()).Str("action", safeAction(action))
	if id := requestID(ctx); id != "" {
		ev = ev.Str("request_id", id)
	}
	if id := vehicleID(ctx); id != "" {
		ev = ev.Str("vehicle_id", id)
	}
	if details != nil {
		ev = ev.Interface("details", details)
	}
	ev.Msg(strings.TrimSpace(msg))
}

// ------------ Context helpers -------------

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "fleet_request_id"
	ctxKeyVehicleID ctxKey = "fleet_vehicle_id"
)

// WithRequestID returns a new context carrying request_id.
func (l *Logger) WithRequestID(ctx context.Context, reqID string) context.Context {
	if strings.TrimSpace(reqID) == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRequestID, reqID)
}

// WithVehicleID returns a new context carrying vehicle_id.
func (l *Logger) WithVehicleID(ctx context.Context, vehicleID string) context.Context {
	if strings.TrimSpace(vehicleID) == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyVehicleID, vehicleID)
}

func requestID(ctx context.Context) string {
	return ctxString(ctx, ctxKeyRequestID)
}

func vehicleID(ctx context.Context) string {
	return ctxString(ctx, ctxKeyVehicleID)
}

func ctxString(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// ----- Small utilities -----

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func safeAction(a string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return "unspecified"
	}
	return a
}
