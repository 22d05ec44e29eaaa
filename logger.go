package lookout

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/table"
)

// EventLogger wraps slog.Logger with lookout-specific context.
// This provides structured logging with consistent field names.
type EventLogger struct {
	*slog.Logger
}

// NewEventLogger creates a new EventLogger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewEventLogger(handler slog.Handler) *EventLogger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &EventLogger{
		Logger: slog.New(handler),
	}
}

// NewJSONEventLogger creates an EventLogger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONEventLogger(level slog.Level) *EventLogger {
	return NewEventLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextEventLogger creates an EventLogger that outputs human-readable text logs.
func NewTextEventLogger(level slog.Level) *EventLogger {
	return NewEventLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopEventLogger creates an EventLogger that discards all log output.
func NoopEventLogger() *EventLogger {
	return NewEventLogger(slog.DiscardHandler)
}

// WithModel adds the model name to every record.
func (l *EventLogger) WithModel(model string) *EventLogger {
	return &EventLogger{
		Logger: l.Logger.With("model", model),
	}
}

// LogAppend logs an append operation.
func (l *EventLogger) LogAppend(ctx context.Context, object string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"object", object,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "append completed",
			"object", object,
			"rows", rows,
		)
	}
}

// LogValidationFailure logs a rejected logging request.
func (l *EventLogger) LogValidationFailure(ctx context.Context, err error) {
	l.WarnContext(ctx, "prediction rejected",
		"error", err,
	)
}

// LogSchemaEvolution logs columns added to an existing log.
func (l *EventLogger) LogSchemaEvolution(ctx context.Context, object string, added []string) {
	l.InfoContext(ctx, "schema evolved",
		"object", object,
		"added", added,
	)
}

// LogMetricFailure logs a metric that was stored as null.
func (l *EventLogger) LogMetricFailure(ctx context.Context, id imagemetric.ID, err error) {
	l.DebugContext(ctx, "metric not computed",
		"metric", id,
		"error", err,
	)
}

// LogCoercion logs a value that was stored as null because it did not fit
// its column type.
func (l *EventLogger) LogCoercion(ctx context.Context, c table.Coercion) {
	l.DebugContext(ctx, "value coerced to null",
		"field", c.Field,
		"from", c.From,
		"to", c.To,
		"error", c.Err,
	)
}
