package logging

import (
	"context"

	"github.com/rs/zerolog"

	"offerbridge/internal/offer"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds one field to the logger carried by ctx.
func WithField(ctx context.Context, key string, value any) context.Context {
	l := FromContext(ctx).With().Interface(key, value).Logger()
	return WithLogger(ctx, &l)
}

// WithRun tags every log line of one import run.
func WithRun(ctx context.Context, runID, source string) context.Context {
	l := FromContext(ctx).With().Str("run_id", runID).Str("source", source).Logger()
	return WithLogger(ctx, &l)
}

// KeyFields attaches the partition key of an offer to an event.
func KeyFields(e *zerolog.Event, key offer.Key) *zerolog.Event {
	return e.Str("project_id", key.ProjectID).Str("contract_unit_number", key.ContractUnitNumber)
}
