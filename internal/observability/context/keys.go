// Package context carries request-scoped identifiers that the logger and the
// persisted record metadata read back.
package context

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// CorrelationHeader carries a caller supplied correlation id across hops.
const CorrelationHeader = "X-Correlation-Id"

type contextKey string

const (
	requestIDKey     contextKey = "observability_request_id"
	actorKey         contextKey = "observability_actor"
	correlationIDKey contextKey = "observability_correlation_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithActor records who triggered the work (http, cli, scheduler).
func WithActor(ctx context.Context, actor string) context.Context {
	return withValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) string {
	return stringValue(ctx, actorKey)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

// EnsureCorrelationID keeps the given id, or a ULID when it is empty.
func EnsureCorrelationID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = CorrelationIDFromContext(ctx)
	}
	if id == "" {
		id = ulid.Make().String()
	}
	return withValue(ctx, correlationIDKey, id), id
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
