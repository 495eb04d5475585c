// Package webctx provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, handlers and services read
// them, and tests inject them without building a full request.
package webctx

import "context"

type requestIDKey struct{}

// WithRequestID attaches a correlation ID for the current request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
