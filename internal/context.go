package internal

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey carries the per-invocation request ID
	RequestIDKey contextKey = "request_id"
	// SourcePathKey carries the originating document path, when known
	SourcePathKey contextKey = "source_path"
)

// GetRequestID retrieves the request ID from context, or "" when unset
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetSourcePath retrieves the document source path from context, or "" when unset
func GetSourcePath(ctx context.Context) string {
	if p, ok := ctx.Value(SourcePathKey).(string); ok {
		return p
	}
	return ""
}

// WithSourcePath adds a document source path to the context
func WithSourcePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, SourcePathKey, path)
}
