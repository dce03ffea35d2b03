package log

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionIDKey struct{}

// WithSessionID returns a context that carries the id of a sync session.
// The id shows up in every log line produced with ZContext.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// WithNewSessionID is WithSessionID with a random id.
func WithNewSessionID(ctx context.Context) context.Context {
	return WithSessionID(ctx, uuid.NewString())
}

// SessionID extracts the session id from ctx.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}

// ZContext returns a field with the session id from ctx, or a skip field.
func ZContext(ctx context.Context) zap.Field {
	if id, ok := SessionID(ctx); ok {
		return zap.String("session_id", id)
	}
	return zap.Skip()
}
