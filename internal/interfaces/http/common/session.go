package common

import "context"

type contextKey string

const sessionIDContextKey contextKey = "sessionID"

// ContextWithSessionID stores the UI session id into context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, id)
}

// SessionIDFromContext extracts the UI session id from context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok && id != ""
}
