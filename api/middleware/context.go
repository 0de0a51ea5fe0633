package middleware

import "context"

type contextKey string

const ctxClerkUserID contextKey = "clerk_user_id"

// ClerkUserIDFromContext returns the authenticated caller's Clerk user id.
func ClerkUserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClerkUserID).(string); ok {
		return v
	}
	return ""
}

// WithClerkUserID injects the Clerk user id into the context.
func WithClerkUserID(ctx context.Context, clerkUserID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClerkUserID, clerkUserID)
}
