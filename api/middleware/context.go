package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "celebra:user_id"
	ctxAccessID contextKey = "celebra:access_id"
)

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext returns the authenticated user's ID, or uuid.Nil when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithAccessID stores the access-token JTI so logout can revoke the session.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// AccessIDFromContext returns the access-token JTI, or "" when anonymous.
func AccessIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxAccessID).(string); ok {
		return id
	}
	return ""
}
