package httpx

import (
	"context"

	"github.com/nestmarket/authgate/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeySession ctxKey = "session_claims"
)

// ContextWithSession injects verified session claims for downstream handlers.
func ContextWithSession(ctx context.Context, c jwtx.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	return context.WithValue(ctx, CtxKeySession, c)
}

// SessionFromContext returns the verified session claims, if any.
func SessionFromContext(ctx context.Context) (jwtx.SessionClaims, bool) {
	c, ok := ctx.Value(CtxKeySession).(jwtx.SessionClaims)
	return c, ok
}

// UserIDFromContext returns the authenticated user ID or "".
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
