package auth

import (
	"context"

	"github.com/rtb-ict/devicehub/internal/model"
	"github.com/rtb-ict/devicehub/internal/session"
)

type contextKey struct{}

// AuthContext is the per-request authenticated identity installed by the
// session middleware. Key is the browser key the session was resolved from.
type AuthContext struct {
	Key     string
	Session *session.Session
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// User returns the authenticated profile, or nil outside a guarded route.
func User(ctx context.Context) *model.User {
	ac, ok := FromContext(ctx)
	if !ok || !ac.Session.Valid() {
		return nil
	}
	return ac.Session.User
}

// Role returns the authenticated role, or the empty string.
func Role(ctx context.Context) model.Role {
	u := User(ctx)
	if u == nil {
		return ""
	}
	return u.Role
}

// Token returns the backend API token for the current request, or "".
func Token(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok || !ac.Session.Valid() {
		return ""
	}
	return ac.Session.Token
}
