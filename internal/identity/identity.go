package identity

import "context"

// User is the opaque identity the auth layer yields. The engine never looks
// past ID except to echo Email in logs.
type User struct {
	ID    string
	Email string
}

// Provider yields the currently authenticated user, or nil when the session
// is anonymous. Cart and checkout consult this on every call instead of
// holding a user reference themselves.
type Provider interface {
	CurrentUser(ctx context.Context) *User
}

type ctxKey struct{}

// WithUser binds u to the context. The HTTP middleware does this once per
// request from the session headers.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user bound by WithUser, or nil.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ctxKey{}).(*User)
	return u
}

// ContextProvider reads the user from the request context.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) *User { return FromContext(ctx) }

// Static always yields the same user (nil = anonymous). Test helper, also
// handy for CLI tools acting as one user.
type Static struct{ U *User }

func (s Static) CurrentUser(ctx context.Context) *User { return s.U }
