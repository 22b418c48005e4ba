package auth

import "context"

type contextKey string

const ctxAdmin contextKey = "admin"

// WithAdmin marks ctx as carrying a request that passed the admin guard.
func WithAdmin(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdmin, true)
}

// IsAdmin reports whether ctx was marked by WithAdmin.
func IsAdmin(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(ctxAdmin).(bool)
	return ok && v
}
