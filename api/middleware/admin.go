package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/futamarket/market-backend/api/responses"
	"github.com/futamarket/market-backend/pkg/auth"
	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
)

// AttemptStore counts failed admin attempts per client.
type AttemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Del(ctx context.Context, keys ...string) error
	AdminFailureKey(clientID string) string
}

// LockoutPolicy bounds failed admin attempts per client within Window.
type LockoutPolicy struct {
	Limit  int
	Window time.Duration
}

func (p LockoutPolicy) enabled() bool {
	return p.Limit > 0 && p.Window > 0
}

// RequireAdmin rejects requests whose x-admin-password header does not match
// the admin secret, before the handler runs. With a store, clients that keep
// failing are locked out for the policy window.
func RequireAdmin(guard *auth.AdminGuard, store AttemptStore, policy LockoutPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := store != nil && policy.enabled()

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var key string
			if limited {
				key = store.AdminFailureKey(clientIP(r))
				count, err := store.Count(ctx, key)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "admin lockout"))
					return
				}
				if count >= int64(policy.Limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"attempts":       count,
							"limit":          policy.Limit,
							"window_seconds": int(policy.Window.Seconds()),
						}), "admin.locked_out")
					}
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			if guard.Check(r.Header.Get(auth.HeaderAdminPassword)) != auth.Allow {
				if limited {
					if _, err := store.IncrWithTTL(ctx, key, policy.Window); err != nil && logg != nil {
						logg.Error(ctx, "admin.failure_count", err)
					}
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin credential mismatch"))
				return
			}

			if limited {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "admin.failure_reset", err)
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAdmin(ctx)))
		})
	}
}

// clientIP keys lockouts on the connection peer. Forwarded headers are only
// honoured when a trusted proxy has rewritten RemoteAddr upstream (chi RealIP).
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
