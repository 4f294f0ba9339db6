package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/quotedesk/internal/access"
)

// RoleHeader carries the role of the user authenticated by the proxy.
const RoleHeader = "X-User-Role"

type roleKey struct{}

// ProxyRole stores the request role in the context. The role header is only
// honored on requests coming from a trusted proxy; every other request gets
// fallback. It must run before TrustedRealIP, which rewrites RemoteAddr.
func ProxyRole(trustedCIDRs []string, fallback access.Role) func(http.Handler) http.Handler {
	trustedNets := parseTrustedNets(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := fallback
			if header := r.Header.Get(RoleHeader); header != "" {
				if isTrusted(extractIP(r.RemoteAddr), trustedNets) {
					role = access.ParseRole(header)
				} else {
					slog.Warn("role: header from untrusted address ignored",
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
					)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// WithRole returns a context carrying role.
func WithRole(ctx context.Context, role access.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the request role, or access.RoleUser.
func RoleFromContext(ctx context.Context) access.Role {
	if role, ok := ctx.Value(roleKey{}).(access.Role); ok {
		return role
	}
	return access.RoleUser
}
