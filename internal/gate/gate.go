// ABOUTME: Render-layer gate that blocks protected views until resolution
// ABOUTME: Provides WithIdentity/FromContext for handler access to identity

package gate

import (
	"context"
	"net/http"

	"github.com/vdspices/spicefront/internal/authority"
	"github.com/vdspices/spicefront/internal/session"
)

// identityContextKey is the key type for storing the identity in a context.
type identityContextKey struct{}

// WithIdentity returns a new context with the resolved identity attached.
func WithIdentity(ctx context.Context, identity *authority.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// FromContext retrieves the identity from the context, nil if not present.
func FromContext(ctx context.Context) *authority.Identity {
	identity, _ := ctx.Value(identityContextKey{}).(*authority.Identity)
	return identity
}

// loadingPage is served while the initial session resolution is in flight.
// The meta refresh retries shortly; no redirect happens before resolution.
const loadingPage = `<!DOCTYPE html>
<html>
<head>
  <title>Loading</title>
  <meta http-equiv="refresh" content="1">
</head>
<body>
  <p>Loading&hellip;</p>
</body>
</html>
`

// Gate is the authoritative in-app access check. Unlike the edge guard it
// consults the session manager, which has actually round-tripped through the
// authority, so it corrects any false positive the optimistic cookie check
// let through.
type Gate struct {
	manager   *session.Manager
	loginPath string
}

// New creates a gate redirecting unauthenticated requests to loginPath.
func New(manager *session.Manager, loginPath string) *Gate {
	return &Gate{manager: manager, loginPath: loginPath}
}

// Protect wraps a protected view. While the session is unresolved it renders
// a loading page and nothing else. Once resolved: absent session redirects to
// login, otherwise the view runs with the identity in its context.
func (g *Gate) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := g.manager.Current()

		if !snap.Resolved {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(loadingPage))
			return
		}

		if snap.Identity == nil {
			http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), snap.Identity)))
	}
}
