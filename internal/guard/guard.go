// ABOUTME: Edge-layer route guard middleware checking cookie presence only
// ABOUTME: Redirects before any protected handler runs, with no remote calls

package guard

import (
	"net/http"

	"github.com/vdspices/spicefront/internal/routes"
)

// Middleware gates every navigation by route class before any page logic
// runs. The check is deliberately optimistic: presence of the session cookie
// is treated as sufficient here, and actual validation is left to the render
// gate. That keeps this layer synchronous and independent of the authority's
// availability, so an auth-service outage can never lock the edge.
//
// protected + no cookie: redirect to the login path.
// auth-only + cookie present: redirect to the home path.
// Everything else passes through.
func Middleware(table *routes.Table, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := r.Cookie(cookieName)
			hasCookie := err == nil

			switch table.Classify(r.URL.Path) {
			case routes.Protected:
				if !hasCookie {
					http.Redirect(w, r, table.LoginPath(), http.StatusSeeOther)
					return
				}
			case routes.AuthOnly:
				if hasCookie {
					http.Redirect(w, r, table.HomePath(), http.StatusSeeOther)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
