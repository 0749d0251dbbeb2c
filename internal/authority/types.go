// ABOUTME: Wire types for the remote auth authority's HTTP+JSON contract
// ABOUTME: Defines Identity and the login/change-password result shapes

package authority

import "net/http"

// Identity is the resolved identity of the operator as reported by the
// authority. Only ID is guaranteed; older authority deployments may send
// nothing but the admin flag on identity resolution.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Admin bool   `json:"admin"`
}

// LoginResult is the outcome of a login attempt that reached the authority.
// Success=false means the authority rejected the credentials; transport
// failures are reported as errors instead, never as a LoginResult.
type LoginResult struct {
	Success bool      `json:"success"`
	Admin   bool      `json:"admin"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *Identity `json:"user"`

	// Cookies holds the Set-Cookie values from the login response so the web
	// layer can relay them to the browser. The authority is the only writer
	// of the session cookie.
	Cookies []*http.Cookie `json:"-"`
}

// ChangeResult is the outcome of a change-password request.
type ChangeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
