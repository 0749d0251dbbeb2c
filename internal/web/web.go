// ABOUTME: Storefront console routes wiring the guard, gate, and manager
// ABOUTME: Serves login/logout and the protected operator pages

package web

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/vdspices/spicefront/internal/gate"
	"github.com/vdspices/spicefront/internal/guard"
	"github.com/vdspices/spicefront/internal/routes"
	"github.com/vdspices/spicefront/internal/session"
)

// Console handles the operator-facing routes. Every navigation passes the
// edge guard first (cookie presence only); protected pages then pass the
// render gate, which is the authoritative check against the session manager.
type Console struct {
	manager    *session.Manager
	table      *routes.Table
	gate       *gate.Gate
	cookieName string
	logger     *slog.Logger

	// loginBusy enforces at-most-one login in flight from this console.
	// The manager itself has no concurrency primitive for this; the
	// consuming component owns the busy flag.
	loginBusy atomic.Bool
}

// New creates a console over the given session manager and route table.
func New(manager *session.Manager, table *routes.Table, cookieName string) *Console {
	return &Console{
		manager:    manager,
		table:      table,
		gate:       gate.New(manager, table.LoginPath()),
		cookieName: cookieName,
		logger:     slog.Default().With("component", "web"),
	}
}

// Handler returns the full console handler with the edge guard applied to
// every route.
func (c *Console) Handler() http.Handler {
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	return guard.Middleware(c.table, c.cookieName)(mux)
}

// RegisterRoutes registers all console routes on the given mux.
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	// Auth-only routes
	mux.HandleFunc("GET /login", c.handleLoginPage)
	mux.HandleFunc("POST /login", c.handleLogin)

	// Protected routes behind the render gate
	mux.HandleFunc("GET /{$}", c.gate.Protect(c.handleDashboard))
	mux.HandleFunc("GET /dashboard", c.gate.Protect(c.handleDashboard))
	mux.HandleFunc("GET /products", c.gate.Protect(c.handleProducts))
	mux.HandleFunc("GET /orders", c.gate.Protect(c.handleOrders))
	mux.HandleFunc("GET /users", c.gate.Protect(c.handleUsers))
	mux.HandleFunc("GET /account", c.gate.Protect(c.handleAccountPage))
	mux.HandleFunc("POST /account/password", c.gate.Protect(c.handleChangePassword))
	mux.HandleFunc("POST /logout", c.handleLogout)

	// Public
	mux.HandleFunc("GET /health", c.handleHealth)

	c.logger.Info("console routes registered")
}

// handleLoginPage renders the login form. The edge guard already bounced
// cookie-holders to the home path before this runs.
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	c.renderLoginPage(w, "", "")
}

// handleLogin processes the login form submission. A failed attempt renders
// the form again with an inline message; session state is untouched.
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderLoginPage(w, "Invalid form data", "")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		c.renderLoginPage(w, "Email and password required", email)
		return
	}

	if !c.loginBusy.CompareAndSwap(false, true) {
		c.renderLoginPage(w, "A login is already in progress, please wait", email)
		return
	}
	defer c.loginBusy.Store(false)

	result := c.manager.Login(r.Context(), email, password)
	if !result.Success {
		c.renderLoginPage(w, result.Message, email)
		return
	}

	// Relay the authority's Set-Cookie headers to the browser; the cookie
	// half of the credential is written by the authority alone.
	for _, cookie := range result.Cookies {
		http.SetCookie(w, cookie)
	}

	http.Redirect(w, r, c.table.HomePath(), http.StatusSeeOther)
}

// handleLogout ends the session. The manager guarantees local logout even
// when the remote invalidation fails, so this never reports an error.
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	c.manager.Logout(r.Context())

	// Expire the browser's copy of the session cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, c.table.LoginPath(), http.StatusSeeOther)
}

func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())
	c.renderSection(w, identity, "Dashboard", "dashboard",
		"Orders, stock levels, and contact requests at a glance.")
}

func (c *Console) handleProducts(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())
	c.renderSection(w, identity, "Products", "products",
		"Manage the spice catalog: blends, origins, and pricing.")
}

func (c *Console) handleOrders(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())
	c.renderSection(w, identity, "Orders", "orders",
		"Open and fulfilled orders, newest first.")
}

func (c *Console) handleUsers(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())
	c.renderSection(w, identity, "Users", "users",
		"Storefront accounts and their roles.")
}

func (c *Console) handleAccountPage(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())
	c.renderAccountPage(w, identity, "", false)
}

// handleChangePassword forwards a password change to the authority via the
// manager and re-renders the account page with the outcome.
func (c *Console) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := gate.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		c.renderAccountPage(w, identity, "Invalid form data", false)
		return
	}

	result := c.manager.ChangePassword(r.Context(),
		r.FormValue("current_password"),
		r.FormValue("new_password"),
		r.FormValue("confirm_password"),
	)

	message := result.Message
	if result.Success && message == "" {
		message = "Password updated"
	}
	c.renderAccountPage(w, identity, message, result.Success)
}

func (c *Console) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
