// ABOUTME: Session manager owning the operator's in-memory session state
// ABOUTME: Orchestrates login/logout/initialize against the auth authority

package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vdspices/spicefront/internal/authority"
	"github.com/vdspices/spicefront/internal/credstore"
)

// Authority is the slice of the remote authority the manager depends on.
type Authority interface {
	Login(ctx context.Context, email, password string) (*authority.LoginResult, error)
	CurrentUser(ctx context.Context) (*authority.Identity, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, current, newPassword, confirm string) (*authority.ChangeResult, error)
}

// Snapshot is a read-only view of the current session. Resolved is false only
// while the initial resolution is still in flight; after that, Identity==nil
// means "known to be absent", not "not yet known".
type Snapshot struct {
	Resolved bool
	Identity *authority.Identity
}

// Result reports the outcome of a login or change-password operation to the
// caller. Transport failures are folded into Success=false with a generic
// message; they never mutate session state.
type Result struct {
	Success bool
	Message string

	// Cookies carries the authority's Set-Cookie values from a successful
	// login so the web layer can relay them to the browser.
	Cookies []*http.Cookie
}

// Manager owns the session and the credential store. All session mutation
// flows through Initialize, Login, and Logout; everything else only reads
// snapshots.
//
// A monotonic epoch guards against out-of-order completion: every state
// mutation bumps the epoch, and a Login or Initialize response whose captured
// epoch no longer matches is discarded without touching state or the
// credential store. A slow startup resolution can therefore never clobber a
// login that finished after it started, and a logout always wins over both.
type Manager struct {
	authority Authority
	creds     credstore.Store
	logger    *slog.Logger

	mu       sync.Mutex
	resolved bool
	identity *authority.Identity
	epoch    uint64
}

// NewManager creates a manager in the unresolved state.
func NewManager(auth Authority, creds credstore.Store) *Manager {
	return &Manager{
		authority: auth,
		creds:     creds,
		logger:    slog.Default().With("component", "session"),
	}
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Resolved: m.resolved, Identity: m.identity}
}

// Initialize resolves the session at startup. Without a stored credential
// hint it completes immediately with no remote call. With a hint, a failed
// resolution clears the credential store (fail-closed for ambient checks).
// It always terminates in the resolved state.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	start := m.epoch
	m.mu.Unlock()

	if !m.creds.Present() {
		m.mu.Lock()
		if m.epoch == start {
			m.identity = nil
			m.epoch++
		}
		m.resolved = true
		m.mu.Unlock()
		m.logger.Debug("no credential hint, session absent")
		return
	}

	identity, err := m.authority.CurrentUser(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != start {
		// A login or logout finished while this resolution was in flight
		// and already owns the state. Discard the response either way.
		m.resolved = true
		m.logger.Debug("discarding stale identity resolution")
		return
	}

	if err != nil {
		m.identity = nil
		m.epoch++
		m.resolved = true
		if cerr := m.creds.Clear(); cerr != nil {
			m.logger.Error("failed to clear credential store", "error", cerr)
		}
		m.logger.Info("identity resolution failed, session absent", "error", err)
		return
	}

	m.identity = identity
	m.epoch++
	m.resolved = true
	m.logger.Info("session resolved", "user", identity.Email)
}

// Login submits credentials to the authority. Rejected credentials and
// transport failures both leave session state untouched; only a successful,
// non-stale response authenticates and persists the fallback token.
func (m *Manager) Login(ctx context.Context, email, password string) *Result {
	m.mu.Lock()
	start := m.epoch
	m.mu.Unlock()

	res, err := m.authority.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login transport failure", "error", err)
		return &Result{Success: false, Message: "network error, please try again"}
	}

	if !res.Success {
		return &Result{Success: false, Message: res.Message}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != start {
		// The session changed after this login started, e.g. a logout was
		// issued. Re-authenticating now would resurrect a session the
		// operator already ended.
		m.logger.Warn("discarding stale login response", "user", email)
		return &Result{Success: false, Message: "session ended during login, please try again"}
	}

	m.epoch++

	if res.Token != "" {
		if err := m.creds.Save(res.Token); err != nil {
			m.logger.Error("failed to persist fallback token", "error", err)
		}
	}

	identity := res.User
	if identity == nil {
		// Older authority deployments return only the admin flag on login.
		identity = &authority.Identity{Email: email, Admin: res.Admin}
	}

	m.identity = identity
	m.resolved = true
	m.logger.Info("login successful", "user", email)

	return &Result{Success: true, Cookies: res.Cookies}
}

// Logout ends the session locally first: in-memory state and the epoch are
// cleared immediately, the authority is asked to invalidate while the bearer
// credential is still readable, and the store is cleared unconditionally
// afterwards. A failed remote call is logged, never surfaced.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	m.identity = nil
	m.resolved = true
	m.mu.Unlock()

	if err := m.authority.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed, clearing locally anyway", "error", err)
	}

	if err := m.creds.Clear(); err != nil {
		m.logger.Error("failed to clear credential store", "error", err)
	}

	m.logger.Info("logged out")
}

// ChangePassword forwards a password change to the authority. It does not
// mutate session state: the session survives a password change.
func (m *Manager) ChangePassword(ctx context.Context, current, newPassword, confirm string) *Result {
	res, err := m.authority.ChangePassword(ctx, current, newPassword, confirm)
	if err != nil {
		m.logger.Warn("change password transport failure", "error", err)
		return &Result{Success: false, Message: "network error, please try again"}
	}
	return &Result{Success: res.Success, Message: res.Message}
}
