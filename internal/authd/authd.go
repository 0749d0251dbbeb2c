// ABOUTME: Development auth authority implementing the storefront contract
// ABOUTME: Issues session cookies and body tokens, resolves and ends sessions

package authd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long issued sessions last.
const DefaultSessionTTL = 7 * 24 * time.Hour

// dummyHash keeps login timing constant when the email is unknown,
// preventing account enumeration through response timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Config holds authority server configuration.
type Config struct {
	// CookieName is the session cookie set on login responses.
	CookieName string
	// SessionTTL is the lifetime of issued sessions.
	SessionTTL time.Duration
}

// Server implements the auth authority's HTTP contract: login issues a
// cookie plus a body token, identity resolution accepts either, logout
// invalidates, change-password rotates the hash. It exists for local
// development and integration tests; production deployments point the
// console at the real backend instead.
type Server struct {
	store  Store
	tokens *TokenIssuer
	config Config
	logger *slog.Logger
}

// NewServer creates an authority server.
func NewServer(store Store, tokens *TokenIssuer, cfg Config) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "vd_session"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	return &Server{
		store:  store,
		tokens: tokens,
		config: cfg,
		logger: slog.Default().With("component", "authd"),
	}
}

// RegisterRoutes registers the authority endpoints on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /me", s.handleMe)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /change-password", s.handleChangePassword)
	mux.HandleFunc("GET /health", s.handleHealth)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Admin bool   `json:"admin"`
}

func identityFromUser(user *User) identityResponse {
	return identityResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Admin: user.Role == "admin",
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Dummy comparison to keep timing constant for unknown emails.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			s.rejectLogin(w)
			return
		}
		s.logger.Error("failed to look up user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "an error occurred",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.rejectLogin(w)
		return
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(s.config.SessionTTL).UTC(),
	}
	if err := s.store.CreateSession(r.Context(), session); err != nil {
		s.logger.Error("failed to create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "an error occurred",
		})
		return
	}

	token, err := s.tokens.Issue(user.ID, session.ID, s.config.SessionTTL)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "an error occurred",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("login successful", "email", user.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"admin":   user.Role == "admin",
		"token":   token,
		"user":    identityFromUser(user),
	})
}

func (s *Server) rejectLogin(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": "invalid email or password",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := s.authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, identityFromUser(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.credentialFrom(r); ok {
		if _, sessionID, err := s.tokens.Verify(token); err == nil {
			if err := s.store.DeleteSession(r.Context(), sessionID); err != nil {
				s.logger.Error("failed to delete session", "error", err)
			}
		}
	}

	// Clear the session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _, ok := s.authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "passwords do not match",
		})
		return
	}
	if len(req.NewPassword) < 8 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "password must be at least 8 characters",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "current password is incorrect",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "an error occurred",
		})
		return
	}

	if err := s.store.UpdateUserPassword(r.Context(), user.ID, string(hash)); err != nil {
		s.logger.Error("failed to update password", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "an error occurred",
		})
		return
	}

	s.logger.Info("password changed", "email", user.Email)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "password updated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// authenticate resolves the user behind the request credential. Both the
// cookie and the bearer header are accepted; the session row must exist.
func (s *Server) authenticate(r *http.Request) (*User, *Session, bool) {
	token, ok := s.credentialFrom(r)
	if !ok {
		return nil, nil, false
	}

	userID, sessionID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil, false
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		return nil, nil, false
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		return nil, nil, false
	}

	return user, session, true
}

// credentialFrom extracts the session token from the cookie or, failing
// that, from the Authorization header.
func (s *Server) credentialFrom(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(s.config.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if token != "" {
			return token, true
		}
	}

	return "", false
}

// CreateUser hashes the password and creates a user. Used by the bootstrap
// command and tests.
func CreateUser(ctx context.Context, store Store, email, name, role, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
