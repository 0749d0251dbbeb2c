// ABOUTME: Tests for the render-layer gate
// ABOUTME: Covers the loading state, redirect on absence, and identity context

package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdspices/spicefront/internal/authority"
	"github.com/vdspices/spicefront/internal/credstore"
	"github.com/vdspices/spicefront/internal/session"
)

type scriptedAuthority struct {
	identity *authority.Identity
	err      error
}

func (s *scriptedAuthority) Login(ctx context.Context, email, password string) (*authority.LoginResult, error) {
	return &authority.LoginResult{Success: true, User: s.identity, Token: "tok"}, nil
}

func (s *scriptedAuthority) CurrentUser(ctx context.Context) (*authority.Identity, error) {
	return s.identity, s.err
}

func (s *scriptedAuthority) Logout(ctx context.Context) error { return nil }

func (s *scriptedAuthority) ChangePassword(ctx context.Context, current, newPassword, confirm string) (*authority.ChangeResult, error) {
	return &authority.ChangeResult{Success: true}, nil
}

func TestGate_UnresolvedRendersLoading(t *testing.T) {
	m := session.NewManager(&scriptedAuthority{}, credstore.NewMemStore())
	g := New(m, "/login")

	called := false
	handler := g.Protect(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	// No redirect and no content while unresolved, only the loading state.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Loading")
	assert.False(t, called)
}

func TestGate_ResolvedAbsentRedirects(t *testing.T) {
	m := session.NewManager(&scriptedAuthority{}, credstore.NewMemStore())
	m.Initialize(context.Background())

	g := New(m, "/login")
	called := false
	handler := g.Protect(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, called)
}

func TestGate_AuthenticatedRunsHandlerWithIdentity(t *testing.T) {
	auth := &scriptedAuthority{identity: &authority.Identity{ID: "a1", Role: "admin"}}
	creds := credstore.NewMemStore()
	require.NoError(t, creds.Save("tok"))

	m := session.NewManager(auth, creds)
	m.Initialize(context.Background())

	g := New(m, "/login")
	var gotIdentity *authority.Identity
	handler := g.Protect(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotIdentity)
	assert.Equal(t, "a1", gotIdentity.ID)
	assert.Equal(t, "admin", gotIdentity.Role)
}

func TestFromContext_Absent(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
