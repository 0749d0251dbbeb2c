// ABOUTME: Tests for the edge-layer route guard
// ABOUTME: Verifies redirects happen before the wrapped handler ever runs

package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vdspices/spicefront/internal/routes"
)

const testCookie = "vd_session"

func runGuard(t *testing.T, path string, withCookie bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "sess"})
	}
	rec := httptest.NewRecorder()

	Middleware(routes.Default(), testCookie)(handler).ServeHTTP(rec, req)
	return rec, handlerCalled
}

func TestGuard_ProtectedWithoutCookie(t *testing.T) {
	for _, path := range []string{"/", "/dashboard", "/products", "/orders", "/users", "/orders/17"} {
		rec, called := runGuard(t, path, false)

		assert.Equal(t, http.StatusSeeOther, rec.Code, "path %s", path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), "path %s", path)
		assert.False(t, called, "handler must not run for %s", path)
	}
}

func TestGuard_ProtectedWithCookie(t *testing.T) {
	rec, called := runGuard(t, "/dashboard", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestGuard_AuthOnlyWithCookie(t *testing.T) {
	rec, called := runGuard(t, "/login", true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.False(t, called)
}

func TestGuard_AuthOnlyWithoutCookie(t *testing.T) {
	rec, called := runGuard(t, "/login", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestGuard_PublicPassesThrough(t *testing.T) {
	for _, withCookie := range []bool{true, false} {
		rec, called := runGuard(t, "/about", withCookie)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	}
}
