// ABOUTME: Tests for the authority HTTP client
// ABOUTME: Covers login outcomes, bearer attachment, identity, and logout

package authority

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdspices/spicefront/internal/credstore"
)

func TestClient_LoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@vd.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		http.SetCookie(w, &http.Cookie{Name: "vd_session", Value: "sess-1"})
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "tok-1",
			"user":    map[string]any{"id": "a1", "email": "admin@vd.com", "role": "admin"},
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	result, err := client.Login(context.Background(), "admin@vd.com", "secret")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "tok-1", result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, "a1", result.User.ID)
	assert.Equal(t, "admin", result.User.Role)

	require.Len(t, result.Cookies, 1)
	assert.Equal(t, "vd_session", result.Cookies[0].Name)
}

func TestClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad credentials"})
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	result, err := client.Login(context.Background(), "admin@vd.com", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "bad credentials", result.Message)
}

func TestClient_LoginTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before use

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "admin@vd.com", "secret")
	assert.Error(t, err)
}

func TestClient_BearerAttachedWhenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Identity{ID: "a1"})
	}))
	defer srv.Close()

	creds := credstore.NewMemStore()
	require.NoError(t, creds.Save("tok-xyz"))

	client, err := New(srv.URL, creds)
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-xyz", gotAuth)
}

func TestClient_NoBearerWhenAbsent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Identity{ID: "a1"})
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_CurrentUserUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClient_LogoutIgnoresStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	// Any response, whatever the status, means "proceed to local clear".
	assert.NoError(t, client.Logout(context.Background()))
}

func TestClient_CookieJarRoundTrip(t *testing.T) {
	var gotCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "vd_session", Value: "sess-2", Path: "/"})
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("vd_session"); err == nil {
			gotCookie = c.Value
		}
		json.NewEncoder(w).Encode(Identity{ID: "a1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "admin@vd.com", "secret")
	require.NoError(t, err)

	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sess-2", gotCookie)
}

func TestClient_ChangePassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/change-password", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old", body["current_password"])
		assert.Equal(t, "new", body["new_password"])
		assert.Equal(t, "new", body["confirm_password"])

		json.NewEncoder(w).Encode(ChangeResult{Success: true})
	}))
	defer srv.Close()

	client, err := New(srv.URL, credstore.NewMemStore())
	require.NoError(t, err)

	result, err := client.ChangePassword(context.Background(), "old", "new", "new")
	require.NoError(t, err)
	assert.True(t, result.Success)
}
